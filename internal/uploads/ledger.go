package uploads

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"smartentrance/internal/models"
)

var ErrNotFound = errors.New("upload record not found")

// Ledger records every two-phase upload so a file that was stored but never
// registered can still be found and discarded.
type Ledger interface {
	Create(ctx context.Context, rec *models.UploadRecord) error
	Save(ctx context.Context, rec *models.UploadRecord) error
	Get(ctx context.Context, id string) (*models.UploadRecord, error)
	ListByStatus(ctx context.Context, status models.UploadStatus) ([]models.UploadRecord, error)
}

// MemoryLedger is used when no database is configured.
type MemoryLedger struct {
	mu      sync.RWMutex
	records map[string]models.UploadRecord
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{records: make(map[string]models.UploadRecord)}
}

func (m *MemoryLedger) Create(_ context.Context, rec *models.UploadRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := time.Now()
	rec.CreatedAt, rec.UpdatedAt = now, now
	if rec.Status == "" {
		rec.Status = models.UploadStatusPending
	}
	m.records[rec.ID] = *rec
	return nil
}

func (m *MemoryLedger) Save(_ context.Context, rec *models.UploadRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[rec.ID]; !ok {
		return ErrNotFound
	}
	rec.UpdatedAt = time.Now()
	m.records[rec.ID] = *rec
	return nil
}

func (m *MemoryLedger) Get(_ context.Context, id string) (*models.UploadRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (m *MemoryLedger) ListByStatus(_ context.Context, status models.UploadStatus) ([]models.UploadRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.UploadRecord
	for _, rec := range m.records {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
