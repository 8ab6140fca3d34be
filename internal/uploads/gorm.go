package uploads

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"smartentrance/internal/events"
	"smartentrance/internal/models"
)

// GormLedger keeps upload records in postgres.
type GormLedger struct {
	db *gorm.DB
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

func (l *GormLedger) Create(ctx context.Context, rec *models.UploadRecord) error {
	if rec.Status == "" {
		rec.Status = models.UploadStatusPending
	}
	if err := l.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create upload record: %w", err)
	}
	events.Emit(fmt.Sprintf("%s.created", tableName(l.db)), rec)
	return nil
}

func (l *GormLedger) Save(ctx context.Context, rec *models.UploadRecord) error {
	res := l.db.WithContext(ctx).Model(rec).
		Where("id = ?", rec.ID).
		Omit("id", "created_at").
		Select("*").
		Updates(rec)
	if res.Error != nil {
		return fmt.Errorf("update upload record %s: %w", rec.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	events.Emit(fmt.Sprintf("%s.updated", tableName(l.db)), rec)
	return nil
}

func (l *GormLedger) Get(ctx context.Context, id string) (*models.UploadRecord, error) {
	var rec models.UploadRecord
	if err := l.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (l *GormLedger) ListByStatus(ctx context.Context, status models.UploadStatus) ([]models.UploadRecord, error) {
	var recs []models.UploadRecord
	err := l.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at asc").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func tableName(db *gorm.DB) string {
	return db.NamingStrategy.TableName("UploadRecord")
}
