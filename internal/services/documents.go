package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"

	"smartentrance/internal/events"
	"smartentrance/internal/models"
	"smartentrance/internal/uploads"
	"smartentrance/internal/utils/logger"
)

type CreateDocumentRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	URL   string `json:"url" validate:"required,url"`
	Size  int64  `json:"size"`
	Type  string `json:"type"`
}

// DiscardScheduler queues a retry of the discard for an orphaned upload.
type DiscardScheduler interface {
	ScheduleDiscard(ctx context.Context, recordID string) error
}

// ErrRegistration wraps the failure of the second upload step. The file itself has
// been discarded or queued for discarding by the time it is returned.
var ErrRegistration = errors.New("document registration failed")

type DocumentService struct {
	client    Requester
	resource  Resource[models.Document]
	uploader  Uploader
	ledger    uploads.Ledger
	scheduler DiscardScheduler
	log       *logger.Logger
}

func NewDocumentService(client Requester, uploader Uploader, ledger uploads.Ledger, scheduler DiscardScheduler) *DocumentService {
	return &DocumentService{
		client:    client,
		resource:  NewResource[models.Document](client, "documents"),
		uploader:  uploader,
		ledger:    ledger,
		scheduler: scheduler,
		log:       logger.New("documents"),
	}
}

func (s *DocumentService) ListByBuilding(ctx context.Context, buildingID int64) ([]models.Document, error) {
	return s.resource.List(ctx, fmt.Sprintf("/buildings/%d/documents", buildingID), nil)
}

func (s *DocumentService) CreateRecord(ctx context.Context, buildingID int64, req CreateDocumentRequest) (*models.Document, error) {
	return s.resource.Create(ctx, fmt.Sprintf("/buildings/%d/documents", buildingID), req)
}

// UploadAndRegister stores the file, then creates the document record pointing at it.
// Every step is written to the ledger. If the record cannot be created the stored file
// is discarded right away; when that fails too the ledger entry is marked orphaned and
// a background discard is scheduled.
func (s *DocumentService) UploadAndRegister(ctx context.Context, buildingID int64, title string, file File) (*models.Document, error) {
	meta, _ := json.Marshal(map[string]any{
		"contentType": file.ContentType,
		"size":        file.Size(),
		"title":       title,
	})
	rec := &models.UploadRecord{
		BuildingID: buildingID,
		FileName:   file.Name,
		Status:     models.UploadStatusPending,
		Metadata:   datatypes.JSON(meta),
	}
	if err := s.ledger.Create(ctx, rec); err != nil {
		return nil, s.log.Error("Failed to open upload record", err)
	}

	fileURL, err := s.uploader.Upload(ctx, file)
	if err != nil {
		rec.Status = models.UploadStatusDiscarded
		rec.LastError = err.Error()
		s.save(ctx, rec)
		return nil, fmt.Errorf("upload %s: %w", file.Name, err)
	}

	rec.URL = fileURL
	rec.Status = models.UploadStatusUploaded
	s.save(ctx, rec)

	doc, err := s.CreateRecord(ctx, buildingID, CreateDocumentRequest{
		Title: title,
		URL:   fileURL,
		Size:  file.Size(),
		Type:  file.ContentType,
	})
	if err != nil {
		s.compensate(ctx, rec, err)
		return nil, errors.Join(ErrRegistration, err)
	}

	rec.Status = models.UploadStatusRegistered
	rec.DocumentID = doc.ID
	rec.LastError = ""
	s.save(ctx, rec)

	events.Emit(events.UploadRegistered, *rec)
	return doc, nil
}

func (s *DocumentService) compensate(ctx context.Context, rec *models.UploadRecord, cause error) {
	s.log.Warn("Registering %s failed, discarding %s: %v", rec.FileName, rec.URL, cause)

	// Keep compensating even if the request context is already gone.
	ctx = context.WithoutCancel(ctx)

	err := s.uploader.Discard(ctx, rec.URL)
	if err == nil {
		rec.Status = models.UploadStatusDiscarded
		rec.LastError = cause.Error()
		s.save(ctx, rec)
		events.Emit(events.UploadDiscarded, *rec)
		return
	}

	rec.LastError = fmt.Sprintf("register: %v; discard: %v", cause, err)
	rec.Status = models.UploadStatusOrphaned
	recordOwner(rec, s.client)
	s.save(ctx, rec)
	events.Emit(events.UploadOrphaned, *rec)

	if s.scheduler == nil {
		s.log.Warn("No discard scheduler, upload %s stays orphaned", rec.ID)
		return
	}
	if err := s.scheduler.ScheduleDiscard(ctx, rec.ID); err != nil {
		_ = s.log.Error("Failed to schedule discard for %s", err, rec.ID)
	}
}

func (s *DocumentService) save(ctx context.Context, rec *models.UploadRecord) {
	if err := s.ledger.Save(ctx, rec); err != nil {
		_ = s.log.Error("Failed to update upload record %s", err, rec.ID)
	}
}
