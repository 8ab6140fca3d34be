package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"smartentrance/internal/apiclient"
	"smartentrance/internal/events"
	"smartentrance/internal/models"
	"smartentrance/internal/services"
	"smartentrance/internal/uploads"
	"smartentrance/internal/utils/logger"
)

// TaskHandler processes upload cleanup tasks.
type TaskHandler struct {
	ledger    uploads.Ledger
	discarder services.Discarder
	scheduler services.DiscardScheduler
	logger    *logger.Logger
}

// NewTaskHandler creates a new TaskHandler. scheduler is used by the sweep to
// queue individual discards.
func NewTaskHandler(ledger uploads.Ledger, discarder services.Discarder, scheduler services.DiscardScheduler) *TaskHandler {
	return &TaskHandler{
		ledger:    ledger,
		discarder: discarder,
		scheduler: scheduler,
		logger:    logger.New("task_handler"),
	}
}

// HandleUploadDiscard deletes the file of an orphaned upload. Returning an error lets
// asynq retry with backoff. When the backend refuses the uploader's credentials, or
// there are none, retrying cannot help; the record stays orphaned for the next sweep.
func (h *TaskHandler) HandleUploadDiscard(ctx context.Context, t *asynq.Task) error {
	var p UploadDiscardPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}

	rec, err := h.ledger.Get(ctx, p.RecordID)
	if errors.Is(err, uploads.ErrNotFound) {
		h.logger.Warn("Upload record %s is gone, nothing to discard", p.RecordID)
		return nil
	}
	if err != nil {
		return err
	}
	if rec.Status != models.UploadStatusOrphaned {
		h.logger.Debug("Upload record %s is %s, skipping discard", rec.ID, rec.Status)
		return nil
	}

	if err := h.discarder.Discard(ctx, rec); err != nil {
		rec.LastError = err.Error()
		if saveErr := h.ledger.Save(ctx, rec); saveErr != nil {
			h.logger.Warn("Failed to record discard error for %s: %v", rec.ID, saveErr)
		}
		if errors.Is(err, services.ErrNoCredentials) || errors.Is(err, apiclient.ErrUnauthorized) {
			return fmt.Errorf("discard of %s: %w: %w", rec.URL, err, asynq.SkipRetry)
		}
		return h.logger.Error("Discard of %s failed", err, rec.URL)
	}

	rec.Status = models.UploadStatusDiscarded
	rec.LastError = ""
	rec.Credentials = nil
	if err := h.ledger.Save(ctx, rec); err != nil {
		return err
	}

	events.Emit(events.UploadDiscarded, *rec)
	h.logger.Success("Discarded orphaned upload %s", rec.URL)
	return nil
}

// HandleUploadSweep queues a discard for every orphaned upload still in the ledger.
func (h *TaskHandler) HandleUploadSweep(ctx context.Context, _ *asynq.Task) error {
	recs, err := h.ledger.ListByStatus(ctx, models.UploadStatusOrphaned)
	if err != nil {
		return err
	}

	var errs []error
	for _, rec := range recs {
		if err := h.scheduler.ScheduleDiscard(ctx, rec.ID); err != nil {
			errs = append(errs, err)
		}
	}

	h.logger.Info("Sweep found %d orphaned uploads", len(recs))
	return errors.Join(errs...)
}
