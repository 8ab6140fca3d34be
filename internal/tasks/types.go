package tasks

import "time"

// Task Types
const (
	// TaskTypeUploadDiscard deletes the stored file of one orphaned upload.
	TaskTypeUploadDiscard = "uploads:discard"
	// TaskTypeUploadSweep re-queues discards for every orphaned upload.
	TaskTypeUploadSweep = "uploads:sweep"
)

// Task Queues
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low" // cleanup
)

// Task Timeouts
const (
	TimeoutShort  = 1 * time.Minute
	TimeoutMedium = 5 * time.Minute
)

// Task Retry Settings
const (
	RetryMax     = 10
	RetryDefault = 3
)

// UploadDiscardPayload identifies the ledger record whose file must go.
type UploadDiscardPayload struct {
	RecordID string `json:"recordId"`
}
