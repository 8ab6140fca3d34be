package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"smartentrance/internal/config"
	"smartentrance/internal/utils/logger"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// inspector looks up and removes tasks by id.
type inspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	DeleteTask(queue, id string) error
	Close() error
}

// TaskClient enqueues background work.
type TaskClient struct {
	client    enqueuer
	inspector inspector
	logger    *logger.Logger
}

// RedisOpt converts the redis config into asynq connection options.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewTaskClient creates a new TaskClient with the given Redis configuration
func NewTaskClient(cfg config.RedisConfig) *TaskClient {
	return newTaskClient(asynq.NewClient(RedisOpt(cfg)), asynq.NewInspector(RedisOpt(cfg)))
}

func newTaskClient(c enqueuer, i inspector) *TaskClient {
	return &TaskClient{
		client:    c,
		inspector: i,
		logger:    logger.New("TASKS"),
	}
}

// ScheduleDiscard queues a discard for the upload record. A discard still pending or
// retrying for the same record is not duplicated; one that was archived after running
// out of retries is replaced.
func (c *TaskClient) ScheduleDiscard(ctx context.Context, recordID string) error {
	if recordID == "" {
		return errors.New("record id is empty")
	}
	payload, err := json.Marshal(UploadDiscardPayload{RecordID: recordID})
	if err != nil {
		return err
	}

	id := discardTaskID(recordID)
	task := asynq.NewTask(TaskTypeUploadDiscard, payload)
	info, err := c.enqueueDiscard(ctx, task, id)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		released, relErr := c.releaseFinished(id)
		if relErr != nil {
			return c.logger.Error("Failed to inspect %s", relErr, id)
		}
		if !released {
			c.logger.Debug("discard for %s already queued", recordID)
			return nil
		}
		info, err = c.enqueueDiscard(ctx, task, id)
	}
	if err != nil {
		return c.logger.Error("Failed to enqueue %s", err, TaskTypeUploadDiscard)
	}

	c.logger.Info("Queued %s for %s as %s", TaskTypeUploadDiscard, recordID, info.ID)
	return nil
}

func (c *TaskClient) enqueueDiscard(ctx context.Context, task *asynq.Task, id string) (*asynq.TaskInfo, error) {
	return c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(RetryMax),
		asynq.Timeout(TimeoutShort),
		asynq.TaskID(id),
	)
}

// releaseFinished deletes the task holding id when it is archived or completed, and
// reports whether id is free again.
func (c *TaskClient) releaseFinished(id string) (bool, error) {
	if c.inspector == nil {
		return false, nil
	}
	info, err := c.inspector.GetTaskInfo(QueueLow, id)
	if errors.Is(err, asynq.ErrTaskNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	switch info.State {
	case asynq.TaskStateArchived, asynq.TaskStateCompleted:
	default:
		return false, nil
	}
	if err := c.inspector.DeleteTask(QueueLow, id); err != nil && !errors.Is(err, asynq.ErrTaskNotFound) {
		return false, err
	}
	c.logger.Info("Released %s task %s for a new attempt", info.State, id)
	return true, nil
}

func discardTaskID(recordID string) string {
	return fmt.Sprintf("%s:%s", TaskTypeUploadDiscard, recordID)
}

// Close closes the underlying asynq client and inspector
func (c *TaskClient) Close() error {
	err := c.client.Close()
	if c.inspector != nil {
		err = errors.Join(err, c.inspector.Close())
	}
	return err
}
