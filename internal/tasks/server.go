package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"smartentrance/internal/config"
	"smartentrance/internal/utils/logger"
)

var queues = map[string]int{
	QueueCritical: 6,
	QueueDefault:  3,
	QueueLow:      1,
}

// Server handles task processing
type Server struct {
	server  *asynq.Server
	handler *TaskHandler
	logger  *logger.Logger
}

// NewServer creates a new task processing server
func NewServer(cfg config.RedisConfig, concurrency int, handler *TaskHandler, logger *logger.Logger) *Server {
	if concurrency <= 0 {
		concurrency = 4
	}
	server := asynq.NewServer(
		RedisOpt(cfg),
		asynq.Config{
			Concurrency:    concurrency,
			Queues:         queues,
			StrictPriority: true,
		},
	)

	return &Server{
		server:  server,
		handler: handler,
		logger:  logger,
	}
}

// Mux routes task types to the handler.
func (s *Server) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeUploadDiscard, s.handler.HandleUploadDiscard)
	mux.HandleFunc(TaskTypeUploadSweep, s.handler.HandleUploadSweep)
	return mux
}

// Start starts the task processing server
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting task processing server queues %v", queues)

	if err := s.server.Start(s.Mux()); err != nil {
		return fmt.Errorf("failed to start task server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the task processing server
func (s *Server) Shutdown() {
	s.logger.Info("shutting down task processing server")
	s.server.Shutdown()
}
