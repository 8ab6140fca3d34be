package main

import (
	"context"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"smartentrance/docs/swagger"
	"smartentrance/internal/api"
	"smartentrance/internal/api/throttle"
	"smartentrance/internal/apiclient"
	"smartentrance/internal/config"
	"smartentrance/internal/db"
	"smartentrance/internal/events"
	"smartentrance/internal/models"
	"smartentrance/internal/selection"
	"smartentrance/internal/services"
	"smartentrance/internal/session"
	"smartentrance/internal/tasks"
	"smartentrance/internal/uploads"
	"smartentrance/internal/utils/logger"
)

// 🚀 Main function
// @title SmartEntrance Gateway API
// @version 1.0
// @description Web gateway between the SmartEntrance dashboards and the REST backend
// @host localhost:8080
// @BasePath /
func main() {
	logger := logger.New("smartentrance")

	// check if .env file exists
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		logger.Info("No .env file found, skipping environment variable loading")
	} else {
		logger.Info("Loading environment variables from .env file")
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Redis backs sessions, tab selections and the login throttle
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	pingCancel()

	// Process-wide backend client; sessions derive cookie-bound copies from it
	backend, err := apiclient.New(cfg.Backend.BaseURL, cfg.Backend.Timeout,
		apiclient.WithSigningSecret(cfg.Backend.SigningSecret))
	if err != nil {
		log.Fatalf("Failed to create backend client: %v", err)
	}

	// Upload ledger
	var ledger uploads.Ledger = uploads.NewMemoryLedger()
	if cfg.Database.Enabled() {
		if err := db.Connect(cfg); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("Failed to close database connection", err)
			}
		}()
		ledger = uploads.NewGormLedger(db.GetDB())
	} else {
		logger.Warn("POSTGRES_HOST not set, upload ledger kept in memory")
	}

	// Document storage
	storage := services.Storage{Ledger: ledger}
	// Background discards through the backend act as the uploader, with its recorded cookies
	var discarder services.Discarder = services.NewBackendDiscarder(backend)
	if cfg.Storage.Provider == "s3" {
		s3Service, err := services.NewS3Service(context.Background(), cfg.Storage.S3)
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		storage.Uploader = s3Service
		discarder = services.StorageDiscarder{Uploader: s3Service}
	}

	events.On(events.UploadOrphaned, func(data interface{}) {
		if rec, ok := data.(models.UploadRecord); ok {
			logger.Warn("Upload %s orphaned at %s", rec.ID, rec.URL)
		}
	})

	// Background discard of orphaned uploads
	var (
		taskClient    *tasks.TaskClient
		taskServer    *tasks.Server
		taskScheduler *tasks.Scheduler
	)
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	if cfg.Tasks.Enabled {
		taskClient = tasks.NewTaskClient(cfg.Redis)
		storage.Scheduler = taskClient

		taskHandler := tasks.NewTaskHandler(ledger, discarder, taskClient)
		taskServer = tasks.NewServer(cfg.Redis, cfg.Tasks.Concurrency, taskHandler, logger)
		go func() {
			if err := taskServer.Start(serverCtx); err != nil {
				logger.Error("Task server error", err)
			}
		}()

		taskScheduler = tasks.NewScheduler(cfg.Redis, logger)
		if err := taskScheduler.RegisterSweep(cfg.Tasks.SweepSchedule); err != nil {
			log.Fatalf("Failed to schedule upload sweep: %v", err)
		}
		go func() {
			if err := taskScheduler.Start(); err != nil {
				logger.Error("Task scheduler error", err)
			}
		}()
	}

	// Request generations of tabs idle longer than their stored selection are dropped
	guard := selection.NewGuard()
	go guard.PruneEvery(serverCtx, 10*time.Minute, cfg.Session.TabTTL)

	// Initialize API server
	apiServer, err := api.NewServer(cfg, api.Options{
		Sessions:   session.NewRedisStore(rdb),
		Selections: selection.NewRedisStorage(rdb, cfg.Session.TabTTL),
		Guard:      guard,
		Backend:    backend,
		Storage:    storage,
		Limiter: throttle.NewRedisLimiter(rdb, "login", throttle.Limit{
			Window:      cfg.Session.LoginWindow,
			MaxAttempts: cfg.Session.LoginAttempts,
		}),
		Checks: map[string]api.HealthCheck{
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})
	if err != nil {
		log.Fatalf("Failed to create API server: %v", err)
	}

	// Swagger documentation
	swagger.SwaggerInfo.Title = "SmartEntrance Gateway API"
	swagger.SwaggerInfo.Version = "1.0"
	if u, err := url.Parse(cfg.Server.PublicURL); err == nil && u.Host != "" {
		swagger.SwaggerInfo.Host = u.Host
		swagger.SwaggerInfo.Schemes = []string{u.Scheme}
	}

	go func() {
		logger.Success("API server started")
		if err := apiServer.Start(); err != nil {
			logger.Error("API server error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the servers
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Create a deadline for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown API server", err)
	}

	if taskScheduler != nil {
		taskScheduler.Stop()
	}
	if taskServer != nil {
		serverCancel()
		taskServer.Shutdown()
	}
	if taskClient != nil {
		if err := taskClient.Close(); err != nil {
			logger.Error("Failed to close task client", err)
		}
	}

	events.Wait()
	logger.Info("Servers shutdown gracefully")
}
