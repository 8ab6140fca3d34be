package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the gateway
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Session  SessionConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Redis    RedisConfig
	I18n     I18nConfig
	Tasks    TasksConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	PublicURL string
	// SecureCookies marks every cookie the gateway sets as Secure.
	SecureCookies bool
}

// BackendConfig describes the REST backend the gateway consumes.
type BackendConfig struct {
	BaseURL       string
	Timeout       time.Duration
	SigningSecret string
}

type SessionConfig struct {
	JWTSecret      string
	TTL            time.Duration
	TabTTL         time.Duration
	LoginAttempts  int
	LoginWindow    time.Duration
	RememberMaxAge time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Enabled reports whether the upload ledger should be persisted in postgres.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

type StorageConfig struct {
	Provider string // backend, s3
	S3       S3Config
}

type S3Config struct {
	BucketName string `env:"S3_BUCKET_NAME" required:"true"`
	Endpoint   string `env:"S3_ENDPOINT"`
	Region     string `env:"S3_REGION" required:"true"`
	AccessKey  string `env:"S3_ACCESS_KEY" required:"true"`
	SecretKey  string `env:"S3_SECRET_KEY" required:"true"`
}

type RedisConfig struct {
	Addr     string
	Password string
	Username string
	DB       int
}

type I18nConfig struct {
	DefaultLanguage string
}

// TasksConfig controls the background upload cleanup.
type TasksConfig struct {
	Enabled       bool
	Concurrency   int
	SweepSchedule string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:          getEnv("SERVER_HOST", "localhost"),
			Port:          getEnvAsInt("SERVER_PORT", 8080),
			PublicURL:     getEnv("PUBLIC_URL", "http://localhost:8080"),
			SecureCookies: getEnvAsBool("SECURE_COOKIES", false),
		},
		Backend: BackendConfig{
			BaseURL:       getEnv("BACKEND_BASE_URL", "http://localhost:5000/api"),
			Timeout:       getEnvAsDuration("BACKEND_TIMEOUT", 15*time.Second),
			SigningSecret: getEnv("BACKEND_SIGNING_SECRET", ""),
		},
		Session: SessionConfig{
			JWTSecret:      getEnv("JWT_SECRET", "your-secret-key"),
			TTL:            getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			TabTTL:         getEnvAsDuration("TAB_SELECTION_TTL", 12*time.Hour),
			LoginAttempts:  getEnvAsInt("LOGIN_MAX_ATTEMPTS", 10),
			LoginWindow:    getEnvAsDuration("LOGIN_ATTEMPT_WINDOW", 15*time.Minute),
			RememberMaxAge: getEnvAsDuration("REMEMBER_EMAIL_MAX_AGE", 365*24*time.Hour),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", ""),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Name:     getEnv("POSTGRES_DB", "smartentrance"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Storage: StorageConfig{
			Provider: getEnv("STORAGE_PROVIDER", "backend"),
			S3: S3Config{
				BucketName: getEnv("S3_BUCKET_NAME", ""),
				Endpoint:   getEnv("S3_ENDPOINT", ""),
				Region:     getEnv("S3_REGION", ""),
				AccessKey:  getEnv("S3_ACCESS_KEY", ""),
				SecretKey:  getEnv("S3_SECRET_KEY", ""),
			},
		},
		Redis: RedisConfig{
			Addr:     fmt.Sprintf("%s:%d", getEnv("REDIS_HOST", "localhost"), getEnvAsInt("REDIS_PORT", 6379)),
			Password: getEnv("REDIS_PASSWORD", ""),
			Username: getEnv("REDIS_USERNAME", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		I18n: I18nConfig{
			DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "bg-BG"),
		},
		Tasks: TasksConfig{
			Enabled:       getEnvAsBool("TASKS_ENABLED", true),
			Concurrency:   getEnvAsInt("TASKS_CONCURRENCY", 5),
			SweepSchedule: getEnv("UPLOAD_SWEEP_SCHEDULE", "*/30 * * * *"),
		},
	}

	if cfg.Storage.Provider != "backend" && cfg.Storage.Provider != "s3" {
		return nil, fmt.Errorf("unknown STORAGE_PROVIDER %q", cfg.Storage.Provider)
	}
	if cfg.Backend.Timeout <= 0 {
		return nil, fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// Save writes the effective configuration, secrets included, to path.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
