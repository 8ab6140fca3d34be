package config

import "time"

func LoadTestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8081,
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:5001/api",
			Timeout: 2 * time.Second,
		},
		Session: SessionConfig{
			JWTSecret:      "test-secret",
			TTL:            time.Hour,
			TabTTL:         time.Hour,
			LoginAttempts:  5,
			LoginWindow:    time.Minute,
			RememberMaxAge: 24 * time.Hour,
		},
		Storage: StorageConfig{
			Provider: "backend",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		},
		I18n: I18nConfig{
			DefaultLanguage: "en-US",
		},
		Tasks: TasksConfig{
			Concurrency:   1,
			SweepSchedule: "*/30 * * * *",
		},
	}
}
