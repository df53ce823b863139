package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Supabase
	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseJWTSecret     string
	SupabaseStorageBucket string

	// Database (direct connection, used for migrations only)
	DatabaseURL string

	// Persistence engine
	SaveDebounceMs      int
	GCDeleteBatchSize   int
	StorageListPageSize int

	// Server
	Port        string
	Environment string
	LogLevel    string
}

func Load() (*Config, error) {
	cfg := &Config{
		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseJWTSecret:     getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "project-media"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		SaveDebounceMs:      getEnvInt("SAVE_DEBOUNCE_MS", 2000),
		GCDeleteBatchSize:   getEnvInt("GC_DELETE_BATCH_SIZE", 1000),
		StorageListPageSize: getEnvInt("STORAGE_LIST_PAGE_SIZE", 100),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.SaveDebounceMs < 0 {
		return fmt.Errorf("SAVE_DEBOUNCE_MS must not be negative")
	}
	if c.GCDeleteBatchSize < 1 {
		return fmt.Errorf("GC_DELETE_BATCH_SIZE must be at least 1")
	}
	if c.StorageListPageSize < 1 {
		return fmt.Errorf("STORAGE_LIST_PAGE_SIZE must be at least 1")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
