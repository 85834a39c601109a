package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServerPort  string
	Environment string
	LogLevel    string
	LogFormat   string

	Days    []string // Ordered school days
	Periods []string // Ordered periods within a day

	SearchStepBudget  int
	GenerationTimeout time.Duration
	SnapshotPath      string // Optional snapshot loaded at startup (.json, .yaml, .xlsx)

	StoreDriver string // memory | postgres
	DatabaseURL string

	CacheTTL time.Duration

	MinIOEnabled    bool
	MinIOEndpoint   string
	MinIOAccessKey  string
	MinIOSecretKey  string
	MinIOBucket     string
	MinIOUseSSL     bool
	PresignedURLTTL time.Duration

	AllowedOrigins []string
}

func Load() *Config {
	cacheMinutes, _ := strconv.Atoi(getEnv("CACHE_TTL_MINUTES", "10"))
	presignedMinutes, _ := strconv.Atoi(getEnv("PRESIGNED_URL_TTL_MINUTES", "15"))
	timeoutSeconds, _ := strconv.Atoi(getEnv("GENERATION_TIMEOUT_SECONDS", "30"))
	useSSL, _ := strconv.ParseBool(getEnv("MINIO_USE_SSL", "false"))
	minioEnabled, _ := strconv.ParseBool(getEnv("MINIO_ENABLED", "false"))

	budget, err := strconv.Atoi(getEnv("SEARCH_STEP_BUDGET", "100000"))
	if err != nil || budget <= 0 {
		budget = 100000
	}
	if cacheMinutes <= 0 {
		cacheMinutes = 10
	}
	if presignedMinutes <= 0 {
		presignedMinutes = 15
	}
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}

	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		Days:              splitList(getEnv("SCHEDULE_DAYS", "Monday,Tuesday,Wednesday,Thursday,Friday")),
		Periods:           splitList(getEnv("SCHEDULE_PERIODS", "09:00,10:00,11:00,12:00,14:00,15:00")),
		SearchStepBudget:  budget,
		GenerationTimeout: time.Duration(timeoutSeconds) * time.Second,
		SnapshotPath:      getEnv("SNAPSHOT_PATH", ""),
		StoreDriver:       getEnv("STORE_DRIVER", "memory"),
		DatabaseURL:       getEnv("DB_URL", ""),
		CacheTTL:          time.Duration(cacheMinutes) * time.Minute,
		MinIOEnabled:      minioEnabled,
		MinIOEndpoint:     getEnv("MINIO_ENDPOINT", "minio:9000"),
		MinIOAccessKey:    getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey:    getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOBucket:       getEnv("MINIO_BUCKET", "timetables"),
		MinIOUseSSL:       useSSL,
		PresignedURLTTL:   time.Duration(presignedMinutes) * time.Minute,
		AllowedOrigins:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitList parses a comma separated list, dropping empty items
func splitList(value string) []string {
	var items []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
