package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// MongoDB Configuration
	MongoURI      string
	MongoDatabase string
	MongoTimeout  time.Duration

	// HTTP Server Configuration
	HTTPPort         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration

	// Logging Configuration
	LogLevel  string
	LogFormat string

	// Watchdog Configuration
	WatchdogEnabled  bool
	WatchdogSchedule string // cron expression
	WatchdogLockTTL  time.Duration
	DefaultSLAHours  int
	DedupChunkSize   int
	BatchWriteLimit  int
	AlertSeverity    string

	// Analytics Mirror Configuration
	WarehouseURL      string // empty disables the mirror
	WarehouseTimeout  time.Duration
	MirrorRetainPaths []string // JSONPath allow-list for mirrored metadata

	// CORS Configuration
	CORSAllowedOrigins   string
	CORSAllowedMethods   string
	CORSAllowedHeaders   string
	CORSAllowCredentials bool
	CORSMaxAge           int
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		// MongoDB
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017/kestrel?authSource=admin"),
		MongoDatabase: getEnv("MONGO_DATABASE", "kestrel"),
		MongoTimeout:  getDurationEnv("MONGO_TIMEOUT_SEC", 10) * time.Second,

		// HTTP Server
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		HTTPReadTimeout:  getDurationEnv("HTTP_READ_TIMEOUT_SEC", 30) * time.Second,
		HTTPWriteTimeout: getDurationEnv("HTTP_WRITE_TIMEOUT_SEC", 30) * time.Second,

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Watchdog
		WatchdogEnabled:  getBoolEnv("WATCHDOG_ENABLED", true),
		WatchdogSchedule: getEnv("WATCHDOG_SCHEDULE", "*/15 * * * *"),
		WatchdogLockTTL:  getDurationEnv("WATCHDOG_LOCK_TTL_SEC", 600) * time.Second,
		DefaultSLAHours:  getIntEnv("DEFAULT_SLA_HOURS", 24),
		DedupChunkSize:   getIntEnv("DEDUP_CHUNK_SIZE", 10),
		BatchWriteLimit:  getIntEnv("BATCH_WRITE_LIMIT", 500),
		AlertSeverity:    getEnv("ALERT_SEVERITY", "HIGH"),

		// Analytics Mirror
		WarehouseURL:      getEnv("WAREHOUSE_INGEST_URL", ""),
		WarehouseTimeout:  getDurationEnv("WAREHOUSE_TIMEOUT_SEC", 10) * time.Second,
		MirrorRetainPaths: getListEnv("MIRROR_RETAIN_PATHS", "$.device.model,$.duration_seconds,$.supplies_used"),

		// CORS
		CORSAllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "*"),
		CORSAllowedMethods:   getEnv("CORS_ALLOWED_METHODS", "GET, POST, PUT, DELETE, OPTIONS, PATCH"),
		CORSAllowedHeaders:   getEnv("CORS_ALLOWED_HEADERS", "*"),
		CORSAllowCredentials: getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
		CORSMaxAge:           getIntEnv("CORS_MAX_AGE", 3600),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return time.Duration(intVal)
		}
		log.Printf("Warning: Invalid duration value for %s, using default %d", key, defaultValue)
	}
	return time.Duration(defaultValue)
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
	}
	return defaultValue
}

func getListEnv(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
