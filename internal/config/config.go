package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	StorageCouchbase = "couchbase"
	StorageMemory    = "memory"
)

// Config is the process configuration, read from the environment
type Config struct {
	Port             string
	StorageDriver    string
	CouchbaseURL     string
	CouchbaseUser    string
	CouchbasePass    string
	CouchbaseBucket  string
	ElasticsearchURL string
	LogLevel         string
	CORSOrigins      []string
	SystemMetrics    bool
}

// LoadEnvFiles loads ../.env then .env if present. Variables that are
// already set win.
func LoadEnvFiles() {
	err := godotenv.Load("../.env")
	if err != nil {
		log.Info().Msg("Not found .env file in parent directory, trying current directory")
		err = godotenv.Load(".env")
		if err != nil {
			log.Info().Msg("Not found .env file in current directory, assuming environment variables are set")
		}
	}
}

// Load reads the configuration from the environment with local
// development defaults
func Load() Config {
	port := getEnvOrDefault("API_PORT", getEnvOrDefault("PORT", "3000"))

	return Config{
		Port:             port,
		StorageDriver:    strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", StorageCouchbase)),
		CouchbaseURL:     getEnvOrDefault("COUCHBASE_URL", "couchbase://localhost"),
		CouchbaseUser:    getEnvOrDefault("COUCHBASE_USERNAME", "care_vitals"),
		CouchbasePass:    getEnvOrDefault("COUCHBASE_PASSWORD", "password"),
		CouchbaseBucket:  getEnvOrDefault("COUCHBASE_BUCKET", "care-vitals"),
		ElasticsearchURL: os.Getenv("ELASTICSEARCH_URL"),
		LogLevel:         getEnvOrDefault("API_LOG_LEVEL", "info"),
		CORSOrigins:      splitList(getEnvOrDefault("CORS_ORIGINS", "*")),
		SystemMetrics:    os.Getenv("ENABLE_SYSTEM_METRICS") == "true",
	}
}

// Helper function to get environment variable with default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
