package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"API_PORT", "PORT", "STORAGE_DRIVER", "COUCHBASE_URL", "COUCHBASE_BUCKET", "CORS_ORIGINS", "ENABLE_SYSTEM_METRICS", "API_LOG_LEVEL", "ELASTICSEARCH_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, StorageCouchbase, cfg.StorageDriver)
	assert.Equal(t, "couchbase://localhost", cfg.CouchbaseURL)
	assert.Equal(t, "care-vitals", cfg.CouchbaseBucket)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.ElasticsearchURL)
	assert.False(t, cfg.SystemMetrics)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_PORT", "")
	t.Setenv("PORT", "8081")
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://care.example.com ,")
	t.Setenv("ENABLE_SYSTEM_METRICS", "true")

	cfg := Load()
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, []string{"http://localhost:5173", "https://care.example.com"}, cfg.CORSOrigins)
	assert.True(t, cfg.SystemMetrics)

	t.Setenv("API_PORT", "9000")
	assert.Equal(t, "9000", Load().Port)
}
