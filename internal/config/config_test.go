package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "ats_documents", cfg.Qdrant.Collection)
	assert.Equal(t, int64(10485760), cfg.Storage.MaxFileSize)
	assert.Equal(t, 2, cfg.Worker.Concurrency)
	assert.Equal(t, 3, cfg.Worker.RetryMaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Worker.PollInterval)
	assert.Equal(t, 8, cfg.Ranking.Concurrency)
	assert.False(t, cfg.Log.JSON)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("QDRANT_COLLECTION", "staging_documents")
	t.Setenv("WORKER_CONCURRENCY", "4")
	t.Setenv("WORKER_POLL_INTERVAL", "5s")
	t.Setenv("MAX_FILE_SIZE", "1048576")
	t.Setenv("LOG_JSON", "true")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "staging_documents", cfg.Qdrant.Collection)
	assert.Equal(t, 4, cfg.Worker.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.Worker.PollInterval)
	assert.Equal(t, int64(1048576), cfg.Storage.MaxFileSize)
	assert.True(t, cfg.Log.JSON)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("WORKER_CONCURRENCY", "not-a-number")
	t.Setenv("WORKER_POLL_INTERVAL", "soon")

	cfg := Load()

	assert.Equal(t, 2, cfg.Worker.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Worker.PollInterval)
}

func TestGetDatabaseDSN(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USER", "ats")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "ats_prod")

	cfg := Load()

	assert.Equal(t,
		"host=db.internal port=5433 user=ats password=secret dbname=ats_prod sslmode=disable",
		cfg.GetDatabaseDSN())
}
