package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/infra/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, config.StorageMemory, cfg.StorageMode)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 168*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.OutboxPoll)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.Equal(t, 30, cfg.AuthRatePerMin)
	assert.Empty(t, cfg.KafkaBrokers)
	// public endpoint falls back to the internal one
	assert.Equal(t, cfg.S3Endpoint, cfg.S3PublicEndpoint)
}

func TestLoadParsesListsAndDurations(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("SESSION_TTL", "24h")
	t.Setenv("RETRY_BACKOFF", "2s, 10s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []time.Duration{2 * time.Second, 10 * time.Second}, cfg.RetryBackoff)
}

func TestLoadMongoModeRequiresURI(t *testing.T) {
	t.Setenv("STORAGE_MODE", "mongo")

	_, err := config.Load()
	require.Error(t, err)

	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StorageMongo, cfg.StorageMode)
	assert.Equal(t, "homestay", cfg.MongoDB)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownStorageMode(t *testing.T) {
	t.Setenv("STORAGE_MODE", "cassandra")
	_, err := config.Load()
	assert.Error(t, err)
}
