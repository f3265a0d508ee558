package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "DB_DRIVER", "DB_DSN", "MAX_IMAGE_BYTES", "SHUTDOWN_TIMEOUT", "STORAGE_BACKEND"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "local", cfg.StorageBackend)
	assert.Equal(t, int64(5<<20), cfg.MaxImageBytes)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/media/", cfg.MediaURL)
}

func TestLoadPostgresWhenDSNSet(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_DSN", "host=localhost user=app dbname=catalog")
	t.Setenv("MAX_IMAGE_BYTES", "1024")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, int64(1024), cfg.MaxImageBytes)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestLoadIgnoresBadNumbers(t *testing.T) {
	t.Setenv("MAX_IMAGE_BYTES", "lots")
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")

	cfg := Load()

	assert.Equal(t, int64(5<<20), cfg.MaxImageBytes)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoadAllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "")
	assert.Equal(t, []string{"http://localhost:3000"}, Load().AllowedOrigins)

	t.Setenv("ALLOWED_ORIGINS", " https://admin.example.com/ ,,http://localhost:3000")
	assert.Equal(t, []string{"https://admin.example.com", "http://localhost:3000"}, Load().AllowedOrigins)
}
