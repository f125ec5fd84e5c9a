package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, ModeOffline, cfg.Mode)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "fs", cfg.BlobDriver)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "Algenib", cfg.GeminiVoice)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:9002"}, cfg.CORSOrigins())
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "http_addr: \":9090\"\ndb_driver: postgres\nsession_ttl: 30m\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("CEFR_DB_DRIVER", "memory")
	t.Setenv("CEFR_CORS_ORIGINS_OFFLINE", " https://a.example , https://b.example,")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "memory", cfg.DBDriver)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOriginsOffline)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("CEFR_BLOB_DRIVER", "gcs")
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestLoadRejectsZeroSpeechBurst(t *testing.T) {
	t.Setenv("CEFR_SPEECH_RATE_BURST", "0")
	_, err := Load(t.TempDir())
	assert.ErrorContains(t, err, "burst")
}

func TestOnlineModeNeedsStrongSecret(t *testing.T) {
	t.Setenv("CEFR_MODE", "online")
	_, err := Load(t.TempDir())
	assert.ErrorContains(t, err, "auth secret")

	t.Setenv("CEFR_AUTH_SECRET", "0123456789abcdef0123456789abcdef")
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cefr.mindengage.ai"}, cfg.CORSOrigins())
}
