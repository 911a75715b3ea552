package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseJSON_AllFields(t *testing.T) {
	path := writeTempJSON(t, `{
		"app": {"api_token": "tok", "user_id": "user-7"},
		"adapter": {"address": "https://api.fitsync.dev", "request_timeout": "45s"},
		"storage": {"db": {"dsn": "/data/client.db"}},
		"workers": {"sync_interval": "5m", "probe_interval": "30s", "disable_auto_sync": true},
		"sync": {"conflict_strategy": "manual"}
	}`)

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.App.APIToken)
	assert.Equal(t, "user-7", cfg.App.UserID)
	assert.Equal(t, "https://api.fitsync.dev", cfg.Adapter.Address)
	assert.Equal(t, 45*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, "/data/client.db", cfg.Storage.DB.DSN)
	assert.Equal(t, 5*time.Minute, cfg.Workers.SyncInterval)
	assert.Equal(t, 30*time.Second, cfg.Workers.ProbeInterval)
	assert.True(t, cfg.Workers.DisableAutoSync)
	assert.Equal(t, "manual", cfg.Sync.ConflictStrategy)
}

func TestParseJSON_NumericDuration(t *testing.T) {
	// Durations may arrive as raw nanosecond numbers.
	path := writeTempJSON(t, `{"adapter": {"request_timeout": 45000000000}}`)

	cfg, err := parseJSON(path)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Adapter.RequestTimeout)
}

func TestParseJSON_FileMissing(t *testing.T) {
	_, err := parseJSON(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestParseJSON_MalformedJSON(t *testing.T) {
	path := writeTempJSON(t, `{"adapter": `)

	_, err := parseJSON(path)
	require.Error(t, err)
}

func TestParseJSON_InvalidDurationString(t *testing.T) {
	path := writeTempJSON(t, `{"workers": {"sync_interval": "five minutes"}}`)

	_, err := parseJSON(path)
	require.Error(t, err)
}
