package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 30*time.Second, cfg.Pricing.SettingsCacheTTL)
	assert.Equal(t, time.Second, cfg.Ordering.BatchWindow)
	assert.Equal(t, 3, cfg.Ordering.MaxRetries)
	assert.Equal(t, "haversine", cfg.Distance.Provider)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ROADBOOK_HTTP_ADDR", ":9090")
	t.Setenv("ROADBOOK_ORDERING_BATCH_WINDOW", "250ms")
	t.Setenv("ROADBOOK_KAFKA_ENABLED", "true")
	t.Setenv("ROADBOOK_KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("ROADBOOK_APP_TIMEZONE", "Europe/Athens")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.Ordering.BatchWindow)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "Europe/Athens", cfg.Location().String())
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roadbook.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\npricing:\n  settings_cache_ttl: 5s\n"), 0o600))
	t.Setenv("ROADBOOK_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5*time.Second, cfg.Pricing.SettingsCacheTTL)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"google without key":  {"ROADBOOK_DISTANCE_PROVIDER": "google"},
		"unknown provider":    {"ROADBOOK_DISTANCE_PROVIDER": "osrm"},
		"kafka without hosts": {"ROADBOOK_KAFKA_ENABLED": "true", "ROADBOOK_KAFKA_BROKERS": " "},
		"bad timezone":        {"ROADBOOK_APP_TIMEZONE": "Mars/Olympus"},
		"zero retries":        {"ROADBOOK_ORDERING_MAX_RETRIES": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
