package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"AIS_INPUT", "AIS_DELIMITER", "AIS_TIMESTAMP_LAYOUT", "TZ",
	"MAX_SPEED_KMH", "EARTH_RADIUS_KM", "WORKERS", "CHANNEL_BUFFER",
	"DATABASE_URL", "NATS_URL", "NATS_SUBJECT_PREFIX", "NATS_PUBLISH_TOTALS",
	"LOG_NATS_SUBJECTS", "METRICS_ADDR", "PUSHGATEWAY_URL", "API_ADDR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "aisdk.csv", cfg.InputPath)
	assert.Equal(t, ',', cfg.Delimiter)
	assert.Equal(t, "02/01/2006 15:04:05", cfg.TimestampLayout)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 100.0, cfg.MaxSpeedKmh)
	assert.Equal(t, 6371.0, cfg.EarthRadiusKm)
	assert.Positive(t, cfg.Workers)
	assert.Equal(t, 1024, cfg.ChannelBuffer)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.NATSURL)
	assert.Equal(t, "ais.routes", cfg.NATSSubjectPrefix)
	assert.False(t, cfg.NATSPublishTotals)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Empty(t, cfg.APIAddr)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AIS_INPUT", "/data/aisdk-2024-05-04.csv")
	t.Setenv("AIS_DELIMITER", `\t`)
	t.Setenv("TZ", "Europe/Copenhagen")
	t.Setenv("MAX_SPEED_KMH", "55.5")
	t.Setenv("EARTH_RADIUS_KM", "1")
	t.Setenv("WORKERS", "3")
	t.Setenv("DATABASE_URL", "sqlite:./data/routes.db")
	t.Setenv("NATS_URL", "nats://127.0.0.1:4222")
	t.Setenv("NATS_SUBJECT_PREFIX", "fleet.")
	t.Setenv("NATS_PUBLISH_TOTALS", "yes")
	t.Setenv("API_ADDR", ":8080")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/aisdk-2024-05-04.csv", cfg.InputPath)
	assert.Equal(t, '\t', cfg.Delimiter)
	assert.Equal(t, "Europe/Copenhagen", cfg.Location.String())
	assert.Equal(t, 55.5, cfg.MaxSpeedKmh)
	assert.Equal(t, 1.0, cfg.EarthRadiusKm)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "sqlite:./data/routes.db", cfg.DatabaseURL)
	assert.Equal(t, "fleet", cfg.NATSSubjectPrefix)
	assert.True(t, cfg.NATSPublishTotals)
	assert.Equal(t, ":8080", cfg.APIAddr)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"MAX_SPEED_KMH", "fast"},
		{"MAX_SPEED_KMH", "0"},
		{"EARTH_RADIUS_KM", "-1"},
		{"WORKERS", "1.5"},
		{"CHANNEL_BUFFER", "0"},
		{"AIS_DELIMITER", ";;"},
		{"AIS_DELIMITER", `"`},
		{"TZ", "Mars/Olympus"},
		{"NATS_SUBJECT_PREFIX", "."},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoadIgnoresDBPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", "./data/routes.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.DatabaseURL)
}
