package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"DATA_DIR", "DB_PATH", "INBOX_DIR", "HTTP_ADDRESS", "SYNC_SCHEDULE",
	"ATHLETE_WEIGHT_KG", "ATHLETE_HEIGHT_CM", "LOG_LEVEL", "SHUTDOWN_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, filepath.Join("data", "ftracker.db"), filepath.Clean(cfg.DBPath))
	assert.Equal(t, filepath.Join("data", "inbox"), filepath.Clean(cfg.InboxDir))
	assert.Equal(t, ":8888", cfg.HTTPAddress)
	assert.Equal(t, "@hourly", cfg.SyncSchedule)
	assert.Equal(t, 75.0, cfg.Athlete.WeightKg)
	assert.Equal(t, 175.0, cfg.Athlete.HeightCm)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_DIR", "/srv/ftracker")
	t.Setenv("HTTP_ADDRESS", "127.0.0.1:9000")
	t.Setenv("SYNC_SCHEDULE", "*/5 * * * *")
	t.Setenv("ATHLETE_WEIGHT_KG", "82.5")
	t.Setenv("ATHLETE_HEIGHT_CM", "182")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SHUTDOWN_TIMEOUT", "250ms")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/srv/ftracker/ftracker.db", cfg.DBPath)
	assert.Equal(t, "/srv/ftracker/inbox", cfg.InboxDir)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddress)
	assert.Equal(t, "*/5 * * * *", cfg.SyncSchedule)
	assert.Equal(t, 82.5, cfg.Athlete.WeightKg)
	assert.Equal(t, 182.0, cfg.Athlete.HeightCm)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.ShutdownTimeout)
}

func TestFromEnvInvalidLogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "loud")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestFromEnvInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"ATHLETE_WEIGHT_KG", "75kg"},
		{"ATHLETE_HEIGHT_CM", "not-a-number"},
		{"SHUTDOWN_TIMEOUT", "5"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
			assert.Contains(t, err.Error(), tt.value)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv only fills variables that are unset.
	require.NoError(t, os.Unsetenv("DB_PATH"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_PATH=/tmp/from-dotenv.db\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("DB_PATH") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-dotenv.db", cfg.DBPath)
}

func TestLoadMissingEnvFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := Config{LogLevel: slog.LevelWarn}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", slog.String("file", "week.yaml"))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "file=week.yaml")
}
