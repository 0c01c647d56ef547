// Package config reads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sstent/ftracker/internal/models"
)

type Config struct {
	DataDir         string
	DBPath          string
	InboxDir        string
	HTTPAddress     string
	SyncSchedule    string
	Athlete         models.Athlete
	LogLevel        slog.Level
	ShutdownTimeout time.Duration
}

// Load applies .env (when present) and reads the environment. A missing
// .env file is not an error.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv reads configuration without touching .env files.
func FromEnv() (Config, error) {
	dataDir := getEnv("DATA_DIR", "./data")

	cfg := Config{
		DataDir:         dataDir,
		DBPath:          getEnv("DB_PATH", filepath.Join(dataDir, "ftracker.db")),
		InboxDir:        getEnv("INBOX_DIR", filepath.Join(dataDir, "inbox")),
		HTTPAddress:     getEnv("HTTP_ADDRESS", ":8888"),
		SyncSchedule:    getEnv("SYNC_SCHEDULE", "@hourly"),
	}

	var err error
	if cfg.ShutdownTimeout, err = getDurationEnv("SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Athlete.WeightKg, err = getFloatEnv("ATHLETE_WEIGHT_KG", 75); err != nil {
		return Config{}, err
	}
	if cfg.Athlete.HeightCm, err = getFloatEnv("ATHLETE_HEIGHT_CM", 175); err != nil {
		return Config{}, err
	}
	if cfg.LogLevel, err = parseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// NewLogger builds a text logger writing to w at the configured level.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", value, err)
	}
	return level, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return parsed, nil
}

func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return parsed, nil
}
