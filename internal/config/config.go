// Package config loads climavet settings from the environment and the
// terminal client's keymap file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is the process configuration shared by the web server and CLI.
type Config struct {
	Port       string        `validate:"required,numeric"`
	DBPath     string        `validate:"required"`
	APIURL     string        `validate:"required,url"`
	ClinicID   int64         `validate:"gte=0"`
	LogLevel   string        `validate:"oneof=debug info warn error"`
	APITimeout time.Duration `validate:"gte=0"`
	// WSOrigins are extra host patterns allowed to open /ws. Same-host
	// pages are always allowed.
	WSOrigins []string
}

// Load reads a .env file if present, then the CLIMAVET_* environment
// variables, and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:     getEnv(getenv, "CLIMAVET_PORT", "8080"),
		DBPath:   getEnv(getenv, "CLIMAVET_DB_PATH", "climavet.db"),
		APIURL:   getEnv(getenv, "CLIMAVET_API_URL", "http://localhost:8000"),
		LogLevel: strings.ToLower(getEnv(getenv, "CLIMAVET_LOG_LEVEL", "info")),
	}

	if v := getenv("CLIMAVET_CLINIC_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("CLIMAVET_CLINIC_ID: %w", err)
		}
		cfg.ClinicID = id
	}

	if v := getenv("CLIMAVET_API_TIMEOUT"); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return Config{}, fmt.Errorf("CLIMAVET_API_TIMEOUT: %w", err)
		}
		cfg.APITimeout = d
	}

	for _, o := range strings.Split(getenv("CLIMAVET_WS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.WSOrigins = append(cfg.WSOrigins, o)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// parseTimeout accepts a Go duration or a bare number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func getEnv(getenv func(string) string, key, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}
