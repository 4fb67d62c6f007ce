package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// MinSecretBytes is the smallest signing secret accepted (256 bits).
const MinSecretBytes = 32

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port              string
	DatabaseURL       string
	RedisURL          string
	SessionSecret     []byte
	SessionIssuer     string
	SessionTTL        time.Duration
	SessionRefresh    time.Duration
	CookieSecure      bool
	CORSOrigins       []string
	PermissionsFile   string
	ProtectedPrefixes []string
	LogLevel          zapcore.Level
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:              fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:          strings.TrimSpace(os.Getenv("REDIS_URL")),
		SessionIssuer:     fallback(os.Getenv("SESSION_ISSUER"), "eros-desk"),
		SessionTTL:        hours(os.Getenv("SESSION_TTL_HOURS"), 30*24),
		SessionRefresh:    hours(os.Getenv("SESSION_REFRESH_HOURS"), 24),
		CookieSecure:      fallback(os.Getenv("COOKIE_SECURE"), "true") != "false",
		CORSOrigins:       parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		PermissionsFile:   strings.TrimSpace(os.Getenv("PERMISSIONS_FILE")),
		ProtectedPrefixes: parseCSV(os.Getenv("PROTECTED_PREFIXES")),
	}
	if len(cfg.ProtectedPrefixes) == 1 && cfg.ProtectedPrefixes[0] == "*" {
		cfg.ProtectedPrefixes = nil
	}

	level, err := zapcore.ParseLevel(fallback(os.Getenv("LOG_LEVEL"), "info"))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	secret, err := ParseSecret(os.Getenv("SESSION_SECRET"))
	if err != nil {
		return Config{}, err
	}
	cfg.SessionSecret = secret

	return cfg, nil
}

// ParseSecret accepts a hex-encoded or raw secret of at least MinSecretBytes bytes.
func ParseSecret(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}
	secret := []byte(raw)
	if decoded, err := hex.DecodeString(raw); err == nil {
		secret = decoded
	}
	if len(secret) < MinSecretBytes {
		return nil, fmt.Errorf("SESSION_SECRET must be at least %d bytes", MinSecretBytes)
	}
	return secret, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func hours(value string, def int) time.Duration {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
		return time.Duration(n) * time.Hour
	}
	return time.Duration(def) * time.Hour
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// LoadDatabaseURL returns DATABASE_URL for commands that only touch the store.
func LoadDatabaseURL() (string, error) {
	url := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if url == "" {
		return "", errors.New("DATABASE_URL is required")
	}
	return url, nil
}
