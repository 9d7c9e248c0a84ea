// Package config loads application configuration from environment variables.
package config

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr   string
	DBPath       string
	SecretKey    []byte // 32-byte AES-256 key; nil when HELPDESK_STRIPE_APP_KEY is unset.
	StripeAPIURL string // Empty means the stripe-go default.
	HTTPTimeout  time.Duration
	ListLimit    int64
	AssetPath    string
	LogLevel     slog.Level
}

// HasSecretKey returns true when an encryption key was configured. Without
// one, stored Stripe keys can neither be written nor read.
func (c *Config) HasSecretKey() bool {
	return c.SecretKey != nil
}

// Load reads configuration from environment variables and returns a validated Config.
// All variables are optional:
// HELPDESK_STRIPE_LISTEN_ADDR (127.0.0.1:8080), HELPDESK_STRIPE_DB_PATH (helpdesk-stripe.db),
// HELPDESK_STRIPE_APP_KEY (64 hex chars or "base64:" followed by 32 encoded bytes),
// HELPDESK_STRIPE_API_URL, HELPDESK_STRIPE_HTTP_TIMEOUT (80s),
// HELPDESK_STRIPE_LIST_LIMIT (10), HELPDESK_STRIPE_ASSET_PATH (/modules/stripe),
// HELPDESK_STRIPE_LOG_LEVEL (info).
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("HELPDESK_STRIPE_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "helpdesk-stripe.db"
	if v, ok := os.LookupEnv("HELPDESK_STRIPE_DB_PATH"); ok {
		dbPath = v
	}

	var secretKey []byte
	if v, ok := os.LookupEnv("HELPDESK_STRIPE_APP_KEY"); ok && v != "" {
		key, err := parseAppKey(v)
		if err != nil {
			return nil, fmt.Errorf("HELPDESK_STRIPE_APP_KEY: %w", err)
		}
		secretKey = key
	}

	httpTimeout := 80 * time.Second
	if v, ok := os.LookupEnv("HELPDESK_STRIPE_HTTP_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("HELPDESK_STRIPE_HTTP_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("HELPDESK_STRIPE_HTTP_TIMEOUT must be positive, got %s", parsed)
		}
		httpTimeout = parsed
	}

	listLimit := int64(10)
	if v, ok := os.LookupEnv("HELPDESK_STRIPE_LIST_LIMIT"); ok {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed < 1 || parsed > 100 {
			return nil, fmt.Errorf("HELPDESK_STRIPE_LIST_LIMIT must be an integer between 1 and 100, got %q", v)
		}
		listLimit = parsed
	}

	assetPath := "/modules/stripe"
	if v, ok := os.LookupEnv("HELPDESK_STRIPE_ASSET_PATH"); ok && v != "" {
		assetPath = "/" + strings.Trim(v, "/")
	}

	logLevel := slog.LevelInfo
	if v, ok := os.LookupEnv("HELPDESK_STRIPE_LOG_LEVEL"); ok && v != "" {
		if err := logLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("HELPDESK_STRIPE_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	return &Config{
		ListenAddr:   listenAddr,
		DBPath:       dbPath,
		SecretKey:    secretKey,
		StripeAPIURL: strings.TrimSuffix(os.Getenv("HELPDESK_STRIPE_API_URL"), "/"),
		HTTPTimeout:  httpTimeout,
		ListLimit:    listLimit,
		AssetPath:    assetPath,
		LogLevel:     logLevel,
	}, nil
}

// parseAppKey decodes a 32-byte key given either as 64 hex characters or,
// following the Laravel APP_KEY convention, as "base64:<std-encoded bytes>".
func parseAppKey(v string) ([]byte, error) {
	var (
		key []byte
		err error
	)
	if encoded, ok := strings.CutPrefix(v, "base64:"); ok {
		key, err = base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid base64: %w", err)
		}
	} else {
		key, err = hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid hex: %w", err)
		}
	}

	if len(key) != 32 {
		return nil, fmt.Errorf("key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
