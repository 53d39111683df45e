package config

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/hkdf"
)

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	// reservation API
	ReservationAPIURL string        `env:"RESERVATION_API_URL" envDefault:"https://localhost:7042/api"`
	APITimeout        time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	APIInsecureTLS    bool          `env:"API_INSECURE_TLS"`

	// where "Home" sends the guest once a booking is confirmed
	LandingURL string `env:"LANDING_URL" envDefault:"https://localhost:7013/"`

	// sessions; an empty DATABASE_URL keeps them in memory
	DatabaseURL   string        `env:"DATABASE_URL"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"5m"`

	CookieHashKey  string `env:"COOKIE_HASH_KEY"`
	CookieBlockKey string `env:"COOKIE_BLOCK_KEY"`
	SessionSecret  string `env:"SESSION_SECRET"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogFile   string `env:"LOG_FILE"`
}

func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.APITimeout <= 0 {
		return Config{}, fmt.Errorf("invalid API_TIMEOUT %s", cfg.APITimeout)
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("invalid SESSION_TTL %s", cfg.SessionTTL)
	}
	if cfg.SweepInterval <= 0 {
		return Config{}, fmt.Errorf("invalid SESSION_SWEEP_INTERVAL %s", cfg.SweepInterval)
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("invalid LOG_FORMAT %q (want text or json)", cfg.LogFormat)
	}
	return cfg, nil
}

// CookieKeys returns the securecookie hash and block keys. Explicit base64
// keys win; otherwise both are derived from SESSION_SECRET.
func (c Config) CookieKeys() (hashKey, blockKey []byte, err error) {
	if c.CookieHashKey != "" || c.CookieBlockKey != "" {
		if c.CookieHashKey == "" || c.CookieBlockKey == "" {
			return nil, nil, fmt.Errorf("COOKIE_HASH_KEY and COOKIE_BLOCK_KEY must be set together")
		}
		hashKey, err = decodeB64(c.CookieHashKey)
		if err != nil {
			return nil, nil, fmt.Errorf("COOKIE_HASH_KEY: %w", err)
		}
		blockKey, err = decodeB64(c.CookieBlockKey)
		if err != nil {
			return nil, nil, fmt.Errorf("COOKIE_BLOCK_KEY: %w", err)
		}
		if len(hashKey) < 32 {
			return nil, nil, fmt.Errorf("COOKIE_HASH_KEY must decode to at least 32 bytes (got %d)", len(hashKey))
		}
		switch len(blockKey) {
		case 16, 24, 32:
		default:
			return nil, nil, fmt.Errorf("COOKIE_BLOCK_KEY must decode to 16, 24 or 32 bytes (got %d)", len(blockKey))
		}
		return hashKey, blockKey, nil
	}

	if strings.TrimSpace(c.SessionSecret) == "" {
		return nil, nil, fmt.Errorf("COOKIE_HASH_KEY and COOKIE_BLOCK_KEY, or SESSION_SECRET, are required")
	}
	hashKey, err = derive(c.SessionSecret, "bistrobook cookie hash", 64)
	if err != nil {
		return nil, nil, err
	}
	blockKey, err = derive(c.SessionSecret, "bistrobook cookie block", 32)
	if err != nil {
		return nil, nil, err
	}
	return hashKey, blockKey, nil
}

func derive(secret, info string, n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), out); err != nil {
		return nil, fmt.Errorf("derive %s: %w", info, err)
	}
	return out, nil
}

func decodeB64(s string) ([]byte, error) {
	if b, err := os.ReadFile(s); err == nil {
		// allow pointing to file path for k8s secret mounts
		s = string(b)
	}
	s = strings.TrimSpace(s)
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
