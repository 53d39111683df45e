package config

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "https://localhost:7042/api", cfg.ReservationAPIURL)
	assert.Equal(t, "https://localhost:7013/", cfg.LandingURL)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.False(t, cfg.APIInsecureTLS)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "127.0.0.1:9000")
	t.Setenv("RESERVATION_API_URL", "http://api.internal/api")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("API_INSECURE_TLS", "true")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, "http://api.internal/api", cfg.ReservationAPIURL)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.True(t, cfg.APIInsecureTLS)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestFromEnvRejects(t *testing.T) {
	for k, v := range map[string]string{
		"API_TIMEOUT": "0s",
		"SESSION_TTL": "-1m",
		"LOG_FORMAT":  "xml",
	} {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, v)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
	t.Run("unparsable duration", func(t *testing.T) {
		t.Setenv("API_TIMEOUT", "soon")
		_, err := FromEnv()
		assert.Error(t, err)
	})
}

func TestCookieKeysExplicit(t *testing.T) {
	hash := bytes.Repeat([]byte{1}, 32)
	block := bytes.Repeat([]byte{2}, 32)
	cfg := Config{
		CookieHashKey:  base64.StdEncoding.EncodeToString(hash),
		CookieBlockKey: base64.RawStdEncoding.EncodeToString(block),
	}
	h, b, err := cfg.CookieKeys()
	require.NoError(t, err)
	assert.Equal(t, hash, h)
	assert.Equal(t, block, b)
}

func TestCookieKeysFromFile(t *testing.T) {
	block := bytes.Repeat([]byte{3}, 16)
	path := filepath.Join(t.TempDir(), "block")
	require.NoError(t, os.WriteFile(path, []byte(base64.StdEncoding.EncodeToString(block)+"\n"), 0o600))

	cfg := Config{
		CookieHashKey:  base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 64)),
		CookieBlockKey: path,
	}
	_, b, err := cfg.CookieKeys()
	require.NoError(t, err)
	assert.Equal(t, block, b)
}

func TestCookieKeysValidation(t *testing.T) {
	good := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32))

	_, _, err := Config{CookieHashKey: good}.CookieKeys()
	assert.Error(t, err, "both keys are required together")

	_, _, err = Config{CookieHashKey: good, CookieBlockKey: base64.StdEncoding.EncodeToString([]byte("short"))}.CookieKeys()
	assert.Error(t, err)

	_, _, err = Config{CookieHashKey: base64.StdEncoding.EncodeToString([]byte("short")), CookieBlockKey: good}.CookieKeys()
	assert.Error(t, err)

	_, _, err = Config{}.CookieKeys()
	assert.Error(t, err)
}

func TestCookieKeysDerived(t *testing.T) {
	cfg := Config{SessionSecret: "correct horse battery staple"}
	h1, b1, err := cfg.CookieKeys()
	require.NoError(t, err)
	assert.Len(t, h1, 64)
	assert.Len(t, b1, 32)
	assert.NotEqual(t, h1[:32], b1)

	h2, b2, err := cfg.CookieKeys()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Equal(t, b1, b2)

	h3, _, err := Config{SessionSecret: "another secret"}.CookieKeys()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}
