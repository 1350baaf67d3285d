package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"API_BASE_URL", "HTTP_TIMEOUT", "TOKEN_STORE", "DB_HOST", "IS_PROD"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, TokenStoreFile, cfg.TokenStore)
	assert.False(t, cfg.IsProd)
	assert.Empty(t, cfg.DSN())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://pay.example.com/api")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("TOKEN_STORE", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("DB_USER", "pay")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_NAME", "payments")

	cfg := LoadConfig()

	assert.Equal(t, "https://pay.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, TokenStoreRedis, cfg.TokenStore)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "pay:secret@tcp(db:3307)/payments?parseTime=true", cfg.DSN())
}

func TestLoadConfigIgnoresBadTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")

	assert.Equal(t, 30*time.Second, LoadConfig().HTTPTimeout)
}
