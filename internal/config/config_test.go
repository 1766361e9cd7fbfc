package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "https://pncp.gov.br/api/pncp/v1", cfg.PNCP.BaseURL)
	assert.Equal(t, "https://api.portaldatransparencia.gov.br/api-de-dados", cfg.Transparencia.BaseURL)
	assert.Empty(t, cfg.Transparencia.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 5.0, cfg.Upstream.RateRPS)
	assert.Equal(t, 5, cfg.Upstream.RateBurst)
	assert.Equal(t, "API-Licitacoes/1.0", cfg.Upstream.UserAgent)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.gov.br, https://b.gov.br,")
	t.Setenv("PNCP_BASE_URL", "http://localhost:8081/api/")
	t.Setenv("TRANSPARENCIA_API_KEY", "abc")
	t.Setenv("UPSTREAM_TIMEOUT", "5s")
	t.Setenv("UPSTREAM_RATE_BURST", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, []string{"https://a.gov.br", "https://b.gov.br"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "http://localhost:8081/api", cfg.PNCP.BaseURL)
	assert.Equal(t, "abc", cfg.Transparencia.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 1, cfg.Upstream.RateBurst)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"HTTP_PORT":              "70000",
		"UPSTREAM_TIMEOUT":       "0s",
		"UPSTREAM_RATE_RPS":      "-1",
		"PNCP_BASE_URL":          "ftp://pncp.gov.br",
		"TRANSPARENCIA_BASE_URL": "not a url",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseList(t *testing.T) {
	assert.Nil(t, parseList("  "))
	assert.Equal(t, []string{"a", "b"}, parseList(" a ,, b "))
}
