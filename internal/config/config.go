package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type PNCPConfig struct {
	BaseURL string
}

type TransparenciaConfig struct {
	BaseURL string
	APIKey  string
}

type UpstreamConfig struct {
	Timeout   time.Duration
	RateRPS   float64
	RateBurst int
	UserAgent string
}

type Config struct {
	Environment   string
	LogLevel      string
	HTTP          HTTPConfig
	PNCP          PNCPConfig
	Transparencia TransparenciaConfig
	Upstream      UpstreamConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8000)
	v.SetDefault("HTTP_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("PNCP_BASE_URL", "https://pncp.gov.br/api/pncp/v1")
	v.SetDefault("TRANSPARENCIA_BASE_URL", "https://api.portaldatransparencia.gov.br/api-de-dados")
	v.SetDefault("UPSTREAM_TIMEOUT", "30s")
	v.SetDefault("UPSTREAM_RATE_RPS", 5)
	v.SetDefault("UPSTREAM_RATE_BURST", 5)
	v.SetDefault("UPSTREAM_USER_AGENT", "API-Licitacoes/1.0")

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		HTTP: HTTPConfig{
			Host:            v.GetString("HTTP_HOST"),
			Port:            v.GetInt("HTTP_PORT"),
			ShutdownTimeout: v.GetDuration("HTTP_SHUTDOWN_TIMEOUT"),
			AllowedOrigins:  parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		PNCP: PNCPConfig{
			BaseURL: strings.TrimRight(v.GetString("PNCP_BASE_URL"), "/"),
		},
		Transparencia: TransparenciaConfig{
			BaseURL: strings.TrimRight(v.GetString("TRANSPARENCIA_BASE_URL"), "/"),
			APIKey:  v.GetString("TRANSPARENCIA_API_KEY"),
		},
		Upstream: UpstreamConfig{
			Timeout:   v.GetDuration("UPSTREAM_TIMEOUT"),
			RateRPS:   v.GetFloat64("UPSTREAM_RATE_RPS"),
			RateBurst: v.GetInt("UPSTREAM_RATE_BURST"),
			UserAgent: v.GetString("UPSTREAM_USER_AGENT"),
		},
	}

	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = []string{"*"}
	}
	if cfg.Upstream.RateBurst <= 0 {
		cfg.Upstream.RateBurst = 1
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

func validate(cfg *Config) error {
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if cfg.Upstream.Timeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if cfg.Upstream.RateRPS <= 0 {
		return fmt.Errorf("UPSTREAM_RATE_RPS must be positive")
	}
	if err := validateURL(cfg.PNCP.BaseURL); err != nil {
		return fmt.Errorf("PNCP_BASE_URL: %w", err)
	}
	if err := validateURL(cfg.Transparencia.BaseURL); err != nil {
		return fmt.Errorf("TRANSPARENCIA_BASE_URL: %w", err)
	}
	return nil
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
