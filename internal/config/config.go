package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Rate limiter behaviour when the counter store is unreachable.
const (
	FailureModeOpen   = "open"
	FailureModeClosed = "closed"
	FailureModeScoped = "scoped"
)

type Config struct {
	DatabaseURL       string
	RedisURL          string
	HTTPListenAddr    string
	MetricsListenAddr string
	LogLevel          string
	ServiceName       string
	// AdminToken guards the /internal credential administration routes.
	AdminToken string

	RateLimitRPM         int
	RateLimitWindow      time.Duration
	RateLimitPerKey      bool
	RateLimitFailureMode string
	TrustProxyHeaders    bool

	// Client certificate for Redis deployments that require mutual TLS.
	RedisTLSCert       string
	RedisTLSKey        string
	RedisTLSCACert     string
	RedisTLSServerName string

	LLMBaseURL        string
	LLMAPIKey         string
	LLMModel          string
	LLMEmbeddingModel string

	MCPConfigPath string
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379/0"),
		HTTPListenAddr:       getEnv("HTTP_LISTEN_ADDR", ":8080"),
		MetricsListenAddr:    getEnv("METRICS_LISTEN_ADDR", ":9090"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		ServiceName:          getEnv("SERVICE_NAME", "agentos-gateway"),
		AdminToken:           getEnv("ADMIN_TOKEN", ""),
		RateLimitFailureMode: strings.ToLower(getEnv("RATE_LIMIT_FAILURE_MODE", FailureModeScoped)),
		RedisTLSCert:         getEnv("REDIS_TLS_CERT", ""),
		RedisTLSKey:          getEnv("REDIS_TLS_KEY", ""),
		RedisTLSCACert:       getEnv("REDIS_TLS_CA_CERT", ""),
		RedisTLSServerName:   getEnv("REDIS_TLS_SERVER_NAME", ""),
		LLMBaseURL:           getEnv("LLM_BASE_URL", ""),
		LLMAPIKey:            getEnv("LLM_API_KEY", ""),
		LLMModel:             getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMEmbeddingModel:    getEnv("LLM_EMBEDDING_MODEL", "text-embedding-3-small"),
		MCPConfigPath:        getEnv("MCP_CONFIG", ""),
	}

	var err error
	if cfg.RateLimitRPM, err = getEnvInt("RATE_LIMIT_RPM", 60); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = getEnvDuration("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerKey, err = getEnvBool("RATE_LIMIT_PER_KEY", false); err != nil {
		return nil, err
	}
	if cfg.TrustProxyHeaders, err = getEnvBool("TRUSTED_PROXY_HEADERS", true); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the settings required by the named service are present.
func (c *Config) Validate(service string) error {
	var missing []string

	switch service {
	case "gateway-api":
		if c.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
		if c.RedisURL == "" {
			missing = append(missing, "REDIS_URL")
		}
		if c.HTTPListenAddr == "" {
			missing = append(missing, "HTTP_LISTEN_ADDR")
		}
		if c.AdminToken == "" {
			missing = append(missing, "ADMIN_TOKEN")
		}
	case "admin-cli":
		if c.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if service == "gateway-api" {
		if c.RateLimitRPM <= 0 {
			return fmt.Errorf("RATE_LIMIT_RPM must be positive, got %d", c.RateLimitRPM)
		}
		if c.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.RateLimitWindow)
		}
		switch c.RateLimitFailureMode {
		case FailureModeOpen, FailureModeClosed, FailureModeScoped:
		default:
			return fmt.Errorf("RATE_LIMIT_FAILURE_MODE must be one of open, closed, scoped; got %q", c.RateLimitFailureMode)
		}
	}

	if (c.RedisTLSCert == "") != (c.RedisTLSKey == "") {
		return fmt.Errorf("REDIS_TLS_CERT and REDIS_TLS_KEY must both be set")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
