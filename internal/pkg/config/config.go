package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8000"`
	AdminAddr  string `env:"ADMIN_ADDR" envDefault:":9091"`

	// Log group resolution happens per request, so neither is required here.
	LogGroupID        string `env:"YC_LOG_GROUP_ID"`
	DefaultLogGroupID string `env:"YC_DEFAULT_LOG_GROUP_ID"`

	IAMToken        string        `env:"YC_IAM_TOKEN"`
	SAKeyJSON       string        `env:"YC_SA_KEY_JSON"`
	MetadataURL     string        `env:"YC_METADATA_URL" envDefault:"http://169.254.169.254/computeMetadata/v1/instance/service-accounts/default/token"`
	MetadataTimeout time.Duration `env:"YC_METADATA_TIMEOUT" envDefault:"1s"`
	IAMTokenURL     string        `env:"YC_IAM_TOKEN_URL" envDefault:"https://iam.api.cloud.yandex.net/iam/v1/tokens"`

	LoggingEndpoint string        `env:"YC_LOGGING_ENDPOINT" envDefault:"reader.logging.yandexcloud.net:443"`
	BackendTimeout  time.Duration `env:"BACKEND_TIMEOUT" envDefault:"30s"` // 0 disables the deadline

	RedisURL      string        `env:"REDIS_URL"`
	TokenCacheTTL time.Duration `env:"TOKEN_CACHE_TTL" envDefault:"1h"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`

	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AllowedOrigins splits CORSAllowedOrigins into a trimmed, non-empty list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// WriteTimeout is the API server's write deadline. It leaves headroom over
// BackendTimeout and is 0 (unbounded) when the backend deadline is disabled.
func (c *Config) WriteTimeout() time.Duration {
	if c.BackendTimeout <= 0 {
		return 0
	}
	return c.BackendTimeout + 15*time.Second
}
