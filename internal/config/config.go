package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Host      string `env:"HOST" env-default:"0.0.0.0"`
	Port      string `env:"PORT" env-default:"5000"`
	StaticDir string `env:"STATIC_DIR"`

	// Database settings
	DatabaseDriver string `env:"DATABASE_DRIVER" env-default:"sqlite"`
	DatabasePath   string `env:"DATABASE_PATH" env-default:"./data/court_fetcher.db"`
	DatabaseDSN    string `env:"DATABASE_DSN"`

	// Storage settings
	UploadsDir     string        `env:"UPLOADS_DIR" env-default:"./uploads"`
	DocumentMaxAge time.Duration `env:"DOCUMENT_MAX_AGE" env-default:"0s"`

	// Logging settings
	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"json"`

	// Cache settings
	CacheSize int           `env:"CACHE_SIZE" env-default:"1000"`
	CacheTTL  time.Duration `env:"CACHE_TTL" env-default:"30m"`

	// Fetcher settings
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" env-default:"30s"`

	// API settings
	HistoryDefaultLimit int      `env:"HISTORY_DEFAULT_LIMIT" env-default:"50"`
	HistoryMaxLimit     int      `env:"HISTORY_MAX_LIMIT" env-default:"500"`
	CORSAllowOrigins    []string `env:"CORS_ALLOW_ORIGINS" env-separator:"," env-default:"*"`

	// Tracing settings
	ServiceName     string `env:"SERVICE_NAME" env-default:"court-fetcher"`
	TracingEnabled  bool   `env:"OTEL_ENABLED" env-default:"false"`
	TracingExporter string `env:"OTEL_EXPORTER" env-default:"stdout"`
	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads configuration from the environment, after loading .env if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Not an error if .env doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("error reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enum values and ranges.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite":
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required for the sqlite driver")
		}
	case "postgres":
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid DATABASE_DRIVER: %q", c.DatabaseDriver)
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT: %q", c.LogFormat)
	}

	switch c.TracingExporter {
	case "stdout", "otlp":
	default:
		return fmt.Errorf("invalid OTEL_EXPORTER: %q", c.TracingExporter)
	}

	if c.UploadsDir == "" {
		return fmt.Errorf("UPLOADS_DIR must not be empty")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("invalid CACHE_SIZE: %d", c.CacheSize)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("invalid CACHE_TTL: %s", c.CacheTTL)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("invalid FETCH_TIMEOUT: %s", c.FetchTimeout)
	}
	if c.DocumentMaxAge < 0 {
		return fmt.Errorf("invalid DOCUMENT_MAX_AGE: %s", c.DocumentMaxAge)
	}
	if c.HistoryDefaultLimit <= 0 || c.HistoryMaxLimit < c.HistoryDefaultLimit {
		return fmt.Errorf("invalid history limits: default %d, max %d", c.HistoryDefaultLimit, c.HistoryMaxLimit)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// AllowAllOrigins reports whether CORS is open to any origin.
func (c *Config) AllowAllOrigins() bool {
	for _, o := range c.CORSAllowOrigins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return len(c.CORSAllowOrigins) == 0
}
