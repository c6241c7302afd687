package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const prefix = "STOREFRONT"

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"file"`
	DataDir        string `envconfig:"DATA_DIR" default:"./data"`
	RedisURL       string `envconfig:"REDIS_URL"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	DeviceID       string `envconfig:"DEVICE_ID" default:"local"`

	CatalogBackend string `envconfig:"CATALOG_BACKEND" default:"memory"`

	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
	Appearance   string        `envconfig:"APPEARANCE" default:"light"`

	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"false"`
	MetricsToken   string `envconfig:"METRICS_TOKEN"`
}

// Load reads STOREFRONT_* variables and validates them.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process(prefix, &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.StorageBackend {
	case BackendMemory:
	case BackendFile:
		if c.DataDir == "" {
			errs = append(errs, errors.New("DATA_DIR is required for file storage"))
		}
	case BackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for redis storage"))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend))
	}

	switch c.CatalogBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres catalog"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CATALOG_BACKEND %q", c.CatalogBackend))
	}

	if c.WriteTimeout <= 0 {
		errs = append(errs, errors.New("WRITE_TIMEOUT must be positive"))
	}
	if c.MetricsEnabled && c.MetricsToken == "" {
		errs = append(errs, errors.New("METRICS_TOKEN is required when metrics are enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
