// Package config loads service configuration from an optional YAML file,
// .env files and environment variables (environment always wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"dashboard-aggregates-service/internal/aggregates/core/privacy"
)

// Default configuration values.
const (
	defaultServiceName     = "dashboard-aggregates"
	defaultServicePort     = 8080
	defaultVersion         = "0.1.0"
	defaultMaxOpenConns    = 20
	defaultMaxIdleConns    = 10
	defaultConnMaxLifetime = 30 * time.Minute
	defaultEpsilon         = 1.0
	defaultSensitivity     = 1.0
	defaultRefresh         = 5 * time.Minute
	defaultComputeTimeout  = 10 * time.Second
	defaultMaxOffset       = 30
	defaultTopN            = 10
	defaultBufferSize      = 1000
	defaultFlushInterval   = time.Second
	defaultFlushThreshold  = 500
	defaultKeyPrefix       = "aggregates:"
	defaultLocationSource  = "mock"
	defaultMockSeed        = 42
	defaultLoggingLevel    = "info"
	defaultLoggingFormat   = "json"

	// MaxOffsetLimit is the widest day-offset axis a cohort matrix may have.
	MaxOffsetLimit = 30
)

// Location sources.
const (
	LocationSourceMock   = "mock"
	LocationSourceEvents = "events"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the application configuration.
type Config struct {
	Service     ServiceConfig     `yaml:"service"`
	Database    DatabaseConfig    `yaml:"database"`
	Privacy     PrivacyConfig     `yaml:"privacy"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Queue       QueueConfig       `yaml:"queue"`
	Cache       CacheConfig       `yaml:"cache"`
	Locations   LocationsConfig   `yaml:"locations"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"PORT"      yaml:"port"`
	Debug   bool   `env:"APP_DEBUG" yaml:"debug"`
}

type DatabaseConfig struct {
	DSN             string        `env:"POSTGRES_DSN" yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// PrivacyConfig is the process-wide noise budget. Read-only after startup.
type PrivacyConfig struct {
	Epsilon     float64 `env:"DP_EPSILON"     yaml:"epsilon"`
	Sensitivity float64 `env:"DP_SENSITIVITY" yaml:"sensitivity"`
}

type AggregationConfig struct {
	RefreshInterval time.Duration `env:"AGGREGATES_REFRESH_INTERVAL" yaml:"refresh_interval"`
	ComputeTimeout  time.Duration `env:"AGGREGATES_COMPUTE_TIMEOUT"  yaml:"compute_timeout"`
	MaxOffset       int           `yaml:"max_offset"`
	DefaultTopN     int           `yaml:"default_top_n"`
}

type QueueConfig struct {
	BufferSize     int           `yaml:"buffer_size"`
	FlushInterval  time.Duration `yaml:"flush_interval"`
	FlushThreshold int           `yaml:"flush_threshold"`
}

// CacheConfig configures the optional shared snapshot store. An empty
// address keeps snapshots in process memory only.
type CacheConfig struct {
	RedisAddress  string `env:"REDIS_ADDRESS"  yaml:"redis_address"`
	RedisPassword string `env:"REDIS_PASSWORD" yaml:"redis_password"`
	RedisDB       int    `env:"REDIS_DB"       yaml:"redis_db"`
	KeyPrefix     string `yaml:"key_prefix"`
}

type LocationsConfig struct {
	Source   string `env:"LOCATIONS_SOURCE" yaml:"source"`
	MockSeed uint64 `yaml:"mock_seed"`
}

type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// GetConfigPath returns CONFIG_PATH or the default path.
func GetConfigPath(defaultPath string) string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return defaultPath
}

// Load starts from defaults, then applies the YAML file at path (a missing
// file is not an error), .env files and finally environment overrides.
// Values set explicitly, zeros included, are kept for Validate to judge.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return &cfg, nil
}

func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Service: ServiceConfig{
			Name:    defaultServiceName,
			Version: defaultVersion,
			Port:    defaultServicePort,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    defaultMaxOpenConns,
			MaxIdleConns:    defaultMaxIdleConns,
			ConnMaxLifetime: defaultConnMaxLifetime,
		},
		Privacy: PrivacyConfig{
			Epsilon:     defaultEpsilon,
			Sensitivity: defaultSensitivity,
		},
		Aggregation: AggregationConfig{
			RefreshInterval: defaultRefresh,
			ComputeTimeout:  defaultComputeTimeout,
			MaxOffset:       defaultMaxOffset,
			DefaultTopN:     defaultTopN,
		},
		Queue: QueueConfig{
			BufferSize:     defaultBufferSize,
			FlushInterval:  defaultFlushInterval,
			FlushThreshold: defaultFlushThreshold,
		},
		Cache: CacheConfig{
			KeyPrefix: defaultKeyPrefix,
		},
		Locations: LocationsConfig{
			Source:   defaultLocationSource,
			MockSeed: defaultMockSeed,
		},
		Logging: LoggingConfig{
			Level:  defaultLoggingLevel,
			Format: defaultLoggingFormat,
		},
	}
}

// Validate checks the loaded configuration. A bad noise budget is reported
// as domain.ErrNoiseConfiguration: the service must not run without protection.
func (c *Config) Validate() error {
	budget := privacy.Budget{Epsilon: c.Privacy.Epsilon, Sensitivity: c.Privacy.Sensitivity}
	if err := budget.Validate(); err != nil {
		return err
	}
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("%w: service.port %d out of range", ErrInvalidConfig, c.Service.Port)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("%w: database.dsn (POSTGRES_DSN) is required", ErrInvalidConfig)
	}
	if c.Aggregation.MaxOffset < 0 || c.Aggregation.MaxOffset > MaxOffsetLimit {
		return fmt.Errorf("%w: aggregation.max_offset must be within [0,%d]", ErrInvalidConfig, MaxOffsetLimit)
	}
	if c.Aggregation.RefreshInterval <= 0 || c.Aggregation.ComputeTimeout <= 0 {
		return fmt.Errorf("%w: aggregation intervals must be positive", ErrInvalidConfig)
	}
	if c.Queue.BufferSize < 1 || c.Queue.FlushThreshold < 1 {
		return fmt.Errorf("%w: queue sizes must be positive", ErrInvalidConfig)
	}
	if c.Queue.FlushInterval <= 0 {
		return fmt.Errorf("%w: queue.flush_interval must be positive", ErrInvalidConfig)
	}
	switch c.Locations.Source {
	case LocationSourceMock, LocationSourceEvents:
	default:
		return fmt.Errorf("%w: locations.source %q", ErrInvalidConfig, c.Locations.Source)
	}
	return nil
}
