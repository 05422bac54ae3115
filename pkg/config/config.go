package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/manabihub/insights/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration (rate limiting)
	Redis RedisConfig

	// Observability configuration
	Observability ObservabilityConfig

	// Reports configuration
	Reports ReportsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds relational database configuration
type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite3" (sqlite3 is for local development)
	Driver   string
	URL      string
	MaxConns int
	MinConns int
	Timeout  time.Duration
}

// RedisConfig holds Redis configuration for the distributed rate limiter
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// ReportsConfig holds reporting-core settings
type ReportsConfig struct {
	// DefaultWindowDays is the trailing window applied when no date range is given
	DefaultWindowDays int
	// SourceTimeout bounds each physical source attempt before falling back
	SourceTimeout time.Duration
	// ExportPresetPath points to the YAML file defining export column presets
	ExportPresetPath string
	// RetentionDays is how long raw log rows are kept by the aggregator
	RetentionDays int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Database:      loadDatabaseConfig(),
		Redis:         loadRedisConfig(),
		Observability: loadObservabilityConfig(),
		Reports:       loadReportsConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("INSIGHTS_HOST", "0.0.0.0"),
		Port:            getEnv("INSIGHTS_PORT", "8080"),
		ReadTimeout:     getEnvDuration("INSIGHTS_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("INSIGHTS_WRITE_TIMEOUT", 15*time.Second),
		RequestTimeout:  getEnvDuration("INSIGHTS_REQUEST_TIMEOUT", 30*time.Second),
		IdleTimeout:     getEnvDuration("INSIGHTS_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("INSIGHTS_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("INSIGHTS_HEALTH_PORT", "9090"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:   getEnv("INSIGHTS_DB_DRIVER", "postgres"),
		URL:      getEnv("INSIGHTS_DB_URL", ""),
		MaxConns: getEnvInt("INSIGHTS_DB_MAX_CONNS", 20),
		MinConns: getEnvInt("INSIGHTS_DB_MIN_CONNS", 2),
		Timeout:  getEnvDuration("INSIGHTS_DB_TIMEOUT", 10*time.Second),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:  getEnvBool("INSIGHTS_REDIS_ENABLED", false),
		Addr:     getEnv("INSIGHTS_REDIS_ADDR", "localhost:6379"),
		Password: getEnv("INSIGHTS_REDIS_PASSWORD", ""),
		DB:       getEnvInt("INSIGHTS_REDIS_DB", 0),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           parseLogLevel(getEnv("INSIGHTS_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("INSIGHTS_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("INSIGHTS_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("INSIGHTS_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("INSIGHTS_OTEL_SERVICE_NAME", "manabi-insights"),
		OTelServiceVersion: getEnv("INSIGHTS_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("INSIGHTS_OTEL_INSECURE", true),
	}
}

func loadReportsConfig() ReportsConfig {
	return ReportsConfig{
		DefaultWindowDays: getEnvInt("INSIGHTS_REPORT_WINDOW_DAYS", 30),
		SourceTimeout:     getEnvDuration("INSIGHTS_REPORT_SOURCE_TIMEOUT", 5*time.Second),
		ExportPresetPath:  getEnv("INSIGHTS_EXPORT_PRESETS", ""),
		RetentionDays:     getEnvInt("INSIGHTS_LOG_RETENTION_DAYS", 365),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database URL is required for postgres driver")
		}
	case "sqlite3":
		if c.Database.URL == "" {
			return fmt.Errorf("database path is required for sqlite3 driver")
		}
	default:
		return fmt.Errorf("invalid database driver: %s (must be postgres or sqlite3)", c.Database.Driver)
	}

	if c.Reports.DefaultWindowDays <= 0 {
		return fmt.Errorf("report window days must be positive")
	}
	if c.Reports.RetentionDays <= 0 {
		return fmt.Errorf("log retention days must be positive")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
