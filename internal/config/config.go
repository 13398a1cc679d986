package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"socialgate/internal/models"

	"gopkg.in/yaml.v3"
)

// Environment variable prefix for every override.
const envPrefix = "SOCIALGATE_"

// Legacy variables read by earlier deployments of the gateway. The prefixed
// forms take precedence when both are set.
const (
	legacyAPIKeyEnv = "RAPIDAPI_KEY"
	legacyPortEnv   = "PORT"
)

// Load loads configuration from file and environment variables
func Load(configPath string) (*models.Config, error) {
	// Start with default configuration
	config := models.NewDefaultConfig()

	// Load from file if provided and exists
	if configPath != "" {
		if err := loadFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Override with environment variables
	loadFromEnvironment(config)

	// Validate the final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// unusedConfig mirrors keys operators tend to carry over from generic
// service templates. None of them has any effect on the gateway.
type unusedConfig struct {
	Security  interface{} `yaml:"security"`
	Cache     interface{} `yaml:"cache"`
	RateLimit interface{} `yaml:"rate_limit"`
}

// warnUnusedKeys logs a warning for each ignored top-level key found in the
// YAML data. Loading continues normally.
func warnUnusedKeys(data []byte) {
	var unused unusedConfig
	if err := yaml.Unmarshal(data, &unused); err != nil {
		return
	}
	if unused.Security != nil {
		slog.Warn("Config key is not used; the gateway authenticates only to the upstream via upstream.api_key.", "config_key", "security")
	}
	if unused.Cache != nil {
		slog.Warn("Config key is not used; upstream responses are never cached.", "config_key", "cache")
	}
	if unused.RateLimit != nil {
		slog.Warn("Config key is not used; outbound spacing is configured under pacing.min_interval.", "config_key", "rate_limit")
	}
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(config *models.Config, filePath string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", filePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	warnUnusedKeys(data)
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return nil
}

// loadFromEnvironment loads configuration from environment variables.
// Values that fail to parse are ignored and leave the current setting.
func loadFromEnvironment(config *models.Config) {
	// Legacy variables first so the prefixed forms override them.
	setInt(legacyPortEnv, &config.Server.Port)
	setString(legacyAPIKeyEnv, &config.Upstream.APIKey)

	// Server configuration
	setInt(envPrefix+"PORT", &config.Server.Port)
	setString(envPrefix+"HOST", &config.Server.Host)
	setDuration(envPrefix+"READ_TIMEOUT", &config.Server.ReadTimeout)
	setDuration(envPrefix+"WRITE_TIMEOUT", &config.Server.WriteTimeout)
	setDuration(envPrefix+"IDLE_TIMEOUT", &config.Server.IdleTimeout)
	setBool(envPrefix+"TLS_ENABLED", &config.Server.TLSEnabled)
	setString(envPrefix+"TLS_CERT_FILE", &config.Server.TLSCertFile)
	setString(envPrefix+"TLS_KEY_FILE", &config.Server.TLSKeyFile)
	setInt64(envPrefix+"MAX_BODY_BYTES", &config.Server.MaxBodyBytes)

	// Upstream configuration
	setString(envPrefix+"UPSTREAM_API_KEY", &config.Upstream.APIKey)
	setString(envPrefix+"UPSTREAM_BASE_URL", &config.Upstream.BaseURL)
	setString(envPrefix+"UPSTREAM_HOST", &config.Upstream.Host)
	setDuration(envPrefix+"UPSTREAM_TIMEOUT", &config.Upstream.Timeout)
	setInt64(envPrefix+"UPSTREAM_MAX_RESPONSE_BYTES", &config.Upstream.MaxResponseBytes)

	// Pacing configuration
	setDuration(envPrefix+"PACING_MIN_INTERVAL", &config.Pacing.MinInterval)

	// Storage configuration
	setString(envPrefix+"STORAGE_TYPE", &config.Storage.Type)
	setString(envPrefix+"STORAGE_PATH", &config.Storage.Path)
	setInt(envPrefix+"STORAGE_MAX_RECORDS", &config.Storage.MaxRecords)
	setString(envPrefix+"DATABASE_DSN", &config.Storage.Database.DSN)
	setInt(envPrefix+"DATABASE_MAX_OPEN_CONNS", &config.Storage.Database.MaxOpenConns)
	setInt(envPrefix+"DATABASE_MAX_IDLE_CONNS", &config.Storage.Database.MaxIdleConns)
	setDuration(envPrefix+"DATABASE_CONN_MAX_LIFETIME", &config.Storage.Database.ConnMaxLifetime)

	// Redis configuration
	setString(envPrefix+"REDIS_ADDR", &config.Storage.Redis.Addr)
	setString(envPrefix+"REDIS_PASSWORD", &config.Storage.Redis.Password)
	setInt(envPrefix+"REDIS_DB", &config.Storage.Redis.DB)
	setString(envPrefix+"REDIS_PREFIX", &config.Storage.Redis.Prefix)

	// Logging configuration
	setString(envPrefix+"LOG_LEVEL", &config.Logging.Level)
	setString(envPrefix+"LOG_FORMAT", &config.Logging.Format)
	setString(envPrefix+"LOG_OUTPUT", &config.Logging.Output)
	setString(envPrefix+"LOG_FILE_PATH", &config.Logging.FilePath)
	setInt(envPrefix+"LOG_MAX_SIZE", &config.Logging.MaxSize)
	setInt(envPrefix+"LOG_MAX_BACKUPS", &config.Logging.MaxBackups)
	setInt(envPrefix+"LOG_MAX_AGE", &config.Logging.MaxAge)
	setBool(envPrefix+"LOG_COMPRESS", &config.Logging.Compress)

	// Metrics configuration
	setBool(envPrefix+"METRICS_ENABLED", &config.Metrics.Enabled)
	setString(envPrefix+"METRICS_PATH", &config.Metrics.Path)
	setInt(envPrefix+"METRICS_PORT", &config.Metrics.Port)

	// Tracing configuration
	setString(envPrefix+"SERVICE_NAME", &config.Observability.ServiceName)
	setBool(envPrefix+"TRACING_ENABLED", &config.Observability.Tracing.Enabled)
	setString(envPrefix+"TRACING_EXPORTER", &config.Observability.Tracing.Exporter)
	setString(envPrefix+"TRACING_OTLP_ENDPOINT", &config.Observability.Tracing.OTLPEndpoint)
	setFloat(envPrefix+"TRACING_SAMPLE_RATE", &config.Observability.Tracing.SampleRate)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(key string, dst *int64) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = strings.ToLower(v) == "true"
	}
}

// SaveExample saves an example configuration file. The API key is never
// written; operators supply it through the environment.
func SaveExample(filePath string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	config := models.NewDefaultConfig()

	// Example persistent call log
	config.Storage.Type = models.StorageTypeSQLite
	config.Storage.Database.DSN = "./data/calls.db"

	// Example TLS configuration
	config.Server.TLSEnabled = false
	config.Server.TLSCertFile = "/path/to/cert.pem"
	config.Server.TLSKeyFile = "/path/to/key.pem"

	config.Metrics.Enabled = true

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
