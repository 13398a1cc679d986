// Package models - Service configuration and operational settings.
// This file defines the configuration structures for every gateway component.
//
// Configuration Philosophy:
// - Hierarchical configuration with logical grouping (server, upstream, pacing, etc.)
// - Defaults that work out of the box against the public RapidAPI host
// - Validation that catches misconfigurations early
// - The upstream credential is optional at load time; its absence is reported
//   per request rather than preventing startup
package models

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Storage type constants for the call log backend
const (
	StorageTypeJSON     = "json"
	StorageTypeMemory   = "memory"
	StorageTypePostgres = "postgres"
	StorageTypeSQLite   = "sqlite"
	StorageTypeRedis    = "redis"
)

// Upstream defaults for the twitter241 RapidAPI plan
const (
	DefaultUpstreamHost     = "twitter241.p.rapidapi.com"
	DefaultUpstreamBaseURL  = "https://" + DefaultUpstreamHost
	DefaultMinInterval      = 1200 * time.Millisecond
	DefaultMaxResponseBytes = 10 << 20
)

// Config is the root configuration structure containing all service settings.
//
// Configuration Structure:
// - Server: inbound HTTP server settings
// - Upstream: RapidAPI host, credential and client timeouts
// - Pacing: minimum spacing between outbound calls
// - Storage: call log backend
// - Logging: structured logging and output configuration
// - Metrics: Prometheus scrape endpoint
// - Observability: tracing
type Config struct {
	Server        ServerConfig        `yaml:"server" json:"server"`
	Upstream      UpstreamConfig      `yaml:"upstream" json:"upstream"`
	Pacing        PacingConfig        `yaml:"pacing" json:"pacing"`
	Storage       StorageConfig       `yaml:"storage" json:"storage"`
	Logging       LoggingConfig       `yaml:"logging" json:"logging"`
	Metrics       MetricsConfig       `yaml:"metrics" json:"metrics"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

type ServerConfig struct {
	Port         int           `yaml:"port" json:"port"`
	Host         string        `yaml:"host" json:"host"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	TLSEnabled   bool          `yaml:"tls_enabled" json:"tls_enabled"`
	TLSCertFile  string        `yaml:"tls_cert_file" json:"tls_cert_file"`
	TLSKeyFile   string        `yaml:"tls_key_file" json:"tls_key_file"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
}

// UpstreamConfig describes the third-party provider. APIKey is read once at
// startup and never refreshed.
type UpstreamConfig struct {
	BaseURL          string        `yaml:"base_url" json:"base_url"`
	Host             string        `yaml:"host" json:"host"`
	APIKey           string        `yaml:"api_key" json:"-"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout"`
	MaxResponseBytes int64         `yaml:"max_response_bytes" json:"max_response_bytes"`
}

// HasCredential reports whether an API key is configured.
func (uc *UpstreamConfig) HasCredential() bool {
	return uc.APIKey != ""
}

type PacingConfig struct {
	MinInterval time.Duration `yaml:"min_interval" json:"min_interval"`
}

type StorageConfig struct {
	Type       string         `yaml:"type" json:"type"`
	Path       string         `yaml:"path" json:"path"`
	MaxRecords int            `yaml:"max_records" json:"max_records"`
	Database   DatabaseConfig `yaml:"database" json:"database"`
	Redis      RedisConfig    `yaml:"redis" json:"redis"`
}

type DatabaseConfig struct {
	DSN             string        `yaml:"dsn" json:"-"`
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"-"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
}

type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"`
	Output     string `yaml:"output" json:"output"`
	FilePath   string `yaml:"file_path" json:"file_path"`
	MaxSize    int    `yaml:"max_size" json:"max_size"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAge     int    `yaml:"max_age" json:"max_age"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
	Port    int    `yaml:"port" json:"port"`
}

type ObservabilityConfig struct {
	ServiceName string        `yaml:"service_name" json:"service_name"`
	Tracing     TracingConfig `yaml:"tracing" json:"tracing"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	Exporter     string  `yaml:"exporter" json:"exporter"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" json:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate" json:"sample_rate"`
}

// NewDefaultConfig creates a configuration with production-ready defaults.
//
// Default Values Rationale:
// - Port 8080: matches the port the gateway has always listened on
// - 1.2s pacing: one call per 1.2s fits the BASIC RapidAPI plan
// - Write timeout of 2 minutes: requests may queue behind the pacer
// - Memory call log: no external dependencies
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
			MaxBodyBytes: 1 << 20,
		},
		Upstream: UpstreamConfig{
			BaseURL:          DefaultUpstreamBaseURL,
			Host:             DefaultUpstreamHost,
			Timeout:          30 * time.Second,
			MaxResponseBytes: DefaultMaxResponseBytes,
		},
		Pacing: PacingConfig{
			MinInterval: DefaultMinInterval,
		},
		Storage: StorageConfig{
			Type:       StorageTypeMemory,
			Path:       "./data/calls.json",
			MaxRecords: 1000,
			Database: DatabaseConfig{
				MaxOpenConns:    10,
				MaxIdleConns:    2,
				ConnMaxLifetime: 5 * time.Minute,
			},
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "socialgate:calls",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Output:     "stdout",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Path:    "/metrics",
			Port:    9090,
		},
		Observability: ObservabilityConfig{
			ServiceName: "socialgate",
			Tracing: TracingConfig{
				Enabled:    false,
				Exporter:   "stdout",
				SampleRate: 1.0,
			},
		},
	}
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	if err := c.Upstream.Validate(); err != nil {
		return fmt.Errorf("invalid upstream config: %w", err)
	}

	if err := c.Pacing.Validate(); err != nil {
		return fmt.Errorf("invalid pacing config: %w", err)
	}

	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("invalid storage config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("invalid metrics config: %w", err)
	}

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}

func (sc *ServerConfig) Validate() error {
	if sc.Port <= 0 || sc.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	if sc.Host == "" {
		return errors.New("host cannot be empty")
	}

	if sc.ReadTimeout < 0 || sc.WriteTimeout < 0 || sc.IdleTimeout < 0 {
		return errors.New("timeouts cannot be negative")
	}

	if sc.MaxBodyBytes < 0 {
		return errors.New("max body bytes cannot be negative")
	}

	if sc.TLSEnabled {
		if sc.TLSCertFile == "" {
			return errors.New("TLS cert file is required when TLS is enabled")
		}
		if sc.TLSKeyFile == "" {
			return errors.New("TLS key file is required when TLS is enabled")
		}
	}

	return nil
}

func (uc *UpstreamConfig) Validate() error {
	if uc.BaseURL == "" {
		return errors.New("base URL cannot be empty")
	}

	u, err := url.Parse(uc.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("base URL must include a host")
	}

	if uc.Host == "" {
		return errors.New("host identifier cannot be empty")
	}

	if uc.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}

	if uc.MaxResponseBytes < 0 {
		return errors.New("max response bytes cannot be negative")
	}

	return nil
}

func (pc *PacingConfig) Validate() error {
	if pc.MinInterval < 0 {
		return errors.New("min interval cannot be negative")
	}
	return nil
}

func (stc *StorageConfig) Validate() error {
	switch stc.Type {
	case StorageTypeMemory:
	case StorageTypeJSON:
		if stc.Path == "" {
			return errors.New("path is required for JSON storage")
		}
	case StorageTypePostgres, StorageTypeSQLite:
		if stc.Database.DSN == "" {
			return errors.New("database DSN is required for database storage")
		}
	case StorageTypeRedis:
		if stc.Redis.Addr == "" {
			return errors.New("Redis address is required for redis storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %s", stc.Type)
	}

	if stc.MaxRecords < 0 {
		return errors.New("max records cannot be negative")
	}

	return nil
}

func (lc *LoggingConfig) Validate() error {
	if !oneOf(lc.Level, "debug", "info", "warn", "error") {
		return fmt.Errorf("invalid log level: %s", lc.Level)
	}

	if !oneOf(lc.Format, "json", "text") {
		return fmt.Errorf("invalid log format: %s", lc.Format)
	}

	if !oneOf(lc.Output, "stdout", "stderr", "file") {
		return fmt.Errorf("invalid log output: %s", lc.Output)
	}

	if lc.Output == "file" && lc.FilePath == "" {
		return errors.New("file path is required when output is file")
	}

	return nil
}

func (mc *MetricsConfig) Validate() error {
	if !mc.Enabled {
		return nil
	}

	if mc.Path == "" {
		return errors.New("metrics path cannot be empty")
	}

	if mc.Port <= 0 || mc.Port > 65535 {
		return errors.New("metrics port must be between 1 and 65535")
	}

	return nil
}

func (oc *ObservabilityConfig) Validate() error {
	if !oc.Tracing.Enabled {
		return nil
	}

	if oc.ServiceName == "" {
		return errors.New("service name is required when tracing is enabled")
	}

	switch oc.Tracing.Exporter {
	case "stdout":
	case "otlp":
		if oc.Tracing.OTLPEndpoint == "" {
			return errors.New("OTLP endpoint is required for the otlp exporter")
		}
	default:
		return fmt.Errorf("invalid trace exporter: %s", oc.Tracing.Exporter)
	}

	if oc.Tracing.SampleRate < 0 || oc.Tracing.SampleRate > 1 {
		return errors.New("sample rate must be between 0 and 1")
	}

	return nil
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
