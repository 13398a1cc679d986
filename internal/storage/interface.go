package storage

import (
	"context"
	"time"

	"socialgate/internal/models"
)

// DefaultMaxRecords bounds the call log when no limit is configured.
const DefaultMaxRecords = 1000

// Storage defines the interface for the call log. Every dispatched upstream
// call produces one record. Implementations must be safe for concurrent use.
type Storage interface {
	// RecordCall appends a record to the log
	RecordCall(ctx context.Context, record *models.CallRecord) error

	// RecentCalls returns up to limit records, newest first
	RecentCalls(ctx context.Context, limit int) ([]*models.CallRecord, error)

	// OutcomeCounts returns the number of recorded calls per outcome
	OutcomeCounts(ctx context.Context) (map[string]int64, error)

	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error

	// Close releases the backend's resources
	Close() error
}

// Config holds configuration for storage backends
type Config struct {
	// Type specifies the storage backend type
	Type string `json:"type" yaml:"type"`

	// Path is used for file-based storage backends
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// ConnectionString is used for database backends
	ConnectionString string `json:"connection_string,omitempty" yaml:"connection_string,omitempty"`

	// MaxRecords caps the retained records; zero means DefaultMaxRecords
	MaxRecords int `json:"max_records,omitempty" yaml:"max_records,omitempty"`

	MaxOpenConns    int           `json:"max_open_conns,omitempty" yaml:"max_open_conns,omitempty"`
	MaxIdleConns    int           `json:"max_idle_conns,omitempty" yaml:"max_idle_conns,omitempty"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime,omitempty" yaml:"conn_max_lifetime,omitempty"`

	// Redis is used by the redis backend
	Redis models.RedisConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
}

func (c Config) maxRecords() int {
	if c.MaxRecords <= 0 {
		return DefaultMaxRecords
	}
	return c.MaxRecords
}

func clampLimit(limit, ceiling int) int {
	if limit <= 0 || limit > ceiling {
		return ceiling
	}
	return limit
}

func copyRecord(r *models.CallRecord) *models.CallRecord {
	c := *r
	if r.Params != nil {
		c.Params = make(map[string]string, len(r.Params))
		for k, v := range r.Params {
			c.Params[k] = v
		}
	}
	return &c
}
