package storage

import (
	"fmt"

	"socialgate/internal/models"
)

// Factory provides a centralized way to create storage instances based on configuration.
type Factory struct{}

// NewFactory creates a new storage factory
func NewFactory() *Factory {
	return &Factory{}
}

// Create instantiates a call log backend based on the provided configuration.
// Supported providers:
//   - memory: ring buffer, lost on restart
//   - json: single JSON file
//   - sqlite: SQLite database (pure Go driver)
//   - postgres: PostgreSQL database
//   - redis: capped Redis list with counters
func (f *Factory) Create(config models.StorageConfig) (Storage, error) {
	storageConfig := Config{
		Type:             config.Type,
		Path:             config.Path,
		ConnectionString: config.Database.DSN,
		MaxRecords:       config.MaxRecords,
		MaxOpenConns:     config.Database.MaxOpenConns,
		MaxIdleConns:     config.Database.MaxIdleConns,
		ConnMaxLifetime:  config.Database.ConnMaxLifetime,
		Redis:            config.Redis,
	}

	switch config.Type {
	case models.StorageTypeJSON:
		return NewJSONStorage(storageConfig)
	case models.StorageTypeMemory:
		return NewMemoryStorage(storageConfig)
	case models.StorageTypePostgres:
		return NewPostgresStorage(storageConfig)
	case models.StorageTypeSQLite:
		return NewSQLiteStorage(storageConfig)
	case models.StorageTypeRedis:
		return NewRedisStorage(storageConfig)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Type)
	}
}

// GetSupportedProviders returns a list of all supported storage provider types
func (f *Factory) GetSupportedProviders() []string {
	return []string{
		models.StorageTypeJSON,
		models.StorageTypeMemory,
		models.StorageTypePostgres,
		models.StorageTypeSQLite,
		models.StorageTypeRedis,
	}
}

// ValidateConfig validates that a storage configuration is valid for its type
func (f *Factory) ValidateConfig(config models.StorageConfig) error {
	return config.Validate()
}
