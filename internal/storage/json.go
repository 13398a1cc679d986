package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"socialgate/internal/models"
)

// JSONStorage persists the call log to a single JSON file. The whole file is
// rewritten on every record, so it suits low call volumes, which the pacer
// guarantees.
type JSONStorage struct {
	filePath   string
	maxRecords int

	mu     sync.Mutex
	data   *JSONData
	closed bool
}

// JSONData represents the structure of data stored in JSON format. Calls are
// kept oldest first.
type JSONData struct {
	Calls       []*models.CallRecord `json:"calls"`
	Outcomes    map[string]int64     `json:"outcomes"`
	LastUpdated time.Time            `json:"last_updated"`
}

// NewJSONStorage creates a new JSON-based storage instance
func NewJSONStorage(config Config) (*JSONStorage, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("path is required for JSON storage")
	}

	storage := &JSONStorage{
		filePath:   config.Path,
		maxRecords: config.maxRecords(),
	}

	if err := storage.ensureFileExists(); err != nil {
		return nil, fmt.Errorf("failed to ensure file exists: %w", err)
	}

	if err := storage.loadData(); err != nil {
		return nil, fmt.Errorf("failed to load initial data: %w", err)
	}

	return storage, nil
}

// ensureFileExists creates the JSON file with empty data if it doesn't exist
func (j *JSONStorage) ensureFileExists() error {
	if _, err := os.Stat(j.filePath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(j.filePath), 0700); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}

		return j.saveData(&JSONData{
			Calls:    []*models.CallRecord{},
			Outcomes: map[string]int64{},
		})
	}
	return nil
}

func (j *JSONStorage) loadData() error {
	fileData, err := os.ReadFile(j.filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var data JSONData
	if err := json.Unmarshal(fileData, &data); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	if data.Outcomes == nil {
		data.Outcomes = map[string]int64{}
	}
	if overflow := len(data.Calls) - j.maxRecords; overflow > 0 {
		data.Calls = data.Calls[overflow:]
	}

	j.data = &data
	return nil
}

// saveData writes to a temporary file and renames it over the original so
// a crash never leaves a truncated log.
func (j *JSONStorage) saveData(data *JSONData) error {
	data.LastUpdated = time.Now().UTC()

	fileData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	tmp := j.filePath + ".tmp"
	if err := os.WriteFile(tmp, fileData, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, j.filePath); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}

	return nil
}

func (j *JSONStorage) RecordCall(ctx context.Context, record *models.CallRecord) error {
	if record == nil {
		return ErrNilRecord
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrClosed
	}

	j.data.Calls = append(j.data.Calls, copyRecord(record))
	if overflow := len(j.data.Calls) - j.maxRecords; overflow > 0 {
		j.data.Calls = j.data.Calls[overflow:]
	}
	j.data.Outcomes[record.Outcome]++

	return j.saveData(j.data)
}

func (j *JSONStorage) RecentCalls(ctx context.Context, limit int) ([]*models.CallRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	limit = clampLimit(limit, len(j.data.Calls))
	calls := make([]*models.CallRecord, 0, limit)
	for i := len(j.data.Calls) - 1; i >= 0 && len(calls) < limit; i-- {
		calls = append(calls, copyRecord(j.data.Calls[i]))
	}
	return calls, nil
}

func (j *JSONStorage) OutcomeCounts(ctx context.Context) (map[string]int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	counts := make(map[string]int64, len(j.data.Outcomes))
	for k, v := range j.data.Outcomes {
		counts[k] = v
	}
	return counts, nil
}

// Ping verifies the backing file is still accessible.
func (j *JSONStorage) Ping(_ context.Context) error {
	if _, err := os.Stat(j.filePath); err != nil {
		return fmt.Errorf("json storage file not accessible: %w", err)
	}
	return nil
}

func (j *JSONStorage) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.closed = true
	return nil
}
