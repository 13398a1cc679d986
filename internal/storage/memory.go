package storage

import (
	"context"
	"sync"

	"socialgate/internal/models"
)

// MemoryStorage keeps the most recent calls in a ring buffer. Records are
// lost on restart.
type MemoryStorage struct {
	mu       sync.RWMutex
	records  []*models.CallRecord
	next     int
	full     bool
	outcomes map[string]int64
	closed   bool
}

// NewMemoryStorage creates a new memory-based storage instance
func NewMemoryStorage(config Config) (*MemoryStorage, error) {
	return &MemoryStorage{
		records:  make([]*models.CallRecord, config.maxRecords()),
		outcomes: make(map[string]int64),
	}, nil
}

// RecordCall stores a copy of record, evicting the oldest when full.
func (m *MemoryStorage) RecordCall(ctx context.Context, record *models.CallRecord) error {
	if record == nil {
		return ErrNilRecord
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	m.records[m.next] = copyRecord(record)
	m.next = (m.next + 1) % len(m.records)
	if m.next == 0 {
		m.full = true
	}
	m.outcomes[record.Outcome]++

	return nil
}

// RecentCalls returns copies of the newest records.
func (m *MemoryStorage) RecentCalls(ctx context.Context, limit int) ([]*models.CallRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	size := m.next
	if m.full {
		size = len(m.records)
	}
	limit = clampLimit(limit, size)

	calls := make([]*models.CallRecord, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (m.next - 1 - i + len(m.records)) % len(m.records)
		calls = append(calls, copyRecord(m.records[idx]))
	}

	return calls, nil
}

// OutcomeCounts returns counts over every call recorded since start,
// including evicted ones.
func (m *MemoryStorage) OutcomeCounts(ctx context.Context) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64, len(m.outcomes))
	for k, v := range m.outcomes {
		counts[k] = v
	}
	return counts, nil
}

func (m *MemoryStorage) Ping(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
