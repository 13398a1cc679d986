package storage

import (
	"context"
	"path/filepath"
	"testing"

	"socialgate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteTestStorage(t *testing.T, maxRecords int) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "calls.db")
	s, err := NewSQLiteStorage(Config{Type: "sqlite", ConnectionString: dbPath, MaxRecords: maxRecords})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorage(t *testing.T) {
	exerciseStorage(t, newSQLiteTestStorage(t, 3))
}

func TestSQLiteStorage_CountsRetainedRecords(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteTestStorage(t, 2)

	require.NoError(t, s.RecordCall(ctx, newRecord(1, models.OutcomeTransportError)))
	require.NoError(t, s.RecordCall(ctx, newRecord(2, models.OutcomeOK)))
	require.NoError(t, s.RecordCall(ctx, newRecord(3, models.OutcomeOK)))

	counts, err := s.OutcomeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{models.OutcomeOK: 2}, counts)
}

func TestSQLiteStorage_SchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "calls.db")

	first, err := NewSQLiteStorage(Config{ConnectionString: dbPath})
	require.NoError(t, err)
	require.NoError(t, first.RecordCall(ctx, newRecord(1, models.OutcomeOK)))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStorage(Config{ConnectionString: dbPath})
	require.NoError(t, err)
	defer second.Close()

	calls, err := second.RecentCalls(ctx, 5)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]string{"user": "1"}, calls[0].Params)
}

func TestSQLiteStorage_DuplicateID(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteTestStorage(t, 10)

	require.NoError(t, s.RecordCall(ctx, newRecord(1, models.OutcomeOK)))
	assert.Error(t, s.RecordCall(ctx, newRecord(1, models.OutcomeOK)))
}

func TestSQLiteStorage_MissingConnectionString(t *testing.T) {
	_, err := NewSQLiteStorage(Config{})
	assert.Error(t, err)
}
