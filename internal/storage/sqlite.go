package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"socialgate/internal/models"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS calls (
	seq             INTEGER PRIMARY KEY AUTOINCREMENT,
	id              TEXT NOT NULL UNIQUE,
	request_id      TEXT NOT NULL DEFAULT '',
	action          TEXT NOT NULL,
	params          TEXT NOT NULL DEFAULT '{}',
	upstream_path   TEXT NOT NULL,
	upstream_status INTEGER NOT NULL,
	status          INTEGER NOT NULL,
	outcome         TEXT NOT NULL,
	pacing_wait_ns  INTEGER NOT NULL,
	duration_ns     INTEGER NOT NULL,
	dispatched_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_calls_outcome ON calls (outcome);
`

// SQLiteStorage stores the call log in a SQLite database through the pure Go
// modernc driver.
type SQLiteStorage struct {
	db         *sql.DB
	maxRecords int
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(config Config) (*SQLiteStorage, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required for SQLite storage")
	}

	db, err := sql.Open("sqlite", config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStorage{
		db:         db,
		maxRecords: config.maxRecords(),
	}, nil
}

func (ss *SQLiteStorage) RecordCall(ctx context.Context, record *models.CallRecord) error {
	if record == nil {
		return ErrNilRecord
	}

	params, err := marshalParams(record.Params)
	if err != nil {
		return err
	}

	tx, err := ss.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO calls (id, request_id, action, params, upstream_path, upstream_status,
			status, outcome, pacing_wait_ns, duration_ns, dispatched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.RequestID, record.Action, string(params), record.UpstreamPath,
		record.UpstreamStatus, record.Status, record.Outcome,
		int64(record.PacingWait), int64(record.Duration), record.DispatchedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert call: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM calls WHERE seq <= (
			SELECT seq FROM calls ORDER BY seq DESC LIMIT 1 OFFSET ?
		)`, ss.maxRecords)
	if err != nil {
		return fmt.Errorf("failed to prune calls: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit call: %w", err)
	}
	return nil
}

func (ss *SQLiteStorage) RecentCalls(ctx context.Context, limit int) ([]*models.CallRecord, error) {
	limit = clampLimit(limit, ss.maxRecords)

	rows, err := ss.db.QueryContext(ctx, `
		SELECT id, request_id, action, params, upstream_path, upstream_status,
			status, outcome, pacing_wait_ns, duration_ns, dispatched_at
		FROM calls ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query calls: %w", err)
	}
	defer rows.Close()

	calls := make([]*models.CallRecord, 0, limit)
	for rows.Next() {
		var (
			rec          models.CallRecord
			params       string
			pacingWait   int64
			duration     int64
			dispatchedAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.Action, &params, &rec.UpstreamPath,
			&rec.UpstreamStatus, &rec.Status, &rec.Outcome, &pacingWait, &duration, &dispatchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan call: %w", err)
		}

		rec.Params, err = unmarshalParams([]byte(params))
		if err != nil {
			return nil, err
		}
		rec.PacingWait = time.Duration(pacingWait)
		rec.Duration = time.Duration(duration)
		rec.DispatchedAt = time.Unix(0, dispatchedAt).UTC()
		calls = append(calls, &rec)
	}

	return calls, rows.Err()
}

// OutcomeCounts counts the retained records. Pruned records are not counted.
func (ss *SQLiteStorage) OutcomeCounts(ctx context.Context) (map[string]int64, error) {
	rows, err := ss.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM calls GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("failed to count calls: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			outcome string
			n       int64
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

func (ss *SQLiteStorage) Ping(ctx context.Context) error {
	return ss.db.PingContext(ctx)
}

// Close closes the storage connection
func (ss *SQLiteStorage) Close() error {
	return ss.db.Close()
}
