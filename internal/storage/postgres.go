package storage

import (
	"context"
	"fmt"
	"time"

	"socialgate/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS gateway_calls (
	seq             BIGSERIAL PRIMARY KEY,
	id              UUID NOT NULL UNIQUE,
	request_id      TEXT NOT NULL DEFAULT '',
	action          TEXT NOT NULL,
	params          JSONB NOT NULL DEFAULT '{}',
	upstream_path   TEXT NOT NULL,
	upstream_status INTEGER NOT NULL,
	status          INTEGER NOT NULL,
	outcome         TEXT NOT NULL,
	pacing_wait_ns  BIGINT NOT NULL,
	duration_ns     BIGINT NOT NULL,
	dispatched_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_gateway_calls_outcome ON gateway_calls (outcome);
`

// PostgresStorage implements the Storage interface using PostgreSQL.
type PostgresStorage struct {
	pool       *pgxpool.Pool
	maxRecords int
}

// NewPostgresStorage creates a new PostgreSQL storage instance and ensures
// the schema exists.
func NewPostgresStorage(config Config) (*PostgresStorage, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required for PostgreSQL storage")
	}

	poolConfig, err := pgxpool.ParseConfig(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if config.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = config.ConnMaxLifetime
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &PostgresStorage{
		pool:       pool,
		maxRecords: config.maxRecords(),
	}, nil
}

func (ps *PostgresStorage) RecordCall(ctx context.Context, record *models.CallRecord) error {
	if record == nil {
		return ErrNilRecord
	}

	params, err := marshalParams(record.Params)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, ps.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO gateway_calls (id, request_id, action, params, upstream_path, upstream_status,
				status, outcome, pacing_wait_ns, duration_ns, dispatched_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			record.ID, record.RequestID, record.Action, params, record.UpstreamPath,
			record.UpstreamStatus, record.Status, record.Outcome,
			int64(record.PacingWait), int64(record.Duration), record.DispatchedAt)
		if err != nil {
			return fmt.Errorf("failed to insert call: %w", err)
		}

		_, err = tx.Exec(ctx, `
			DELETE FROM gateway_calls WHERE seq <= (
				SELECT seq FROM gateway_calls ORDER BY seq DESC OFFSET $1 LIMIT 1
			)`, ps.maxRecords)
		if err != nil {
			return fmt.Errorf("failed to prune calls: %w", err)
		}
		return nil
	})
}

func (ps *PostgresStorage) RecentCalls(ctx context.Context, limit int) ([]*models.CallRecord, error) {
	limit = clampLimit(limit, ps.maxRecords)

	rows, err := ps.pool.Query(ctx, `
		SELECT id::text, request_id, action, params, upstream_path, upstream_status,
			status, outcome, pacing_wait_ns, duration_ns, dispatched_at
		FROM gateway_calls ORDER BY seq DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query calls: %w", err)
	}
	defer rows.Close()

	calls := make([]*models.CallRecord, 0, limit)
	for rows.Next() {
		var (
			rec        models.CallRecord
			params     []byte
			pacingWait int64
			duration   int64
		)
		if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.Action, &params, &rec.UpstreamPath,
			&rec.UpstreamStatus, &rec.Status, &rec.Outcome, &pacingWait, &duration, &rec.DispatchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan call: %w", err)
		}

		rec.Params, err = unmarshalParams(params)
		if err != nil {
			return nil, err
		}
		rec.PacingWait = time.Duration(pacingWait)
		rec.Duration = time.Duration(duration)
		rec.DispatchedAt = rec.DispatchedAt.UTC()
		calls = append(calls, &rec)
	}

	return calls, rows.Err()
}

func (ps *PostgresStorage) OutcomeCounts(ctx context.Context) (map[string]int64, error) {
	rows, err := ps.pool.Query(ctx, `SELECT outcome, COUNT(*) FROM gateway_calls GROUP BY outcome`)
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

func (ps *PostgresStorage) Ping(ctx context.Context) error {
	return ps.pool.Ping(ctx)
}

// Close closes the connection pool.
func (ps *PostgresStorage) Close() error {
	ps.pool.Close()
	return nil
}
