package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"socialgate/internal/models"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "socialgate:calls"

// RedisStorage keeps the call log in a capped Redis list and maintains
// cumulative per-outcome and per-action counters in hashes.
type RedisStorage struct {
	rdb        *redis.Client
	prefix     string
	maxRecords int
}

// NewRedisStorage connects to Redis and verifies the connection.
func NewRedisStorage(config Config) (*RedisStorage, error) {
	if config.Redis.Addr == "" {
		return nil, fmt.Errorf("address is required for Redis storage")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return newRedisStorage(rdb, config), nil
}

func newRedisStorage(rdb *redis.Client, config Config) *RedisStorage {
	prefix := strings.Trim(config.Redis.Prefix, ":")
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStorage{
		rdb:        rdb,
		prefix:     prefix,
		maxRecords: config.maxRecords(),
	}
}

func (rs *RedisStorage) listKey() string     { return rs.prefix + ":log" }
func (rs *RedisStorage) outcomesKey() string { return rs.prefix + ":outcomes" }
func (rs *RedisStorage) actionsKey() string  { return rs.prefix + ":actions" }

func (rs *RedisStorage) RecordCall(ctx context.Context, record *models.CallRecord) error {
	if record == nil {
		return ErrNilRecord
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal call: %w", err)
	}

	pipe := rs.rdb.TxPipeline()
	pipe.LPush(ctx, rs.listKey(), payload)
	pipe.LTrim(ctx, rs.listKey(), 0, int64(rs.maxRecords-1))
	pipe.HIncrBy(ctx, rs.outcomesKey(), record.Outcome, 1)
	pipe.HIncrBy(ctx, rs.actionsKey(), record.Action, 1)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record call: %w", err)
	}
	return nil
}

func (rs *RedisStorage) RecentCalls(ctx context.Context, limit int) ([]*models.CallRecord, error) {
	limit = clampLimit(limit, rs.maxRecords)

	entries, err := rs.rdb.LRange(ctx, rs.listKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read calls: %w", err)
	}

	calls := make([]*models.CallRecord, 0, len(entries))
	for _, entry := range entries {
		var rec models.CallRecord
		if err := json.Unmarshal([]byte(entry), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode call: %w", err)
		}
		calls = append(calls, &rec)
	}
	return calls, nil
}

// OutcomeCounts returns cumulative counts, including trimmed records.
func (rs *RedisStorage) OutcomeCounts(ctx context.Context) (map[string]int64, error) {
	return rs.counts(ctx, rs.outcomesKey())
}

// ActionCounts returns cumulative call counts per action.
func (rs *RedisStorage) ActionCounts(ctx context.Context) (map[string]int64, error) {
	return rs.counts(ctx, rs.actionsKey())
}

func (rs *RedisStorage) counts(ctx context.Context, key string) (map[string]int64, error) {
	raw, err := rs.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read counters: %w", err)
	}
	return parseCounters(raw)
}

func parseCounters(raw map[string]string) (map[string]int64, error) {
	counts := make(map[string]int64, len(raw))
	for field, value := range raw {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid counter %q: %w", field, err)
		}
		counts[field] = n
	}
	return counts, nil
}

func (rs *RedisStorage) Ping(ctx context.Context) error {
	return rs.rdb.Ping(ctx).Err()
}

func (rs *RedisStorage) Close() error {
	return rs.rdb.Close()
}
