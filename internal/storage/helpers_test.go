package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"socialgate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(i int, outcome string) *models.CallRecord {
	return &models.CallRecord{
		ID:             fmt.Sprintf("00000000-0000-0000-0000-%012d", i),
		RequestID:      fmt.Sprintf("req-%d", i),
		Action:         "get_user_tweets",
		Params:         map[string]string{"user": fmt.Sprintf("%d", i)},
		UpstreamPath:   "/user-tweets",
		UpstreamStatus: 200,
		Status:         200,
		Outcome:        outcome,
		PacingWait:     time.Duration(i) * time.Millisecond,
		Duration:       150 * time.Millisecond,
		DispatchedAt:   time.Date(2024, 1, 1, 0, 0, i, 0, time.UTC),
	}
}

// exerciseStorage runs the behaviour every backend shares. The backend must
// be empty and configured with MaxRecords of 3.
func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	calls, err := s.RecentCalls(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, calls)

	assert.ErrorIs(t, s.RecordCall(ctx, nil), ErrNilRecord)

	for i := 1; i <= 4; i++ {
		outcome := models.OutcomeOK
		if i%2 == 0 {
			outcome = models.OutcomeRateLimited
		}
		require.NoError(t, s.RecordCall(ctx, newRecord(i, outcome)))
	}

	calls, err = s.RecentCalls(ctx, 0)
	require.NoError(t, err)
	require.Len(t, calls, 3, "oldest record should be evicted")
	assert.Equal(t, "req-4", calls[0].RequestID)
	assert.Equal(t, "req-3", calls[1].RequestID)
	assert.Equal(t, "req-2", calls[2].RequestID)

	newest := calls[0]
	want := newRecord(4, models.OutcomeRateLimited)
	assert.Equal(t, want.ID, newest.ID)
	assert.Equal(t, want.Params, newest.Params)
	assert.Equal(t, want.PacingWait, newest.PacingWait)
	assert.Equal(t, want.Duration, newest.Duration)
	assert.True(t, want.DispatchedAt.Equal(newest.DispatchedAt))

	calls, err = s.RecentCalls(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, calls, 2)

	counts, err := s.OutcomeCounts(ctx)
	require.NoError(t, err)
	assert.Positive(t, counts[models.OutcomeOK])
	assert.Positive(t, counts[models.OutcomeRateLimited])
}
