package ratelimit

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacer_ConcurrentCallersAreSpaced(t *testing.T) {
	const (
		callers  = 8
		interval = 25 * time.Millisecond
	)
	p := NewPacer(interval)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		grants []time.Time
	)

	start := time.Now()
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slot, err := p.Acquire(context.Background())
			assert.NoError(t, err)
			mu.Lock()
			grants = append(grants, slot)
			mu.Unlock()
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	require.Len(t, grants, callers)
	sort.Slice(grants, func(i, j int) bool { return grants[i].Before(grants[j]) })
	for i := 1; i < len(grants); i++ {
		assert.GreaterOrEqual(t, grants[i].Sub(grants[i-1]), interval,
			"grants %d and %d too close", i-1, i)
	}
	assert.GreaterOrEqual(t, elapsed, time.Duration(callers-1)*interval)
}

func TestPacer_NoWaitWhenIdle(t *testing.T) {
	interval := 20 * time.Millisecond
	p := NewPacer(interval)

	_, err := p.Acquire(context.Background())
	require.NoError(t, err)

	time.Sleep(interval + 10*time.Millisecond)

	start := time.Now()
	_, err = p.Acquire(context.Background())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), interval/2)
}

func TestPacer_FirstCallIsImmediate(t *testing.T) {
	p := NewPacer(time.Hour)

	start := time.Now()
	slot, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, slot, p.LastDispatch())
}

func TestPacer_SlotsUseClock(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	p := NewPacer(time.Second, WithClock(func() time.Time { return now }))

	first, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, base, first)

	// Well past the interval: granted at the current time.
	now = base.Add(5 * time.Second)
	second, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, now, second)
}

func TestPacer_CancelledWhileWaiting(t *testing.T) {
	p := NewPacer(time.Hour)

	_, err := p.Acquire(context.Background())
	require.NoError(t, err)
	claimed := p.LastDispatch()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = p.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	// The abandoned slot stays claimed.
	assert.Equal(t, claimed.Add(time.Hour), p.LastDispatch())
}

func TestPacer_AlreadyCancelledClaimsNothing(t *testing.T) {
	p := NewPacer(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, p.LastDispatch().IsZero())
}

func TestPacer_ZeroInterval(t *testing.T) {
	p := NewPacer(0)
	assert.Equal(t, time.Duration(0), p.Interval())

	start := time.Now()
	for i := 0; i < 50; i++ {
		_, err := p.Acquire(context.Background())
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestNewPacer_NegativeIntervalClamped(t *testing.T) {
	p := NewPacer(-time.Second)
	assert.Equal(t, time.Duration(0), p.Interval())
}
