// Package ratelimit paces outbound upstream calls so that no two leave the
// process closer together than a fixed minimum interval.
package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer grants dispatch slots spaced at least Interval apart, across all
// goroutines of the process. It is safe for concurrent use.
//
// The mutex is held only while a slot is claimed; callers sleep outside it.
// Granted slots are not handed out in arrival order.
type Pacer struct {
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu   sync.Mutex
	last time.Time

	waitLog rate.Sometimes
}

// Option configures a Pacer.
type Option func(*Pacer)

// WithLogger sets the logger used for pacing waits.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pacer) {
		p.logger = logger
	}
}

// WithClock replaces time.Now. Only slot computation uses it; waiting always
// uses real timers.
func WithClock(now func() time.Time) Option {
	return func(p *Pacer) {
		p.now = now
	}
}

// NewPacer creates a pacer with the given minimum spacing. A zero interval
// grants every slot immediately.
func NewPacer(interval time.Duration, opts ...Option) *Pacer {
	if interval < 0 {
		interval = 0
	}
	p := &Pacer{
		interval: interval,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	// At most one wait log line per interval, however many callers queue.
	p.waitLog = rate.Sometimes{First: 1, Interval: max(interval, time.Second)}
	return p
}

// Interval returns the minimum spacing between granted slots.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// LastDispatch returns the most recently claimed slot, or the zero time if
// no slot has been claimed yet.
func (p *Pacer) LastDispatch() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Acquire blocks until the caller may dispatch one upstream call and returns
// the granted slot.
//
// If ctx is cancelled while waiting, Acquire returns ctx.Err(). The slot it
// had claimed stays consumed, so later callers still honor the spacing.
func (p *Pacer) Acquire(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	p.mu.Lock()
	now := p.now()
	slot := now
	if !p.last.IsZero() {
		if next := p.last.Add(p.interval); next.After(now) {
			slot = next
		}
	}
	p.last = slot
	p.mu.Unlock()

	wait := slot.Sub(now)
	if wait <= 0 {
		return slot, nil
	}

	p.waitLog.Do(func() {
		p.logger.Info("Pacing outbound call",
			"wait", wait.String(),
			"interval", p.interval.String())
	})

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		return slot, nil
	case <-ctx.Done():
		p.logger.Debug("Pacing wait cancelled", "error", ctx.Err())
		return time.Time{}, ctx.Err()
	}
}
