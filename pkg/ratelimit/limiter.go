// Package ratelimit paces requests against the host page and its APIs.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter gates sequential requests.
type Limiter interface {
	// Allow reports whether a request may proceed right now.
	Allow() bool
	// Wait blocks until the limiter admits another request or the context
	// is cancelled.
	Wait(ctx context.Context) error
	// Reset restores the limiter to its initial state.
	Reset()
}

// TokenBucket admits up to capacity requests per refill period. Used for
// load-more calls during feed traversal.
type TokenBucket struct {
	capacity     int
	tokens       int
	refillPeriod time.Duration
	lastRefill   time.Time
	mu           sync.Mutex
}

// NewTokenBucket creates a token bucket limiter.
func NewTokenBucket(capacity int, refillPeriod time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		refillPeriod: refillPeriod,
		lastRefill:   time.Now(),
	}
}

func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

func (tb *TokenBucket) Wait(ctx context.Context) error {
	for !tb.Allow() {
		tb.mu.Lock()
		wait := tb.refillPeriod - time.Since(tb.lastRefill)
		tb.mu.Unlock()

		if wait <= 0 {
			wait = 100 * time.Millisecond
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = time.Now()
}

func (tb *TokenBucket) refill() {
	now := time.Now()
	if now.Sub(tb.lastRefill) >= tb.refillPeriod {
		tb.tokens = tb.capacity
		tb.lastRefill = now
	}
}

// FixedInterval enforces a flat delay between consecutive requests. This is
// a rate limiter, not a retry backoff: the delay never grows. Used between
// per-item removal and upscale requests.
type FixedInterval struct {
	interval time.Duration
	last     time.Time
	mu       sync.Mutex
}

// NewFixedInterval creates a flat pacer with the given spacing.
func NewFixedInterval(interval time.Duration) *FixedInterval {
	return &FixedInterval{interval: interval}
}

func (f *FixedInterval) Allow() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	if f.last.IsZero() || now.Sub(f.last) >= f.interval {
		f.last = now
		return true
	}
	return false
}

func (f *FixedInterval) Wait(ctx context.Context) error {
	f.mu.Lock()
	var wait time.Duration
	now := time.Now()
	if !f.last.IsZero() {
		if elapsed := now.Sub(f.last); elapsed < f.interval {
			wait = f.interval - elapsed
		}
	}
	f.last = now.Add(wait)
	f.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (f *FixedInterval) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = time.Time{}
}
