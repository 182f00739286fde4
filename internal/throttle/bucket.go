// Package throttle paces browser session launches with a token bucket so a bulk run
// does not open every session against the portal in the same instant.
package throttle

import (
	"context"
	"sync"
	"time"
)

// Bucket is a token bucket. Capacity is the burst, Rate the tokens added per second.
// A nil *Bucket never blocks.
type Bucket struct {
	capacity   int
	refillRate float64
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

// NewBucket creates a full bucket. A non-positive rate returns nil, which disables
// pacing.
func NewBucket(capacity int, refillRate float64) *Bucket {
	if refillRate <= 0 {
		return nil
	}
	if capacity < 1 {
		capacity = 1
	}
	return &Bucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// refill must be called with mu held.
func (b *Bucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastRefill)
	b.tokens = min(float64(b.capacity), b.tokens+elapsed.Seconds()*b.refillRate)
	b.lastRefill = now
}

// reserve takes a token if one is available; otherwise it reports how long until
// the next one.
func (b *Bucket) reserve() (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill(time.Now())
	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true, 0
	}
	missing := 1.0 - b.tokens
	return false, time.Duration(missing / b.refillRate * float64(time.Second))
}

// Allow consumes a token if one is available.
func (b *Bucket) Allow() bool {
	if b == nil {
		return true
	}
	ok, _ := b.reserve()
	return ok
}

// Wait blocks until a token is available or ctx ends.
func (b *Bucket) Wait(ctx context.Context) error {
	if b == nil {
		return ctx.Err()
	}
	for {
		ok, wait := b.reserve()
		if ok {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Remaining returns the whole tokens currently available.
func (b *Bucket) Remaining() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill(time.Now())
	return int(b.tokens)
}
