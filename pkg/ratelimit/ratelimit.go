// Package ratelimit paces outbound vendor calls. Each vendor gets an
// independent minimum interval between call starts; waiting on one
// vendor never delays another.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const fallbackInterval = 100 * time.Millisecond

// DefaultIntervals returns the per-vendor pacing floors tuned against
// each vendor's published request-per-minute limits.
func DefaultIntervals() map[string]time.Duration {
	return map[string]time.Duration{
		"openai":    100 * time.Millisecond,
		"gemini":    500 * time.Millisecond,
		"anthropic": 200 * time.Millisecond,
		"grok":      100 * time.Millisecond,
	}
}

// Pacer enforces a minimum wall-clock interval between consecutive call
// starts to the same vendor. Safe for concurrent use.
type Pacer struct {
	mu        sync.Mutex
	lastCall  map[string]time.Time
	intervals map[string]time.Duration
}

func NewPacer(intervals map[string]time.Duration) *Pacer {
	if intervals == nil {
		intervals = DefaultIntervals()
	}
	return &Pacer{
		lastCall:  make(map[string]time.Time),
		intervals: intervals,
	}
}

// SetInterval overrides the pacing floor for one vendor.
func (p *Pacer) SetInterval(vendor string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.intervals[vendor] = d
}

// Wait blocks until at least the vendor's minimum interval has elapsed
// since the previous Wait for that vendor returned, then stamps the
// vendor's clock. Returns early with ctx.Err() on cancellation, in
// which case the clock is not stamped.
func (p *Pacer) Wait(ctx context.Context, vendor string) error {
	p.mu.Lock()
	interval, ok := p.intervals[vendor]
	if !ok {
		interval = fallbackInterval
	}

	var wait time.Duration
	if last, ok := p.lastCall[vendor]; ok {
		if elapsed := time.Since(last); elapsed < interval {
			wait = interval - elapsed
		}
	}
	p.mu.Unlock()

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	p.mu.Lock()
	p.lastCall[vendor] = time.Now()
	p.mu.Unlock()
	return nil
}

// Reset clears the pacing clock for vendor, or for every vendor when
// vendor is empty. The next Wait after a Reset does not block.
func (p *Pacer) Reset(vendor string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if vendor == "" {
		p.lastCall = make(map[string]time.Time)
		return
	}
	delete(p.lastCall, vendor)
}
