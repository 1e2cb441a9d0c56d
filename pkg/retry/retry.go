// Package retry runs an operation with capped exponential backoff and
// additive jitter.
package retry

import (
	"context"
	"math/rand/v2"
	"time"
)

// Policy controls how many times an operation is re-run and how long to
// back off between attempts. MaxRetries is the number of RE-tries, so
// an operation runs MaxRetries+1 times before its error surfaces.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 2,
		BaseDelay:  time.Second,
		MaxDelay:   60 * time.Second,
	}
}

// Do runs fn until it succeeds or the policy is exhausted. The error
// from the final attempt is returned unchanged. Backoff sleeps respect
// ctx; cancellation mid-backoff returns ctx.Err().
func Do(ctx context.Context, p Policy, fn func() error) error {
	var err error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			if serr := sleepContext(ctx, backoffDelay(p, attempt-1)); serr != nil {
				return serr
			}
		}
		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}

// backoffDelay doubles the base delay per attempt, caps it at MaxDelay,
// and adds up to 10% jitter so parallel retriers fan out.
func backoffDelay(p Policy, attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			delay = p.MaxDelay
			break
		}
	}
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	jitter := time.Duration(rand.Float64() * 0.1 * float64(delay))
	return delay + jitter
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
