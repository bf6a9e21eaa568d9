package resilience

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/lagoonledger/lagoon/internal/shared/errs"
)

// ErrAttemptsExhausted wraps the last attempt error when the policy gives up.
var ErrAttemptsExhausted = errors.New("retry attempts exhausted")

// Policy configures retry behavior for optimistic-concurrency conflicts.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// BaseDelay is the backoff before the second attempt; each further
	// attempt doubles it up to MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// Retryable decides whether an error is worth another attempt.
	// Nil means version conflicts only.
	Retryable func(error) bool
}

// DefaultPolicy retries version conflicts a handful of times with short
// jittered backoff.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   5 * time.Millisecond,
		MaxDelay:    250 * time.Millisecond,
	}
}

func (p Policy) retryable(err error) bool {
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return errors.Is(err, errs.ErrVersionConflict)
}

// Do runs fn until it succeeds, fails non-retryably, or the policy is
// exhausted. The context cancels waiting between attempts.
func Do(ctx context.Context, policy Policy, fn func() error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := policy.BaseDelay
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if waitErr := wait(ctx, jitter(delay)); waitErr != nil {
				return waitErr
			}
			delay *= 2
			if policy.MaxDelay > 0 && delay > policy.MaxDelay {
				delay = policy.MaxDelay
			}
		}
		if err = fn(); err == nil {
			return nil
		}
		if !policy.retryable(err) {
			return err
		}
	}
	return errors.Join(ErrAttemptsExhausted, err)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// jitter spreads concurrent retriers apart: uniform in [d/2, d).
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}
