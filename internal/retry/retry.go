// Package retry provides the bounded retry policy shared by the CAPTCHA loop and the
// task orchestrator.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds how many times an operation runs and how long to wait between runs.
// Multiplier > 1 grows the wait exponentially from Backoff; otherwise the wait is constant.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
	Multiplier  float64
	MaxBackoff  time.Duration
}

// Once is a policy that runs the operation a single time.
var Once = Policy{MaxAttempts: 1}

// ExhaustedError is returned when every attempt failed.
type ExhaustedError struct {
	Attempts int
	Cause    error
}

func (e *ExhaustedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Cause)
	}
	return fmt.Sprintf("gave up after %d attempts", e.Attempts)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Cause
}

// Permanent marks err as not worth retrying. Run stops and returns it unwrapped.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Operation is one attempt. attempt starts at 1.
type Operation func(ctx context.Context, attempt int) error

// Notify is called after a failed attempt that will be retried.
type Notify func(attempt int, err error, wait time.Duration)

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p Policy) schedule(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff
	if p.Multiplier > 1 {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = p.Backoff
		exp.Multiplier = p.Multiplier
		exp.RandomizationFactor = 0
		exp.MaxElapsedTime = 0
		if p.MaxBackoff > 0 {
			exp.MaxInterval = p.MaxBackoff
		}
		b = exp
	} else {
		b = backoff.NewConstantBackOff(p.Backoff)
	}
	// WithMaxRetries counts retries, not attempts.
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.attempts()-1)), ctx)
}

// Run executes op until it succeeds, returns a permanent error, the context ends, or
// the policy is exhausted. It returns the number of attempts made alongside the error.
func (p Policy) Run(ctx context.Context, op Operation, notify Notify) (int, error) {
	attempt := 0
	var last error

	err := backoff.RetryNotify(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		attempt++
		last = op(ctx, attempt)
		return last
	}, p.schedule(ctx), func(err error, wait time.Duration) {
		if notify != nil {
			notify(attempt, err, wait)
		}
	})
	if err == nil {
		return attempt, nil
	}

	var perm *backoff.PermanentError
	if errors.As(last, &perm) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return attempt, err
	}
	if attempt >= p.attempts() {
		return attempt, &ExhaustedError{Attempts: attempt, Cause: last}
	}
	return attempt, err
}
