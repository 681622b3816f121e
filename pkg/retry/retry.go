// Package retry is the single retry policy shared by every outbound client.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

type Policy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// MaxElapsed caps the whole retry loop. Zero keeps the library default.
	MaxElapsed time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		MaxElapsed:      time.Minute,
	}
}

// Notify is called before each wait.
type Notify func(err error, wait time.Duration)

// Do runs op until it succeeds, returns a permanent error, or the policy
// runs out. The last error is returned on exhaustion.
func Do[T any](ctx context.Context, p Policy, op func() (T, error), notify Notify) (T, error) {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}

	opts := []backoff.RetryOption{backoff.WithBackOff(b)}
	if p.MaxAttempts > 0 {
		opts = append(opts, backoff.WithMaxTries(p.MaxAttempts))
	}
	if p.MaxElapsed > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(p.MaxElapsed))
	}
	if notify != nil {
		opts = append(opts, backoff.WithNotify(func(err error, d time.Duration) { notify(err, d) }))
	}
	return backoff.Retry(ctx, op, opts...)
}

// Permanent stops the loop immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// After asks the loop to wait exactly d before the next attempt.
func After(d time.Duration) error {
	secs := int(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return backoff.RetryAfter(secs)
}

// IsRetryAfter reports whether err carries a provider-requested delay,
// i.e. the loop gave up while still being rate limited.
func IsRetryAfter(err error) bool {
	var ra *backoff.RetryAfterError
	return errors.As(err, &ra)
}
