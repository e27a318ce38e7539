package client

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryPolicy is the bounded exponential backoff applied to idempotent
// reads. MaxRetries == 0 disables retrying.
type RetryPolicy struct {
	MaxRetries uint64
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// NoRetry performs every call exactly once.
var NoRetry = RetryPolicy{}

func (p RetryPolicy) backoff() retry.Backoff {
	base := p.BaseDelay
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	b := retry.NewExponential(base)
	if p.MaxDelay > 0 {
		b = retry.WithCappedDuration(p.MaxDelay, b)
	}
	b = retry.WithJitterPercent(10, b)
	return retry.WithMaxRetries(p.MaxRetries, b)
}

// Do runs fn, retrying transient failures (unreachable backend, 5xx,
// 408, 429) according to the policy. The last error is returned unchanged.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.MaxRetries == 0 {
		return fn(ctx)
	}
	return retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		err := fn(ctx)
		if IsTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// IsTransient reports whether err may succeed on a later attempt.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrServer)
}
