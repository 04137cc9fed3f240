package database

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// newBackOff waits the same interval between attempts, with no attempt
// limit, until ctx is done.
func newBackOff(ctx context.Context, interval time.Duration) backoff.BackOffContext {
	return backoff.WithContext(backoff.NewConstantBackOff(interval), ctx)
}

// Retry calls fn until it succeeds or ctx is done.
// onFailure, when non-nil, is called after each failed attempt with the wait that follows.
func Retry(ctx context.Context, interval time.Duration, fn func(ctx context.Context) error, onFailure func(attempt int, err error, wait time.Duration)) error {
	attempt := 0
	return backoff.RetryNotify(func() error {
		return fn(ctx)
	}, newBackOff(ctx, interval), func(err error, wait time.Duration) {
		attempt++
		if onFailure != nil {
			onFailure(attempt, err, wait)
		}
	})
}
