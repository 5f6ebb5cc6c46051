package services

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
)

const maxConflictRetries = 3

// retryConflicts runs op until it succeeds, fails with anything other than
// domain.ErrConflictRetryable, or runs out of attempts. Every operation passed
// here is idempotent, so a retry after a lost race is safe.
func retryConflicts(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 5 * time.Millisecond
	policy.MaxInterval = 100 * time.Millisecond

	b := backoff.WithContext(backoff.WithMaxRetries(policy, maxConflictRetries), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err == nil || errors.Is(err, domain.ErrConflictRetryable) {
			return err
		}
		return backoff.Permanent(err)
	}, b)
}
