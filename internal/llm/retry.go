package llm

import (
	"context"

	"github.com/cenkalti/backoff/v4"
)

// retry runs op with exponential backoff until it succeeds, returns a
// backoff.Permanent error, the policy's elapsed time runs out or ctx is done.
func retry(ctx context.Context, policy RetryPolicy, op backoff.Operation) error {
	expo := backoff.NewExponentialBackOff()
	expo.MaxElapsedTime = policy.MaxElapsedTime
	if policy.InitialInterval > 0 {
		expo.InitialInterval = policy.InitialInterval
	}
	if policy.MaxInterval > 0 {
		expo.MaxInterval = policy.MaxInterval
	}
	if policy.Multiplier > 0 {
		expo.Multiplier = policy.Multiplier
	}
	return backoff.Retry(op, backoff.WithContext(expo, ctx))
}
