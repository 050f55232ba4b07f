// pkg/interact/retry.go
package interact

import (
	"context"

	"go.uber.org/zap"
)

// Retry runs op with the policy's attempt and backoff semantics. It is the
// escape hatch for operations the built-in actions do not model: any error
// counts as a failed attempt, and after exhausting the budget the last
// error is returned unmodified, with no wrapping and no snapshot — the
// combinator has no notion of a page, so diagnostics stay with the caller.
func Retry[T any](ctx context.Context, logger *zap.Logger, policy RetryPolicy, op func() (T, error)) (T, error) {
	policy = policy.normalized()
	var zero T
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		v, err := op()
		if err == nil {
			return v, nil
		}
		lastErr = err
		logger.Warn("Operation attempt failed.",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", policy.MaxAttempts),
			zap.Error(err))

		if attempt < policy.MaxAttempts {
			if serr := policy.sleep(ctx); serr != nil {
				return zero, lastErr
			}
		}
	}

	logger.Error("Operation failed after all attempts.",
		zap.Int("max_attempts", policy.MaxAttempts), zap.Error(lastErr))
	return zero, lastErr
}

// Do is Retry for operations with no result value.
func Do(ctx context.Context, logger *zap.Logger, policy RetryPolicy, op func() error) error {
	_, err := Retry(ctx, logger, policy, func() (struct{}, error) {
		return struct{}{}, op()
	})
	return err
}

// Do runs op under the interactor's default retry policy.
func (in *Interactor) Do(ctx context.Context, op func() error) error {
	return Do(ctx, in.logger, in.opts.Policy, op)
}
