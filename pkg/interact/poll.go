// pkg/interact/poll.go
package interact

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// WaitUntil repeatedly evaluates pred until it returns true or the timeout
// elapses. A true result returns immediately; interval is the minimum gap
// between evaluations. This is the one primitive designed for non-fatal,
// caller-interpreted timeouts: expiry logs a warning and returns false, and
// no snapshot is ever taken. Context cancellation is treated as a timeout.
// Pass timeout or interval <= 0 for the configured defaults.
func (in *Interactor) WaitUntil(ctx context.Context, pred func() bool, timeout, interval time.Duration) bool {
	if timeout <= 0 {
		timeout = in.opts.Timeout
	}
	if interval <= 0 {
		interval = in.opts.PollInterval
	}

	in.logger.Debug("Waiting for condition.", zap.Duration("timeout", timeout))
	deadline := time.Now().Add(timeout)
	for {
		if pred() {
			return true
		}
		if time.Now().After(deadline) {
			in.logger.Warn("Timeout waiting for condition.", zap.Duration("timeout", timeout))
			return false
		}
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			in.logger.Warn("Context cancelled while waiting for condition.", zap.Error(ctx.Err()))
			return false
		}
	}
}
