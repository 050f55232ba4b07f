// pkg/interact/policy.go
package interact

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RetryPolicy bounds a retrying operation: how many attempts it may make
// and the jittered backoff window between them.
type RetryPolicy struct {
	MaxAttempts int
	BackoffMin  time.Duration
	BackoffMax  time.Duration
}

// Validate checks the policy invariants.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.BackoffMin < 0 {
		return fmt.Errorf("backoff min must be non-negative, got %s", p.BackoffMin)
	}
	if p.BackoffMin > p.BackoffMax {
		return fmt.Errorf("backoff min %s exceeds backoff max %s", p.BackoffMin, p.BackoffMax)
	}
	return nil
}

// normalized clamps a policy to usable values so a zero or malformed policy
// degrades to a single attempt instead of misbehaving.
func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BackoffMin < 0 {
		p.BackoffMin = 0
	}
	if p.BackoffMax < p.BackoffMin {
		p.BackoffMax = p.BackoffMin
	}
	return p
}

// backoff draws a uniformly random delay in [BackoffMin, BackoffMax].
func (p RetryPolicy) backoff() time.Duration {
	if p.BackoffMax <= p.BackoffMin {
		return p.BackoffMin
	}
	spread := int64(p.BackoffMax - p.BackoffMin)
	return p.BackoffMin + time.Duration(rand.Int63n(spread+1))
}

// sleep blocks for one jittered backoff period, aborting early if the
// context is cancelled.
func (p RetryPolicy) sleep(ctx context.Context) error {
	d := p.backoff()
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
