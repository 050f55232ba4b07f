// pkg/interact/actions.go
package interact

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/acheron9x/cartpilot/pkg/browser"
)

// secretIndicators mark locators whose fill values must never reach the
// logs in the clear.
var secretIndicators = []string{"password", "passwd", "pwd", "secret", "token", "cvv", "security"}

type actionConfig struct {
	force   bool
	policy  RetryPolicy
	timeout time.Duration
}

// ActionOption customizes a single action call.
type ActionOption func(*actionConfig)

// WithForce makes a click bypass visibility checks.
func WithForce() ActionOption {
	return func(c *actionConfig) { c.force = true }
}

// WithPolicy overrides the default retry policy for this call.
func WithPolicy(p RetryPolicy) ActionOption {
	return func(c *actionConfig) { c.policy = p }
}

// WithTimeout overrides the per-attempt element wait bound.
func WithTimeout(d time.Duration) ActionOption {
	return func(c *actionConfig) { c.timeout = d }
}

func (in *Interactor) actionConfig(opts []ActionOption) actionConfig {
	cfg := actionConfig{policy: in.opts.Policy, timeout: in.opts.Timeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.policy = cfg.policy.normalized()
	return cfg
}

// Click resolves the locator, scrolls the element into view and clicks it,
// retrying with jittered backoff on any failure.
func (in *Interactor) Click(ctx context.Context, locator string, opts ...ActionOption) error {
	cfg := in.actionConfig(opts)
	in.logger.Debug("Clicking element.", zap.String("locator", locator))
	return in.withRetry(ctx, "click", locator, cfg, func(ctx context.Context, h browser.Handle) error {
		if err := in.driver.ScrollIntoView(ctx, h); err != nil {
			return err
		}
		return in.driver.Click(ctx, h, cfg.force)
	})
}

// Fill resolves the locator and types value into it, retrying with jittered
// backoff. Values destined for secret-indicating fields are masked in logs.
func (in *Interactor) Fill(ctx context.Context, locator, value string, opts ...ActionOption) error {
	cfg := in.actionConfig(opts)
	in.logger.Debug("Filling field.",
		zap.String("locator", locator),
		zap.String("value", maskSecret(locator, value)))
	return in.withRetry(ctx, "fill", locator, cfg, func(ctx context.Context, h browser.Handle) error {
		return in.driver.Fill(ctx, h, value)
	})
}

// SelectOption selects one or more option values in a dropdown, retrying
// with jittered backoff.
func (in *Interactor) SelectOption(ctx context.Context, locator string, values []string, opts ...ActionOption) error {
	cfg := in.actionConfig(opts)
	in.logger.Debug("Selecting option.",
		zap.String("locator", locator), zap.Strings("values", values))
	return in.withRetry(ctx, "select", locator, cfg, func(ctx context.Context, h browser.Handle) error {
		return in.driver.SelectOptions(ctx, h, values)
	})
}

// withRetry is the shared action skeleton: resolve the locator, perform the
// primitive, and on any failure log a warning with the attempt number and
// back off before retrying. Exhaustion captures exactly one snapshot and
// raises ActionFailedError wrapping the last underlying error.
func (in *Interactor) withRetry(
	ctx context.Context,
	action, locator string,
	cfg actionConfig,
	perform func(context.Context, browser.Handle) error,
) error {
	policy := cfg.policy
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		h, err := in.resolve(ctx, locator, cfg.timeout)
		if err == nil {
			err = perform(ctx, h)
			if err == nil {
				return nil
			}
		}
		lastErr = err
		in.logger.Warn("Action attempt failed.",
			zap.String("action", action),
			zap.String("locator", locator),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", policy.MaxAttempts),
			zap.Error(err))

		if attempt < policy.MaxAttempts {
			if serr := policy.sleep(ctx); serr != nil {
				lastErr = serr
				break
			}
		}
	}

	in.capture(ctx, action+"_failed_"+locator)
	return &ActionFailedError{
		Action:   action,
		Locator:  locator,
		Attempts: policy.MaxAttempts,
		Err:      lastErr,
	}
}

// maskSecret replaces the value with a same-length mask when the locator
// textually indicates a secret field.
func maskSecret(locator, value string) string {
	lower := strings.ToLower(locator)
	for _, indicator := range secretIndicators {
		if strings.Contains(lower, indicator) {
			return strings.Repeat("*", utf8.RuneCountInString(value))
		}
	}
	return value
}
