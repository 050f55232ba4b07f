// pkg/interact/interactor.go
//
// Package interact is the resilient interaction layer: the primitives every
// page workflow builds on. It classifies each blocking operation up front
// as hard (raises a typed failure) or soft (logged, absorbed locally):
//
//	WaitForElement          hard  ElementNotFoundError + snapshot
//	Click/Fill/SelectOption hard  ActionFailedError + snapshot on exhaustion
//	Navigate/WaitForNavigation/WaitForURL
//	                        soft  warn + snapshot, call returns normally
//	WaitUntil               soft  warn, boolean result, no snapshot
//	Do/Retry                      last error returned unmodified, no snapshot
//
// All operations are blocking and sequential; an Interactor drives exactly
// one browser session and must be used from one workflow at a time.
package interact

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/acheron9x/cartpilot/internal/config"
	"github.com/acheron9x/cartpilot/pkg/browser"
)

// Options is the explicit configuration for an Interactor. Workflows pass
// it to the constructor instead of consulting process-wide defaults, so
// tests can override per instance.
type Options struct {
	// Timeout bounds element and navigation waits.
	Timeout time.Duration
	// ShortWait bounds quick existence/visibility probes.
	ShortWait time.Duration
	// Policy is the default retry policy for actions.
	Policy RetryPolicy
	// PollInterval is the default gap between condition evaluations.
	PollInterval time.Duration
	// ScreenshotDir receives diagnostic snapshots.
	ScreenshotDir string
}

// OptionsFromConfig maps the interaction config section onto Options.
func OptionsFromConfig(ic config.InteractionConfig) Options {
	return Options{
		Timeout:   ic.DefaultTimeout,
		ShortWait: ic.DefaultWait,
		Policy: RetryPolicy{
			MaxAttempts: ic.RetryCount,
			BackoffMin:  ic.BackoffMin,
			BackoffMax:  ic.BackoffMax,
		},
		PollInterval:  ic.PollInterval,
		ScreenshotDir: ic.ScreenshotDir,
	}
}

// Validate checks the options invariants.
func (o Options) Validate() error {
	if o.Timeout < 0 || o.ShortWait < 0 {
		return fmt.Errorf("timeouts must be non-negative")
	}
	if err := o.Policy.Validate(); err != nil {
		return fmt.Errorf("retry policy: %w", err)
	}
	if o.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", o.PollInterval)
	}
	return nil
}

// Interactor executes resilient page operations against a single browser
// session.
type Interactor struct {
	driver browser.Driver
	opts   Options
	logger *zap.Logger
	snap   *Snapshotter
}

// New creates an Interactor for the given driver.
func New(driver browser.Driver, opts Options, logger *zap.Logger) (*Interactor, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid interactor options: %w", err)
	}
	l := logger.Named("interact")
	return &Interactor{
		driver: driver,
		opts:   opts,
		logger: l,
		snap:   NewSnapshotter(driver, opts.ScreenshotDir, l),
	}, nil
}

// Driver exposes the underlying primitive surface for callers that need an
// operation the interactor does not model.
func (in *Interactor) Driver() browser.Driver { return in.driver }

// Capture takes a labeled diagnostic snapshot on demand.
func (in *Interactor) Capture(ctx context.Context, label string) (Snapshot, error) {
	return in.snap.Capture(ctx, label)
}

// capture is the failure-path capture: it must never mask the failure being
// recorded, so errors are logged and dropped.
func (in *Interactor) capture(ctx context.Context, label string) {
	if _, err := in.snap.Capture(ctx, label); err != nil {
		in.logger.Warn("Failed to capture diagnostic snapshot.",
			zap.String("label", label), zap.Error(err))
	}
}
