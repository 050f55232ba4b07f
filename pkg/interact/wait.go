// pkg/interact/wait.go
package interact

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/acheron9x/cartpilot/pkg/browser"
)

// resolve waits for a locator without taking a snapshot. Action retries use
// it so a failing action produces exactly one artifact, at exhaustion.
func (in *Interactor) resolve(ctx context.Context, locator string, timeout time.Duration) (browser.Handle, error) {
	if timeout <= 0 {
		timeout = in.opts.Timeout
	}
	return in.driver.WaitForSelector(ctx, locator, timeout)
}

// WaitForElement blocks until the locator resolves to at least one element.
// Timeout is a hard failure: a snapshot is captured and an
// ElementNotFoundError raised. Pass timeout <= 0 for the configured default.
func (in *Interactor) WaitForElement(ctx context.Context, locator string, timeout time.Duration) (browser.Handle, error) {
	if timeout <= 0 {
		timeout = in.opts.Timeout
	}
	in.logger.Debug("Waiting for element.", zap.String("locator", locator))
	h, err := in.driver.WaitForSelector(ctx, locator, timeout)
	if err != nil {
		in.logger.Error("Element not found.", zap.String("locator", locator), zap.Error(err))
		in.capture(ctx, "element_not_found_"+locator)
		return nil, &ElementNotFoundError{Locator: locator, Timeout: timeout, Err: err}
	}
	return h, nil
}

// Navigate loads a URL and waits for the requested load state. The load
// wait is advisory: a page can be usable even if the network-idle signal
// never fires, so its expiry logs a warning and captures a snapshot but the
// call returns normally. Non-timeout failures are returned.
func (in *Interactor) Navigate(ctx context.Context, url string, until browser.LoadState, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = in.opts.Timeout
	}
	in.logger.Info("Navigating.", zap.String("url", url))
	err := in.driver.Navigate(ctx, url, until, timeout)
	if err == nil {
		return nil
	}
	if isTimeout(err) {
		in.logger.Warn("Timeout during navigation; page may be partially loaded.",
			zap.String("url", url), zap.Error(err))
		in.capture(ctx, "navigation_timeout")
		return nil
	}
	return err
}

// WaitForNavigation waits for the page to settle at the given load state.
// Timeout is advisory: warn + snapshot, no error.
func (in *Interactor) WaitForNavigation(ctx context.Context, until browser.LoadState, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = in.opts.Timeout
	}
	in.logger.Debug("Waiting for navigation to settle.", zap.String("until", string(until)))
	err := in.driver.WaitForLoadState(ctx, until, timeout)
	if err == nil {
		return nil
	}
	if isTimeout(err) {
		in.logger.Warn("Timeout waiting for navigation.",
			zap.String("until", string(until)), zap.Error(err))
		in.capture(ctx, "navigation_wait_timeout")
		return nil
	}
	return err
}

// WaitForURL waits until the page address contains the given fragment.
// Timeout is advisory: warn (including the current address) + snapshot, no
// error.
func (in *Interactor) WaitForURL(ctx context.Context, pattern string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = in.opts.Timeout
	}
	in.logger.Debug("Waiting for URL.", zap.String("pattern", pattern))
	err := in.driver.WaitForURL(ctx, pattern, timeout)
	if err == nil {
		return nil
	}
	if isTimeout(err) {
		current, curErr := in.driver.CurrentURL(ctx)
		if curErr != nil {
			current = "<unavailable>"
		}
		in.logger.Warn("Timeout waiting for URL.",
			zap.String("pattern", pattern), zap.String("current_url", current))
		in.capture(ctx, "url_wait_timeout")
		return nil
	}
	return err
}

// IsVisible reports whether the locator is visible within the short-wait
// bound. It never raises on timeout.
func (in *Interactor) IsVisible(ctx context.Context, locator string) bool {
	visible, err := in.driver.IsVisible(ctx, locator, in.opts.ShortWait)
	if err != nil {
		in.logger.Debug("Visibility check failed.", zap.String("locator", locator), zap.Error(err))
		return false
	}
	return visible
}
