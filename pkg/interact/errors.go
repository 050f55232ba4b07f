// pkg/interact/errors.go
package interact

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinels for errors.Is matching. The concrete error types below carry
// the detail; both satisfy Is against their sentinel.
var (
	// ErrElementNotFound reports that an element wait exhausted its timeout.
	ErrElementNotFound = errors.New("element not found")
	// ErrActionFailed reports that an action exhausted all retry attempts.
	ErrActionFailed = errors.New("action failed")
)

// ElementNotFoundError is raised when a locator does not resolve within its
// timeout. This is always a hard failure: every action step depends on a
// resolved handle.
type ElementNotFoundError struct {
	Locator string
	Timeout time.Duration
	Err     error
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element not found: %q after %s", e.Locator, e.Timeout)
}

func (e *ElementNotFoundError) Unwrap() error { return e.Err }

func (e *ElementNotFoundError) Is(target error) bool { return target == ErrElementNotFound }

// ActionFailedError is raised when an action exhausts its retry budget. It
// wraps the last underlying error.
type ActionFailedError struct {
	Action   string
	Locator  string
	Attempts int
	Err      error
}

func (e *ActionFailedError) Error() string {
	return fmt.Sprintf("%s on %q failed after %d attempts: %v", e.Action, e.Locator, e.Attempts, e.Err)
}

func (e *ActionFailedError) Unwrap() error { return e.Err }

func (e *ActionFailedError) Is(target error) bool { return target == ErrActionFailed }

// isTimeout distinguishes a deadline expiry from a protocol failure. The
// driver contract surfaces timeouts as errors wrapping
// context.DeadlineExceeded.
func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
