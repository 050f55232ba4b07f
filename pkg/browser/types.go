// pkg/browser/types.go
package browser

import (
	"context"
	"time"
)

// LoadState is the "wait until" policy for navigations and load waits.
type LoadState string

const (
	// LoadStateDOMContentLoaded waits for the DOMContentLoaded event.
	LoadStateDOMContentLoaded LoadState = "domcontentloaded"
	// LoadStateLoad waits for the window load event.
	LoadStateLoad LoadState = "load"
	// LoadStateNetworkIdle waits for the load event plus a quiet period with
	// no inflight network requests. Pages with long-polling or tracker
	// traffic may never reach it; callers treat its expiry as advisory.
	LoadStateNetworkIdle LoadState = "networkidle"
)

// Handle is an opaque reference to a single resolved DOM node. The concrete
// session backs it with a CDP node; follow-up actions address the node via
// its absolute XPath, which survives across the action round trips.
type Handle interface {
	FullXPath() string
}

// Driver is the primitive surface a browser session exposes to the
// interaction layer. Implementations resolve locators lazily: a locator is
// an opaque CSS selector matching zero or more elements.
//
// Methods that enforce a timeout report its expiry as an error wrapping
// context.DeadlineExceeded, so callers can classify timeouts apart from
// protocol failures.
type Driver interface {
	// Navigate loads url and then waits for the requested load state.
	Navigate(ctx context.Context, url string, until LoadState, timeout time.Duration) error

	// Query resolves a locator to zero or more node handles without waiting.
	Query(ctx context.Context, locator string) ([]Handle, error)

	// WaitForSelector blocks until at least one node matches the locator,
	// returning a handle to the first match.
	WaitForSelector(ctx context.Context, locator string, timeout time.Duration) (Handle, error)

	// Click dispatches a click on the node. When force is set the click is
	// issued through the DOM directly, bypassing visibility checks.
	Click(ctx context.Context, h Handle, force bool) error

	// Fill clears the node's value and types the given text into it.
	Fill(ctx context.Context, h Handle, value string) error

	// SelectOptions selects the options with the given values on a
	// <select> node and fires the corresponding input events.
	SelectOptions(ctx context.Context, h Handle, values []string) error

	// ScrollIntoView brings the node into the viewport.
	ScrollIntoView(ctx context.Context, h Handle) error

	// IsVisible reports whether a node matching the locator is visible
	// within the timeout. Expiry yields (false, nil), not an error.
	IsVisible(ctx context.Context, locator string, timeout time.Duration) (bool, error)

	// WaitForLoadState blocks until the page reaches the given load state.
	WaitForLoadState(ctx context.Context, until LoadState, timeout time.Duration) error

	// WaitForURL blocks until the page URL contains the given fragment.
	WaitForURL(ctx context.Context, pattern string, timeout time.Duration) error

	// CurrentURL returns the page's current address.
	CurrentURL(ctx context.Context) (string, error)

	// Text returns the node's trimmed text content.
	Text(ctx context.Context, h Handle) (string, error)

	// Attribute returns the value of the named attribute, and whether the
	// attribute exists on the node.
	Attribute(ctx context.Context, h Handle, name string) (string, bool, error)

	// OuterHTML returns the serialized markup of the first node matching
	// the locator.
	OuterHTML(ctx context.Context, locator string) (string, error)

	// Screenshot captures the page to a PNG file at path.
	Screenshot(ctx context.Context, path string, fullPage bool) error
}

// SessionManager owns the lifecycle of the browser process and its tabs.
type SessionManager interface {
	NewSession(ctx context.Context) (*Session, error)
	Shutdown(ctx context.Context) error
}
