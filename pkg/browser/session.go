// pkg/browser/session.go
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/acheron9x/cartpilot/internal/config"
)

const (
	// networkIdleQuiet is the quiet period with zero inflight requests that
	// must elapse before LoadStateNetworkIdle is considered reached.
	networkIdleQuiet = 500 * time.Millisecond
	loadStatePoll    = 100 * time.Millisecond
	urlPoll          = 250 * time.Millisecond
)

var _ Driver = (*Session)(nil)

// Session manages a single isolated browser tab and implements Driver
// against it. A Session is owned by one workflow at a time; it performs no
// internal locking of page operations.
type Session struct {
	id     string
	logger *zap.Logger
	cfg    config.BrowserConfig

	ctx     context.Context
	cancel  context.CancelFunc
	tracker *loadTracker

	onClose func()
	closed  bool
	mu      sync.Mutex
}

// newSession creates the tab, wires load-state tracking, and enables the
// network domain so request events flow.
func newSession(allocCtx context.Context, logger *zap.Logger, cfg config.BrowserConfig) (*Session, error) {
	id := uuid.New().String()
	tabCtx, cancel := chromedp.NewContext(allocCtx)

	s := &Session{
		id:      id,
		logger:  logger.Named("session").With(zap.String("session_id", id[:8])),
		cfg:     cfg,
		ctx:     tabCtx,
		cancel:  cancel,
		tracker: newLoadTracker(),
	}

	chromedp.ListenTarget(tabCtx, s.tracker.handleEvent)

	err := chromedp.Run(tabCtx,
		network.Enable(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if cfg.DisableCache {
				return network.SetCacheDisabled(true).Do(ctx)
			}
			return nil
		}),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("enabling network tracking: %w", err)
	}

	s.logger.Info("Browser session initialized.")
	return s, nil
}

// ID returns the unique identifier for this session.
func (s *Session) ID() string { return s.id }

// run executes chromedp actions against the tab, bounded by the optional
// timeout and cancelled if the caller's context is.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx := s.ctx
	cancel := func() {}
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url and then waits for the requested load state.
func (s *Session) Navigate(ctx context.Context, url string, until LoadState, timeout time.Duration) error {
	s.logger.Debug("Navigating", zap.String("url", url), zap.String("until", string(until)))
	s.tracker.reset()
	if err := s.run(ctx, timeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return s.WaitForLoadState(ctx, until, timeout)
}

// Query resolves a locator to zero or more node handles without waiting.
func (s *Session) Query(ctx context.Context, locator string) ([]Handle, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, 0, chromedp.Nodes(locator, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", locator, err)
	}
	handles := make([]Handle, len(nodes))
	for i, n := range nodes {
		handles[i] = n
	}
	return handles, nil
}

// WaitForSelector blocks until at least one node matches the locator.
func (s *Session) WaitForSelector(ctx context.Context, locator string, timeout time.Duration) (Handle, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, timeout, chromedp.Nodes(locator, &nodes, chromedp.ByQueryAll))
	if err != nil {
		return nil, fmt.Errorf("wait for selector %q: %w", locator, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("wait for selector %q: no nodes resolved", locator)
	}
	return nodes[0], nil
}

// Click dispatches a click on the node. A forced click is issued through
// the DOM directly, bypassing chromedp's visibility checks.
func (s *Session) Click(ctx context.Context, h Handle, force bool) error {
	xp := h.FullXPath()
	if force {
		script := fmt.Sprintf(`(function(){
			const r = document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null);
			if (!r.singleNodeValue) throw new Error("node not found");
			r.singleNodeValue.click();
		})()`, xp)
		if err := s.run(ctx, 0, chromedp.Evaluate(script, nil)); err != nil {
			return fmt.Errorf("force click %s: %w", xp, err)
		}
		return nil
	}
	if err := s.run(ctx, 0, chromedp.Click(xp, chromedp.BySearch)); err != nil {
		return fmt.Errorf("click %s: %w", xp, err)
	}
	return nil
}

// Fill clears the node's value and types the given text into it.
func (s *Session) Fill(ctx context.Context, h Handle, value string) error {
	xp := h.FullXPath()
	err := s.run(ctx, 0,
		chromedp.Focus(xp, chromedp.BySearch),
		chromedp.SetValue(xp, "", chromedp.BySearch),
		chromedp.SendKeys(xp, value, chromedp.BySearch),
	)
	if err != nil {
		return fmt.Errorf("fill %s: %w", xp, err)
	}
	return nil
}

// SelectOptions selects the options with the given values on a <select>
// node and fires input/change events so framework listeners pick it up.
// Every requested value must match an option; a positional guess is never
// made.
func (s *Session) SelectOptions(ctx context.Context, h Handle, values []string) error {
	xp := h.FullXPath()
	encoded, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding option values: %w", err)
	}
	script := fmt.Sprintf(`(function(values){
		const r = document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null);
		const el = r.singleNodeValue;
		if (!el || !el.options) throw new Error("not a select element");
		let matched = 0;
		for (const opt of el.options) {
			opt.selected = values.includes(opt.value);
			if (opt.selected) matched++;
		}
		if (matched !== values.length) throw new Error("unmatched option values: " + values.join(","));
		el.dispatchEvent(new Event("input", {bubbles: true}));
		el.dispatchEvent(new Event("change", {bubbles: true}));
	})(%s)`, xp, string(encoded))
	if err := s.run(ctx, 0, chromedp.Evaluate(script, nil)); err != nil {
		return fmt.Errorf("select options on %s: %w", xp, err)
	}
	return nil
}

// ScrollIntoView brings the node into the viewport.
func (s *Session) ScrollIntoView(ctx context.Context, h Handle) error {
	xp := h.FullXPath()
	if err := s.run(ctx, 0, chromedp.ScrollIntoView(xp, chromedp.BySearch)); err != nil {
		return fmt.Errorf("scroll into view %s: %w", xp, err)
	}
	return nil
}

// IsVisible reports whether a node matching the locator becomes visible
// within the timeout. Expiry is an answer, not an error.
func (s *Session) IsVisible(ctx context.Context, locator string, timeout time.Duration) (bool, error) {
	err := s.run(ctx, timeout, chromedp.WaitVisible(locator, chromedp.ByQuery))
	if err != nil {
		if isDeadline(err) {
			return false, nil
		}
		return false, fmt.Errorf("visibility check %q: %w", locator, err)
	}
	return true, nil
}

// WaitForLoadState blocks until the page reaches the given load state.
func (s *Session) WaitForLoadState(ctx context.Context, until LoadState, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if s.tracker.reached(until) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("load state %q not reached within %s: %w", until, timeout, context.DeadlineExceeded)
		}
		select {
		case <-time.After(loadStatePoll):
		case <-ctx.Done():
			return ctx.Err()
		case <-s.ctx.Done():
			return s.ctx.Err()
		}
	}
}

// WaitForURL blocks until the page URL contains the given fragment.
func (s *Session) WaitForURL(ctx context.Context, pattern string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		current, err := s.CurrentURL(ctx)
		if err != nil {
			return err
		}
		if containsFragment(current, pattern) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("url %q not reached within %s (current %q): %w",
				pattern, timeout, current, context.DeadlineExceeded)
		}
		select {
		case <-time.After(urlPoll):
		case <-ctx.Done():
			return ctx.Err()
		case <-s.ctx.Done():
			return s.ctx.Err()
		}
	}
}

// CurrentURL returns the page's current address.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := s.run(ctx, 0, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("reading location: %w", err)
	}
	return url, nil
}

// Text returns the node's text content.
func (s *Session) Text(ctx context.Context, h Handle) (string, error) {
	var out string
	xp := h.FullXPath()
	if err := s.run(ctx, 0, chromedp.Text(xp, &out, chromedp.BySearch)); err != nil {
		return "", fmt.Errorf("text of %s: %w", xp, err)
	}
	return out, nil
}

// Attribute returns the value of the named attribute on the node.
func (s *Session) Attribute(ctx context.Context, h Handle, name string) (string, bool, error) {
	var value string
	var ok bool
	xp := h.FullXPath()
	if err := s.run(ctx, 0, chromedp.AttributeValue(xp, name, &value, &ok, chromedp.BySearch)); err != nil {
		return "", false, fmt.Errorf("attribute %q of %s: %w", name, xp, err)
	}
	return value, ok, nil
}

// OuterHTML returns the serialized markup of the first matching node.
func (s *Session) OuterHTML(ctx context.Context, locator string) (string, error) {
	var html string
	if err := s.run(ctx, 0, chromedp.OuterHTML(locator, &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("outer html of %q: %w", locator, err)
	}
	return html, nil
}

// Screenshot captures the page to a PNG file at path.
func (s *Session) Screenshot(ctx context.Context, path string, fullPage bool) error {
	var buf []byte
	var action chromedp.Action
	if fullPage {
		action = chromedp.FullScreenshot(&buf, 90)
	} else {
		action = chromedp.CaptureScreenshot(&buf)
	}
	if err := s.run(ctx, 0, action); err != nil {
		return fmt.Errorf("capturing screenshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating screenshot directory: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("writing screenshot: %w", err)
	}
	return nil
}

// Close terminates the tab and releases its resources.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	if s.onClose != nil {
		s.onClose()
	}
	s.logger.Debug("Browser session closed.")
	return nil
}

func isDeadline(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

func containsFragment(url, fragment string) bool {
	return fragment != "" && strings.Contains(url, fragment)
}

// -- loadTracker --

// loadTracker derives page load state from CDP lifecycle and network
// events. It is reset at the start of each navigation.
type loadTracker struct {
	mu           sync.Mutex
	inflight     map[network.RequestID]struct{}
	lastActivity time.Time
	domReady     bool
	loadFired    bool
}

func newLoadTracker() *loadTracker {
	return &loadTracker{
		inflight:     make(map[network.RequestID]struct{}),
		lastActivity: time.Now(),
	}
}

func (t *loadTracker) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inflight = make(map[network.RequestID]struct{})
	t.lastActivity = time.Now()
	t.domReady = false
	t.loadFired = false
}

// handleEvent consumes target events. Registered via chromedp.ListenTarget.
func (t *loadTracker) handleEvent(ev interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch e := ev.(type) {
	case *page.EventDomContentEventFired:
		t.domReady = true
	case *page.EventLoadEventFired:
		t.loadFired = true
	case *network.EventRequestWillBeSent:
		t.inflight[e.RequestID] = struct{}{}
		t.lastActivity = time.Now()
	case *network.EventLoadingFinished:
		delete(t.inflight, e.RequestID)
		t.lastActivity = time.Now()
	case *network.EventLoadingFailed:
		delete(t.inflight, e.RequestID)
		t.lastActivity = time.Now()
	}
}

// reached reports whether the tracker currently satisfies the load state.
func (t *loadTracker) reached(until LoadState) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch until {
	case LoadStateDOMContentLoaded:
		return t.domReady || t.loadFired
	case LoadStateLoad:
		return t.loadFired
	case LoadStateNetworkIdle:
		return t.loadFired && len(t.inflight) == 0 && time.Since(t.lastActivity) >= networkIdleQuiet
	default:
		return t.loadFired
	}
}
