// pkg/interact/fake_test.go
package interact

import (
	"context"
	"sync"
	"time"

	"github.com/acheron9x/cartpilot/pkg/browser"
)

// fakeHandle is a stand-in DOM node addressed by its locator.
type fakeHandle string

func (h fakeHandle) FullXPath() string { return string(h) }

// fakeDriver scripts the primitive surface per call. Error slices are
// consumed one entry per invocation; running past the end means success.
type fakeDriver struct {
	mu sync.Mutex

	waitErrs   []error
	clickErrs  []error
	fillErrs   []error
	selectErrs []error

	navigateErr  error
	loadStateErr error
	urlErr       error
	visibleVal   bool
	visibleErr   error
	currentURL   string
	outerHTML    string
	textVal      string

	waitCalls       int
	clickCalls      int
	fillCalls       int
	selectCalls     int
	scrollCalls     int
	screenshotPaths []string
	filledValues    []string
}

var _ browser.Driver = (*fakeDriver)(nil)

func takeErr(errs []error, call int) error {
	if call < len(errs) {
		return errs[call]
	}
	return nil
}

func (d *fakeDriver) Navigate(ctx context.Context, url string, until browser.LoadState, timeout time.Duration) error {
	return d.navigateErr
}

func (d *fakeDriver) Query(ctx context.Context, locator string) ([]browser.Handle, error) {
	return []browser.Handle{fakeHandle(locator)}, nil
}

func (d *fakeDriver) WaitForSelector(ctx context.Context, locator string, timeout time.Duration) (browser.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := takeErr(d.waitErrs, d.waitCalls)
	d.waitCalls++
	if err != nil {
		return nil, err
	}
	return fakeHandle(locator), nil
}

func (d *fakeDriver) Click(ctx context.Context, h browser.Handle, force bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := takeErr(d.clickErrs, d.clickCalls)
	d.clickCalls++
	return err
}

func (d *fakeDriver) Fill(ctx context.Context, h browser.Handle, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := takeErr(d.fillErrs, d.fillCalls)
	d.fillCalls++
	if err == nil {
		d.filledValues = append(d.filledValues, value)
	}
	return err
}

func (d *fakeDriver) SelectOptions(ctx context.Context, h browser.Handle, values []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := takeErr(d.selectErrs, d.selectCalls)
	d.selectCalls++
	return err
}

func (d *fakeDriver) ScrollIntoView(ctx context.Context, h browser.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scrollCalls++
	return nil
}

func (d *fakeDriver) IsVisible(ctx context.Context, locator string, timeout time.Duration) (bool, error) {
	return d.visibleVal, d.visibleErr
}

func (d *fakeDriver) WaitForLoadState(ctx context.Context, until browser.LoadState, timeout time.Duration) error {
	return d.loadStateErr
}

func (d *fakeDriver) WaitForURL(ctx context.Context, pattern string, timeout time.Duration) error {
	return d.urlErr
}

func (d *fakeDriver) CurrentURL(ctx context.Context) (string, error) {
	return d.currentURL, nil
}

func (d *fakeDriver) Text(ctx context.Context, h browser.Handle) (string, error) {
	return d.textVal, nil
}

func (d *fakeDriver) Attribute(ctx context.Context, h browser.Handle, name string) (string, bool, error) {
	return "", false, nil
}

func (d *fakeDriver) OuterHTML(ctx context.Context, locator string) (string, error) {
	return d.outerHTML, nil
}

func (d *fakeDriver) Screenshot(ctx context.Context, path string, fullPage bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.screenshotPaths = append(d.screenshotPaths, path)
	return nil
}

func (d *fakeDriver) screenshots() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.screenshotPaths...)
}
