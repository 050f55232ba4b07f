// pkg/storefront/driver_test.go
package storefront

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/acheron9x/cartpilot/internal/config"
	"github.com/acheron9x/cartpilot/pkg/browser"
	"github.com/acheron9x/cartpilot/pkg/interact"
)

type pageHandle string

func (h pageHandle) FullXPath() string { return string(h) }

// pageDriver serves canned markup and records interactions. htmlFunc, when
// set, lets a test mutate the page in response to clicks.
type pageDriver struct {
	mu       sync.Mutex
	url      string
	html     string
	htmlFunc func() string
	texts    map[string]string
	visible  map[string]bool
	clicks   []string
	fills    map[string]string
	onClick  func(locator string)
}

var _ browser.Driver = (*pageDriver)(nil)

func newPageDriver() *pageDriver {
	return &pageDriver{
		texts:   map[string]string{},
		visible: map[string]bool{},
		fills:   map[string]string{},
	}
}

func (d *pageDriver) Navigate(ctx context.Context, url string, until browser.LoadState, timeout time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = url
	return nil
}

func (d *pageDriver) Query(ctx context.Context, locator string) ([]browser.Handle, error) {
	return []browser.Handle{pageHandle(locator)}, nil
}

func (d *pageDriver) WaitForSelector(ctx context.Context, locator string, timeout time.Duration) (browser.Handle, error) {
	return pageHandle(locator), nil
}

func (d *pageDriver) Click(ctx context.Context, h browser.Handle, force bool) error {
	d.mu.Lock()
	locator := h.FullXPath()
	d.clicks = append(d.clicks, locator)
	cb := d.onClick
	d.mu.Unlock()
	if cb != nil {
		cb(locator)
	}
	return nil
}

func (d *pageDriver) Fill(ctx context.Context, h browser.Handle, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fills[h.FullXPath()] = value
	return nil
}

func (d *pageDriver) SelectOptions(ctx context.Context, h browser.Handle, values []string) error {
	return nil
}

func (d *pageDriver) ScrollIntoView(ctx context.Context, h browser.Handle) error { return nil }

func (d *pageDriver) IsVisible(ctx context.Context, locator string, timeout time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.visible[locator], nil
}

func (d *pageDriver) WaitForLoadState(ctx context.Context, until browser.LoadState, timeout time.Duration) error {
	return nil
}

func (d *pageDriver) WaitForURL(ctx context.Context, pattern string, timeout time.Duration) error {
	return nil
}

func (d *pageDriver) CurrentURL(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url, nil
}

func (d *pageDriver) Text(ctx context.Context, h browser.Handle) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.texts[h.FullXPath()], nil
}

func (d *pageDriver) Attribute(ctx context.Context, h browser.Handle, name string) (string, bool, error) {
	return "", false, nil
}

func (d *pageDriver) OuterHTML(ctx context.Context, locator string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.htmlFunc != nil {
		return d.htmlFunc(), nil
	}
	return d.html, nil
}

func (d *pageDriver) Screenshot(ctx context.Context, path string, fullPage bool) error {
	return nil
}

func testSiteConfig() config.SiteConfig {
	return config.SiteConfig{
		BaseURL:  "https://shop.example.com",
		LoginURL: "https://shop.example.com/connexion",
		CartURL:  "https://shop.example.com/panier",
		Selectors: map[string]string{
			"search_input":          "#search-input",
			"search_button":         "#search-button",
			"cookie_accept":         "#cookie-accept",
			"results_list":          "#results",
			"product_item":          ".product-card",
			"product_name":          ".product-name",
			"product_price":         ".product-price",
			"product_availability":  ".in-stock",
			"product_title":         "h1.title",
			"product_detail_price":  ".detail-price",
			"add_to_cart":           "#add-to-cart",
			"add_to_cart_preorder":  "#preorder",
			"cart_container":        "#cart",
			"cart_row":              ".cart-row",
			"cart_item_name":        ".name",
			"cart_item_price":       ".price",
			"cart_item_quantity":    ".qty",
			"cart_total":            "#cart-total",
			"quantity_increase":     ".cart-row[data-item-id='%s'] .qty-plus",
			"quantity_decrease":     ".cart-row[data-item-id='%s'] .qty-minus",
			"remove_item":           ".cart-row[data-item-id='%s'] .remove",
			"proceed_to_checkout":   "#to-checkout",
			"login_email":           "#email",
			"login_password":        "#password",
			"login_submit":          "#login-submit",
			"account_landmark":      "#my-account",
		},
		Steps: map[string][]string{
			"identification": {"identification"},
			"delivery":       {"livraison"},
			"payment":        {"paiement"},
			"confirmation":   {"confirmation"},
		},
		Delivery: map[string]string{"home": "#delivery-home"},
	}
}

func newTestSite(t *testing.T) *Site {
	t.Helper()
	site, err := NewSite("testshop", testSiteConfig())
	require.NoError(t, err)
	return site
}

func newTestInteractor(t *testing.T, driver *pageDriver) *interact.Interactor {
	t.Helper()
	opts := interact.Options{
		Timeout:       50 * time.Millisecond,
		ShortWait:     20 * time.Millisecond,
		Policy:        interact.RetryPolicy{MaxAttempts: 2, BackoffMax: time.Millisecond},
		PollInterval:  2 * time.Millisecond,
		ScreenshotDir: t.TempDir(),
	}
	ix, err := interact.New(driver, opts, zaptest.NewLogger(t))
	require.NoError(t, err)
	return ix
}
