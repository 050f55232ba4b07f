// pkg/storefront/home.go
package storefront

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/acheron9x/cartpilot/pkg/browser"
	"github.com/acheron9x/cartpilot/pkg/interact"
)

// HomePage is the storefront landing page: cookie banner handling and
// search entry.
type HomePage struct {
	ix     *interact.Interactor
	site   *Site
	logger *zap.Logger
}

// NewHomePage creates the landing page object.
func NewHomePage(ix *interact.Interactor, site *Site, logger *zap.Logger) *HomePage {
	return &HomePage{ix: ix, site: site, logger: logger.Named("home")}
}

// Open navigates to the storefront and clears the cookie banner if one
// appears.
func (p *HomePage) Open(ctx context.Context) error {
	timeout := p.site.Timeout("page_load", 0)
	if err := p.ix.Navigate(ctx, p.site.BaseURL(), browser.LoadStateNetworkIdle, timeout); err != nil {
		return err
	}
	p.AcceptCookies(ctx)
	return nil
}

// AcceptCookies dismisses the consent banner. The banner is optional: an
// absent banner or a missing selector is not a failure.
func (p *HomePage) AcceptCookies(ctx context.Context) {
	sel, err := p.site.Selector("cookie_accept")
	if err != nil {
		p.logger.Debug("No cookie selector configured; skipping banner.", zap.Error(err))
		return
	}
	if !p.ix.IsVisible(ctx, sel) {
		return
	}
	if err := p.ix.Click(ctx, sel); err != nil {
		p.logger.Warn("Could not dismiss cookie banner; continuing.", zap.Error(err))
	}
}

// GoHome returns to the landing page via the header logo, falling back to
// a direct navigation when no logo selector is configured.
func (p *HomePage) GoHome(ctx context.Context) error {
	sel, err := p.site.Selector("logo_home")
	if err != nil {
		return p.Open(ctx)
	}
	if err := p.ix.Click(ctx, sel); err != nil {
		return err
	}
	timeout := p.site.Timeout("page_load", 0)
	return p.ix.WaitForNavigation(ctx, browser.LoadStateNetworkIdle, timeout)
}

// Search submits a query and yields the results page. The results page is
// an explicit navigation result, not a sibling import.
func (p *HomePage) Search(ctx context.Context, query string) (*SearchPage, error) {
	input, err := p.site.Selector("search_input")
	if err != nil {
		return nil, err
	}
	button, err := p.site.Selector("search_button")
	if err != nil {
		return nil, err
	}

	p.logger.Info("Searching.", zap.String("query", query))
	if err := p.ix.Fill(ctx, input, query); err != nil {
		return nil, err
	}
	if err := p.ix.Click(ctx, button); err != nil {
		return nil, err
	}

	timeout := p.site.Timeout("search_results", 0)
	if err := p.ix.WaitForNavigation(ctx, browser.LoadStateNetworkIdle, timeout); err != nil {
		return nil, fmt.Errorf("waiting for search results: %w", err)
	}
	return NewSearchPage(p.ix, p.site, p.logger), nil
}
