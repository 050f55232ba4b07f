// pkg/storefront/product.go
package storefront

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/acheron9x/cartpilot/pkg/interact"
)

// ProductPage drives a single product's detail page.
type ProductPage struct {
	ix     *interact.Interactor
	site   *Site
	logger *zap.Logger
}

// NewProductPage creates the detail page object.
func NewProductPage(ix *interact.Interactor, site *Site, logger *zap.Logger) *ProductPage {
	return &ProductPage{ix: ix, site: site, logger: logger.Named("product")}
}

// Title returns the product name displayed on the page.
func (p *ProductPage) Title(ctx context.Context) (string, error) {
	sel, err := p.site.Selector("product_title")
	if err != nil {
		return "", err
	}
	h, err := p.ix.WaitForElement(ctx, sel, p.site.Timeout("page_load", 0))
	if err != nil {
		return "", err
	}
	text, err := p.ix.Driver().Text(ctx, h)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Price returns the displayed price parsed to a number.
func (p *ProductPage) Price(ctx context.Context) (float64, error) {
	sel, err := p.site.Selector("product_detail_price")
	if err != nil {
		return 0, err
	}
	h, err := p.ix.WaitForElement(ctx, sel, 0)
	if err != nil {
		return 0, err
	}
	text, err := p.ix.Driver().Text(ctx, h)
	if err != nil {
		return 0, err
	}
	return ParsePrice(text)
}

// AddToCart clicks whichever add-to-cart control the page shows. Preorder
// items carry a different button, so the regular one is tried first and the
// preorder one only when the regular control is not visible.
func (p *ProductPage) AddToCart(ctx context.Context) error {
	regular, err := p.site.Selector("add_to_cart")
	if err != nil {
		return err
	}
	locator := regular
	if !p.ix.IsVisible(ctx, regular) {
		preorder, perr := p.site.Selector("add_to_cart_preorder")
		if perr != nil {
			return fmt.Errorf("add-to-cart button not visible and no preorder fallback: %w", perr)
		}
		locator = preorder
	}
	if err := p.ix.Click(ctx, locator); err != nil {
		return err
	}
	p.logger.Info("Added product to cart.", zap.String("locator", locator))

	// Some layouts confirm the add in a modal before the cart counter
	// updates. The confirmation is advisory, not part of the add itself.
	if confirmSel, cerr := p.site.Selector("add_to_cart_confirmation"); cerr == nil {
		reached := p.ix.WaitUntil(ctx, func() bool {
			return p.ix.IsVisible(ctx, confirmSel)
		}, p.site.Timeout("cart_update", 0), 0)
		if !reached {
			p.logger.Warn("Add-to-cart confirmation did not appear.",
				zap.String("locator", confirmSel))
		}
	}
	return nil
}
