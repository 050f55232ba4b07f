// pkg/storefront/cart.go
package storefront

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/acheron9x/cartpilot/pkg/browser"
	"github.com/acheron9x/cartpilot/pkg/checkout"
	"github.com/acheron9x/cartpilot/pkg/interact"
)

// CartItem is one row of the cart as displayed on the page.
type CartItem struct {
	ID        string
	Name      string
	Quantity  int
	PriceText string
	Price     float64
}

// CartPage drives the shopping cart.
type CartPage struct {
	ix     *interact.Interactor
	site   *Site
	logger *zap.Logger
}

// NewCartPage creates the cart page object.
func NewCartPage(ix *interact.Interactor, site *Site, logger *zap.Logger) *CartPage {
	return &CartPage{ix: ix, site: site, logger: logger.Named("cart")}
}

// Open navigates to the cart.
func (p *CartPage) Open(ctx context.Context) error {
	timeout := p.site.Timeout("page_load", 0)
	return p.ix.Navigate(ctx, p.site.CartURL(), browser.LoadStateNetworkIdle, timeout)
}

// Items waits for the cart container and parses its rows. Rows without a
// data-item-id attribute fall back to a 1-based positional ID so the row
// selectors still resolve.
func (p *CartPage) Items(ctx context.Context) ([]CartItem, error) {
	containerSel, err := p.site.Selector("cart_container")
	if err != nil {
		return nil, err
	}
	if _, err := p.ix.WaitForElement(ctx, containerSel, p.site.Timeout("cart_load", 0)); err != nil {
		return nil, err
	}
	html, err := p.ix.Driver().OuterHTML(ctx, containerSel)
	if err != nil {
		return nil, fmt.Errorf("snapshotting cart: %w", err)
	}
	return p.parseItems(html)
}

func (p *CartPage) parseItems(html string) ([]CartItem, error) {
	rowSel, err := p.site.Selector("cart_row")
	if err != nil {
		return nil, err
	}
	nameSel, err := p.site.Selector("cart_item_name")
	if err != nil {
		return nil, err
	}
	priceSel, err := p.site.Selector("cart_item_price")
	if err != nil {
		return nil, err
	}
	qtySel, err := p.site.Selector("cart_item_quantity")
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing cart: %w", err)
	}

	var items []CartItem
	doc.Find(rowSel).Each(func(i int, sel *goquery.Selection) {
		item := CartItem{
			Name:      strings.TrimSpace(sel.Find(nameSel).First().Text()),
			PriceText: strings.TrimSpace(sel.Find(priceSel).First().Text()),
		}
		if id, ok := sel.Attr("data-item-id"); ok {
			item.ID = id
		} else {
			item.ID = strconv.Itoa(i + 1)
		}
		qtyNode := sel.Find(qtySel).First()
		qtyText, ok := qtyNode.Attr("value")
		if !ok {
			qtyText = qtyNode.Text()
		}
		if qty, qerr := strconv.Atoi(strings.TrimSpace(qtyText)); qerr == nil {
			item.Quantity = qty
		}
		if price, perr := ParsePrice(item.PriceText); perr == nil {
			item.Price = price
		}
		if item.Name != "" {
			items = append(items, item)
		}
	})
	return items, nil
}

// itemQuantity re-reads the displayed quantity for one row.
func (p *CartPage) itemQuantity(ctx context.Context, itemID string) (int, error) {
	items, err := p.Items(ctx)
	if err != nil {
		return 0, err
	}
	for _, item := range items {
		if item.ID == itemID {
			return item.Quantity, nil
		}
	}
	return 0, fmt.Errorf("cart item %q not found", itemID)
}

// SetQuantity steps the row's increase or decrease control until the
// displayed quantity matches the target, re-reading the cart after every
// click. The step count is bounded by the distance to the target, so a
// stuck control fails instead of looping.
func (p *CartPage) SetQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}
	current, err := p.itemQuantity(ctx, itemID)
	if err != nil {
		return err
	}
	if current == quantity {
		return nil
	}

	controlKey := "quantity_increase"
	if current > quantity {
		controlKey = "quantity_decrease"
	}
	control, err := p.site.RowSelector(controlKey, itemID)
	if err != nil {
		return err
	}

	steps := current - quantity
	if steps < 0 {
		steps = -steps
	}
	for i := 0; i < steps; i++ {
		if err := p.ix.Click(ctx, control); err != nil {
			return err
		}
		updated := p.ix.WaitUntil(ctx, func() bool {
			got, qerr := p.itemQuantity(ctx, itemID)
			return qerr == nil && got != current
		}, p.site.Timeout("cart_update", 0), 0)
		if !updated {
			return fmt.Errorf("quantity for item %q did not change after clicking %s", itemID, controlKey)
		}
		current, err = p.itemQuantity(ctx, itemID)
		if err != nil {
			return err
		}
	}

	if current != quantity {
		return fmt.Errorf("cart item %q quantity is %d after adjustment, want %d", itemID, current, quantity)
	}
	p.logger.Info("Adjusted cart quantity.",
		zap.String("item_id", itemID), zap.Int("quantity", quantity))
	return nil
}

// RemoveItem clicks the row's remove control and waits for the row to leave
// the cart.
func (p *CartPage) RemoveItem(ctx context.Context, itemID string) error {
	control, err := p.site.RowSelector("remove_item", itemID)
	if err != nil {
		return err
	}
	if err := p.ix.Click(ctx, control); err != nil {
		return err
	}
	removed := p.ix.WaitUntil(ctx, func() bool {
		_, qerr := p.itemQuantity(ctx, itemID)
		return qerr != nil
	}, p.site.Timeout("cart_update", 0), 0)
	if !removed {
		return fmt.Errorf("cart item %q is still present after remove", itemID)
	}
	p.logger.Info("Removed cart item.", zap.String("item_id", itemID))
	return nil
}

// Total returns the displayed cart total parsed to a number.
func (p *CartPage) Total(ctx context.Context) (float64, error) {
	sel, err := p.site.Selector("cart_total")
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

// ProceedToCheckout clicks through to checkout and hands back a flow wired
// with the site's step fragments and delivery mapping.
func (p *CartPage) ProceedToCheckout(ctx context.Context) (*checkout.Flow, error) {
	sel, err := p.site.Selector("proceed_to_checkout")
	if err != nil {
		return nil, err
	}
	if err := p.ix.Click(ctx, sel); err != nil {
		return nil, err
	}
	timeout := p.site.Timeout("checkout_load", 0)
	if err := p.ix.WaitForNavigation(ctx, browser.LoadStateNetworkIdle, timeout); err != nil {
		return nil, err
	}
	return p.buildFlow()
}

// buildFlow assembles a checkout flow from the site profile. Optional
// selectors stay empty and gate their operations at use time.
func (p *CartPage) buildFlow() (*checkout.Flow, error) {
	fragments, err := checkout.FragmentsFromConfig(p.site.StepFragments())
	if err != nil {
		return nil, err
	}
	classify, err := checkout.NewFragmentClassifier(fragments)
	if err != nil {
		return nil, err
	}

	optional := func(key string) string {
		s, serr := p.site.Selector(key)
		if serr != nil {
			return ""
		}
		return s
	}
	sel := checkout.Selectors{
		DeliveryOptions:  p.site.DeliveryOptions(),
		ProceedButton:    optional("checkout_proceed"),
		CardHolder:       optional("card_holder"),
		CardNumber:       optional("card_number"),
		CardExpiry:       optional("card_expiry"),
		CardSecurityCode: optional("card_security_code"),
		PlaceOrderButton: optional("place_order"),
		OrderNumber:      optional("order_number"),
	}
	return checkout.NewFlow(p.ix, classify, sel, p.site.Timeout("checkout_step", 0), p.logger), nil
}
