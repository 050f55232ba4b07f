// pkg/storefront/cart_test.go
package storefront

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func cartHTML(qty int) string {
	return fmt.Sprintf(`
<div id="cart">
  <div class="cart-row" data-item-id="A1">
    <span class="name">Lego Star Wars X-Wing</span>
    <span class="price">59,99 €</span>
    <input class="qty" value="%d">
    <button class="qty-plus">+</button>
    <button class="qty-minus">-</button>
    <button class="remove">x</button>
  </div>
  <div class="cart-row" data-item-id="B2">
    <span class="name">Puzzle 1000 pièces</span>
    <span class="price">12,50 €</span>
    <input class="qty" value="1">
  </div>
</div>`, qty)
}

func newTestCartPage(t *testing.T, driver *pageDriver) *CartPage {
	t.Helper()
	return NewCartPage(newTestInteractor(t, driver), newTestSite(t), zaptest.NewLogger(t))
}

func TestCartItemsParsing(t *testing.T) {
	driver := newPageDriver()
	driver.html = cartHTML(2)
	cart := newTestCartPage(t, driver)

	items, err := cart.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "A1", items[0].ID)
	assert.Equal(t, "Lego Star Wars X-Wing", items[0].Name)
	assert.Equal(t, 2, items[0].Quantity)
	assert.InDelta(t, 59.99, items[0].Price, 0.001)

	assert.Equal(t, "B2", items[1].ID)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestCartItemsPositionalIDFallback(t *testing.T) {
	driver := newPageDriver()
	driver.html = `
<div id="cart">
  <div class="cart-row"><span class="name">Toy</span><span class="price">5 €</span><input class="qty" value="1"></div>
  <div class="cart-row"><span class="name">Game</span><span class="price">9 €</span><input class="qty" value="1"></div>
</div>`
	cart := newTestCartPage(t, driver)

	items, err := cart.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "2", items[1].ID)
}

func TestSetQuantityConverges(t *testing.T) {
	qty := 1
	driver := newPageDriver()
	driver.htmlFunc = func() string { return cartHTML(qty) }
	increase := ".cart-row[data-item-id='A1'] .qty-plus"
	driver.onClick = func(locator string) {
		if locator == increase {
			qty++
		}
	}
	cart := newTestCartPage(t, driver)

	require.NoError(t, cart.SetQuantity(context.Background(), "A1", 3))
	assert.Equal(t, 3, qty)
	assert.Equal(t, []string{increase, increase}, driver.clicks)
}

func TestSetQuantityDecreases(t *testing.T) {
	qty := 4
	driver := newPageDriver()
	driver.htmlFunc = func() string { return cartHTML(qty) }
	decrease := ".cart-row[data-item-id='A1'] .qty-minus"
	driver.onClick = func(locator string) {
		if locator == decrease {
			qty--
		}
	}
	cart := newTestCartPage(t, driver)

	require.NoError(t, cart.SetQuantity(context.Background(), "A1", 2))
	assert.Equal(t, 2, qty)
}

func TestSetQuantityNoopWhenAlreadyAtTarget(t *testing.T) {
	driver := newPageDriver()
	driver.html = cartHTML(3)
	cart := newTestCartPage(t, driver)

	require.NoError(t, cart.SetQuantity(context.Background(), "A1", 3))
	assert.Empty(t, driver.clicks)
}

func TestSetQuantityFailsOnStuckControl(t *testing.T) {
	driver := newPageDriver()
	driver.html = cartHTML(1)
	cart := newTestCartPage(t, driver)

	err := cart.SetQuantity(context.Background(), "A1", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not change")
}

func TestSetQuantityRejectsZero(t *testing.T) {
	driver := newPageDriver()
	driver.html = cartHTML(1)
	cart := newTestCartPage(t, driver)

	err := cart.SetQuantity(context.Background(), "A1", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 1")
}

func TestRemoveItem(t *testing.T) {
	removed := false
	driver := newPageDriver()
	driver.htmlFunc = func() string {
		if removed {
			return `<div id="cart"></div>`
		}
		return cartHTML(1)
	}
	remove := ".cart-row[data-item-id='A1'] .remove"
	driver.onClick = func(locator string) {
		if locator == remove {
			removed = true
		}
	}
	cart := newTestCartPage(t, driver)

	require.NoError(t, cart.RemoveItem(context.Background(), "A1"))
	assert.Equal(t, []string{remove}, driver.clicks)
}

func TestRemoveItemFailsWhenRowSurvives(t *testing.T) {
	driver := newPageDriver()
	driver.html = cartHTML(1)
	cart := newTestCartPage(t, driver)

	err := cart.RemoveItem(context.Background(), "A1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still present")
}

func TestCartTotal(t *testing.T) {
	driver := newPageDriver()
	driver.texts["#cart-total"] = "132,48 €"
	cart := newTestCartPage(t, driver)

	total, err := cart.Total(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 132.48, total, 0.001)
}

func TestProceedToCheckoutBuildsFlow(t *testing.T) {
	driver := newPageDriver()
	driver.html = cartHTML(1)
	driver.url = "https://shop.example.com/panier"
	cart := newTestCartPage(t, driver)

	flow, err := cart.ProceedToCheckout(context.Background())
	require.NoError(t, err)
	require.NotNil(t, flow)
	assert.Equal(t, []string{"#to-checkout"}, driver.clicks)
}
