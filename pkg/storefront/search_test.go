// pkg/storefront/search_test.go
package storefront

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const resultsHTML = `
<div id="results">
  <div class="product-card">
    <a href="/jouet/lego-x-wing-123"><span class="product-name">Lego Star Wars X-Wing</span></a>
    <span class="product-price">59,99 €</span>
    <span class="in-stock">En stock</span>
  </div>
  <div class="product-card">
    <a href="https://shop.example.com/jouet/puzzle-456"><span class="product-name">Puzzle 1000 pièces</span></a>
    <span class="product-price">12,50 €</span>
  </div>
  <div class="product-card">
    <span class="product-price">9,99 €</span>
  </div>
</div>`

func TestProductsParsesResultList(t *testing.T) {
	driver := newPageDriver()
	driver.html = resultsHTML
	site := newTestSite(t)
	page := NewSearchPage(newTestInteractor(t, driver), site, zaptest.NewLogger(t))

	products, err := page.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2, "a card without a name is skipped")

	first := products[0]
	assert.Equal(t, "Lego Star Wars X-Wing", first.Name)
	assert.Equal(t, "59,99 €", first.PriceText)
	assert.InDelta(t, 59.99, first.Price, 0.001)
	assert.True(t, first.Available)
	assert.Equal(t, "https://shop.example.com/jouet/lego-x-wing-123", first.URL,
		"relative links resolve against the site base")

	second := products[1]
	assert.Equal(t, "Puzzle 1000 pièces", second.Name)
	assert.False(t, second.Available)
	assert.Equal(t, "https://shop.example.com/jouet/puzzle-456", second.URL,
		"absolute links pass through")
}

func TestProductsEmptyResultList(t *testing.T) {
	driver := newPageDriver()
	driver.html = `<div id="results"></div>`
	site := newTestSite(t)
	page := NewSearchPage(newTestInteractor(t, driver), site, zaptest.NewLogger(t))

	products, err := page.Products(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestOpenProductRequiresURL(t *testing.T) {
	driver := newPageDriver()
	site := newTestSite(t)
	page := NewSearchPage(newTestInteractor(t, driver), site, zaptest.NewLogger(t))

	_, err := page.OpenProduct(context.Background(), Product{Name: "Mystery"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no detail URL")
}

func TestOpenProductNavigates(t *testing.T) {
	driver := newPageDriver()
	site := newTestSite(t)
	page := NewSearchPage(newTestInteractor(t, driver), site, zaptest.NewLogger(t))

	detail, err := page.OpenProduct(context.Background(),
		Product{Name: "Lego", URL: "https://shop.example.com/jouet/lego-x-wing-123"})
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "https://shop.example.com/jouet/lego-x-wing-123", driver.url)
}
