// pkg/storefront/search.go
package storefront

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/acheron9x/cartpilot/pkg/browser"
	"github.com/acheron9x/cartpilot/pkg/interact"
)

// Product is one search result.
type Product struct {
	Name      string
	URL       string
	PriceText string
	Price     float64
	Available bool
}

// SearchPage lists the results of a query.
type SearchPage struct {
	ix     *interact.Interactor
	site   *Site
	logger *zap.Logger
}

// NewSearchPage creates the results page object.
func NewSearchPage(ix *interact.Interactor, site *Site, logger *zap.Logger) *SearchPage {
	return &SearchPage{ix: ix, site: site, logger: logger.Named("search")}
}

// Products waits for the result list and parses it into products. The list
// markup is snapshotted once and parsed offline, instead of a CDP round
// trip per field.
func (p *SearchPage) Products(ctx context.Context) ([]Product, error) {
	listSel, err := p.site.Selector("results_list")
	if err != nil {
		return nil, err
	}
	if _, err := p.ix.WaitForElement(ctx, listSel, p.site.Timeout("search_results", 0)); err != nil {
		return nil, err
	}

	html, err := p.ix.Driver().OuterHTML(ctx, listSel)
	if err != nil {
		return nil, fmt.Errorf("snapshotting result list: %w", err)
	}
	products, err := p.parseProducts(html)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Parsed search results.", zap.Int("count", len(products)))
	return products, nil
}

// parseProducts extracts products from the result-list markup.
func (p *SearchPage) parseProducts(html string) ([]Product, error) {
	itemSel, err := p.site.Selector("product_item")
	if err != nil {
		return nil, err
	}
	nameSel, err := p.site.Selector("product_name")
	if err != nil {
		return nil, err
	}
	priceSel, err := p.site.Selector("product_price")
	if err != nil {
		return nil, err
	}
	availSel, _ := p.site.Selector("product_availability")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing result list: %w", err)
	}

	var products []Product
	doc.Find(itemSel).Each(func(_ int, sel *goquery.Selection) {
		product := Product{
			Name:      strings.TrimSpace(sel.Find(nameSel).First().Text()),
			PriceText: strings.TrimSpace(sel.Find(priceSel).First().Text()),
		}
		if href, ok := sel.Find("a[href]").First().Attr("href"); ok {
			product.URL = p.site.URL(href)
		}
		if price, perr := ParsePrice(product.PriceText); perr == nil {
			product.Price = price
		}
		if availSel != "" {
			product.Available = sel.Find(availSel).Length() > 0
		}
		if product.Name != "" {
			products = append(products, product)
		}
	})
	return products, nil
}

// SortBy selects a sort order in the results dropdown.
func (p *SearchPage) SortBy(ctx context.Context, value string) error {
	sel, err := p.site.Selector("sort_dropdown")
	if err != nil {
		return err
	}
	return p.ix.SelectOption(ctx, sel, []string{value})
}

// OpenProduct navigates to a product's detail page.
func (p *SearchPage) OpenProduct(ctx context.Context, product Product) (*ProductPage, error) {
	if product.URL == "" {
		return nil, fmt.Errorf("product %q has no detail URL", product.Name)
	}
	timeout := p.site.Timeout("page_load", 0)
	if err := p.ix.Navigate(ctx, product.URL, browser.LoadStateNetworkIdle, timeout); err != nil {
		return nil, err
	}
	return NewProductPage(p.ix, p.site, p.logger), nil
}
