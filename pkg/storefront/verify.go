// pkg/storefront/verify.go
package storefront

import (
	"fmt"
	"math"
	"strings"
)

// priceEpsilon absorbs rounding differences between a configured price and
// the one parsed off the page.
const priceEpsilon = 0.01

// ExpectedItem is what the cart should contain for one product.
type ExpectedItem struct {
	Name     string
	Quantity int
	Price    float64
}

// VerifyItems compares the cart contents against the expected list and
// returns whether they match plus one message per discrepancy. Items are
// matched by name, case-insensitively; an expected price of zero means the
// price is not checked.
func VerifyItems(expected []ExpectedItem, actual []CartItem) (bool, []string) {
	byName := make(map[string]CartItem, len(actual))
	for _, item := range actual {
		byName[strings.ToLower(item.Name)] = item
	}

	var problems []string
	seen := make(map[string]bool, len(expected))
	for _, want := range expected {
		key := strings.ToLower(want.Name)
		seen[key] = true
		got, ok := byName[key]
		if !ok {
			problems = append(problems, fmt.Sprintf("missing item %q", want.Name))
			continue
		}
		if want.Quantity > 0 && got.Quantity != want.Quantity {
			problems = append(problems, fmt.Sprintf(
				"item %q has quantity %d, want %d", want.Name, got.Quantity, want.Quantity))
		}
		if want.Price > 0 && math.Abs(got.Price-want.Price) > priceEpsilon {
			problems = append(problems, fmt.Sprintf(
				"item %q has price %.2f, want %.2f", want.Name, got.Price, want.Price))
		}
	}

	for _, item := range actual {
		if !seen[strings.ToLower(item.Name)] {
			problems = append(problems, fmt.Sprintf("unexpected item %q", item.Name))
		}
	}
	return len(problems) == 0, problems
}
