// pkg/storefront/price.go
package storefront

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	currencyRunes = regexp.MustCompile(`[€$£\s ]`)
	numberPattern = regexp.MustCompile(`\d+\.?\d*`)
)

// ParsePrice extracts a numeric price from a display string. It handles
// both thousand-separator conventions: "1,234.56 €" and "€1.234,56", as
// well as bare "12,99" comma-decimal values.
func ParsePrice(text string) (float64, error) {
	cleaned := currencyRunes.ReplaceAllString(text, "")

	comma := strings.Index(cleaned, ",")
	dot := strings.Index(cleaned, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma < dot:
		// 1,234.56 — comma separates thousands.
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case comma >= 0 && dot >= 0:
		// 1.234,56 — dot separates thousands, comma is decimal.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case comma >= 0:
		// Lone comma is a decimal separator.
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	match := numberPattern.FindString(cleaned)
	if match == "" {
		return 0, fmt.Errorf("no price found in %q", text)
	}
	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing price %q: %w", text, err)
	}
	return price, nil
}

// FormatPrice renders a price with French display conventions: space as
// thousands separator, comma as decimal separator and a trailing currency
// symbol.
func FormatPrice(price float64, currency string) string {
	whole := int64(price)
	cents := int64(price*100+0.5) - whole*100

	digits := strconv.FormatInt(whole, 10)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	return fmt.Sprintf("%s,%02d %s", strings.Join(groups, " "), cents, currency)
}
