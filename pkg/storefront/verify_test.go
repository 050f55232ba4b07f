// pkg/storefront/verify_test.go
package storefront

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyItemsMatch(t *testing.T) {
	expected := []ExpectedItem{
		{Name: "Lego X-Wing", Quantity: 2, Price: 59.99},
		{Name: "Puzzle 1000", Quantity: 1, Price: 12.50},
	}
	actual := []CartItem{
		{ID: "1", Name: "Lego X-Wing", Quantity: 2, Price: 59.99},
		{ID: "2", Name: "puzzle 1000", Quantity: 1, Price: 12.50},
	}

	ok, problems := VerifyItems(expected, actual)
	assert.True(t, ok)
	assert.Empty(t, problems)
}

func TestVerifyItemsMissing(t *testing.T) {
	expected := []ExpectedItem{{Name: "Lego X-Wing", Quantity: 1}}

	ok, problems := VerifyItems(expected, nil)
	assert.False(t, ok)
	assert.Len(t, problems, 1)
	assert.Contains(t, problems[0], "missing item")
}

func TestVerifyItemsUnexpected(t *testing.T) {
	actual := []CartItem{{ID: "1", Name: "Surprise Toy", Quantity: 1}}

	ok, problems := VerifyItems(nil, actual)
	assert.False(t, ok)
	assert.Len(t, problems, 1)
	assert.Contains(t, problems[0], "unexpected item")
}

func TestVerifyItemsQuantityAndPriceMismatch(t *testing.T) {
	expected := []ExpectedItem{{Name: "Lego X-Wing", Quantity: 2, Price: 59.99}}
	actual := []CartItem{{ID: "1", Name: "Lego X-Wing", Quantity: 1, Price: 49.99}}

	ok, problems := VerifyItems(expected, actual)
	assert.False(t, ok)
	assert.Len(t, problems, 2)
	assert.Contains(t, problems[0], "quantity 1, want 2")
	assert.Contains(t, problems[1], "price 49.99, want 59.99")
}

func TestVerifyItemsToleratesPriceEpsilon(t *testing.T) {
	expected := []ExpectedItem{{Name: "Lego X-Wing", Price: 59.99}}
	actual := []CartItem{{ID: "1", Name: "Lego X-Wing", Price: 59.994}}

	ok, problems := VerifyItems(expected, actual)
	assert.True(t, ok, "a sub-cent difference is not a mismatch: %v", problems)
}

func TestVerifyItemsSkipsUncheckedFields(t *testing.T) {
	// Zero quantity and zero price mean "don't care".
	expected := []ExpectedItem{{Name: "Lego X-Wing"}}
	actual := []CartItem{{ID: "1", Name: "Lego X-Wing", Quantity: 7, Price: 123.45}}

	ok, _ := VerifyItems(expected, actual)
	assert.True(t, ok)
}
