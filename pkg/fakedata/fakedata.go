// Package fakedata generates throwaway identities for dry-run checkout
// rehearsals. Everything here is synthetic: the card numbers deliberately
// fail Luhn validation so they can never be charged.
package fakedata

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/acheron9x/cartpilot/pkg/checkout"
)

const letters = "abcdefghijklmnopqrstuvwxyz"

var (
	firstNames = []string{
		"Antoine", "Camille", "Elodie", "Hugo", "Julien",
		"Lea", "Mathis", "Nadia", "Olivier", "Sophie",
	}
	lastNames = []string{
		"Bernard", "Dubois", "Fontaine", "Garnier", "Lambert",
		"Marchand", "Perrin", "Renard", "Rousseau", "Vidal",
	}
	streetNames = []string{
		"rue de la Paix", "avenue Victor Hugo", "boulevard Saint-Michel",
		"rue des Lilas", "place de la République", "rue du Commerce",
	}
	cities = []string{
		"Paris", "Lyon", "Marseille", "Toulouse", "Nantes", "Lille",
	}
	postalCodes = []string{
		"75001", "69001", "13001", "31000", "44000", "59000",
	}
	mailDomains = []string{"example.com", "example.org", "example.net"}
)

// Address is a synthetic French shipping address.
type Address struct {
	FirstName  string
	LastName   string
	Street     string
	PostalCode string
	City       string
	Phone      string
}

// String generates a random lowercase string of the given length.
func String(rng *rand.Rand, length int) string {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(letters[rng.Intn(len(letters))])
	}
	return b.String()
}

// Email generates a random address on a reserved example domain.
func Email(rng *rand.Rand) string {
	return fmt.Sprintf("%s.%s@%s",
		String(rng, 6), String(rng, 8), mailDomains[rng.Intn(len(mailDomains))])
}

// Phone generates a random French mobile number.
func Phone(rng *rand.Rand) string {
	var b strings.Builder
	b.WriteString("06")
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&b, "%d", rng.Intn(10))
	}
	return b.String()
}

// NewAddress generates a synthetic French address.
func NewAddress(rng *rand.Rand) Address {
	return Address{
		FirstName:  firstNames[rng.Intn(len(firstNames))],
		LastName:   lastNames[rng.Intn(len(lastNames))],
		Street:     fmt.Sprintf("%d %s", 1+rng.Intn(199), streetNames[rng.Intn(len(streetNames))]),
		PostalCode: postalCodes[rng.Intn(len(postalCodes))],
		City:       cities[rng.Intn(len(cities))],
		Phone:      Phone(rng),
	}
}

// NewCard generates card details that look plausible but can never clear
// payment. The number starts with a test prefix and its checksum digit is
// forced off the Luhn-valid value.
func NewCard(rng *rand.Rand) checkout.Card {
	digits := make([]int, 16)
	// 4111 is the canonical Visa test prefix.
	digits[0], digits[1], digits[2], digits[3] = 4, 1, 1, 1
	for i := 4; i < 15; i++ {
		digits[i] = rng.Intn(10)
	}
	digits[15] = (luhnCheckDigit(digits[:15]) + 1 + rng.Intn(9)) % 10

	var number strings.Builder
	for _, d := range digits {
		fmt.Fprintf(&number, "%d", d)
	}
	return checkout.Card{
		Holder:       fmt.Sprintf("%s %s", firstNames[rng.Intn(len(firstNames))], lastNames[rng.Intn(len(lastNames))]),
		Number:       number.String(),
		Expiry:       fmt.Sprintf("%02d/%02d", 1+rng.Intn(12), 28+rng.Intn(5)),
		SecurityCode: fmt.Sprintf("%03d", rng.Intn(1000)),
	}
}

// luhnCheckDigit computes the digit that would make the sequence pass the
// Luhn check.
func luhnCheckDigit(digits []int) int {
	sum := 0
	double := true
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return (10 - sum%10) % 10
}
