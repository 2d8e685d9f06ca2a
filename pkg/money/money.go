// Package money converts between decimal amounts on the wire and the int64
// minor units stored on accounts and ledger entries.
package money

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned for amounts that are unparsable, non-positive,
	// or more precise than the currency allows.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidCurrency is returned for currency codes that are not three letters.
	ErrInvalidCurrency = errors.New("invalid currency")
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// zeroDecimalCurrencies have no minor unit.
var zeroDecimalCurrencies = map[string]bool{
	"JPY": true,
	"KRW": true,
	"VND": true,
	"CLP": true,
	"ISK": true,
	"UGX": true,
}

// NormalizeCurrency upper-cases and validates a currency code.
func NormalizeCurrency(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if !currencyPattern.MatchString(c) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return c, nil
}

// Exponent returns the number of minor-unit digits for a currency.
func Exponent(currency string) int32 {
	if zeroDecimalCurrencies[currency] {
		return 0
	}
	return 2
}

// ToMinorUnits parses a decimal amount such as "500.00" into minor units.
func ToMinorUnits(amount, currency string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}

	scaled := d.Shift(Exponent(currency))
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("%w: too many decimal places for %s", ErrInvalidAmount, currency)
	}
	if scaled.GreaterThan(decimal.NewFromInt(1 << 53)) {
		return 0, fmt.Errorf("%w: too large", ErrInvalidAmount)
	}
	return scaled.IntPart(), nil
}

// FromMinorUnits formats minor units as a fixed-point decimal string.
func FromMinorUnits(units int64, currency string) string {
	exp := Exponent(currency)
	return decimal.New(units, -exp).StringFixed(exp)
}
