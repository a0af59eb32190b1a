// Package money parses amounts typed by users and formats them for display.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for empty, malformed or non-positive input.
var ErrInvalidAmount = errors.New("invalid amount")

// Symbol is the currency sign users may type in front of an amount.
const Symbol = "R$"

const currencyPrefix = Symbol + " "

var hundred = decimal.NewFromInt(100)

// Parse accepts "12.50", "12,50" and a leading currency symbol, rounding
// half-up to cents. Negative values are rejected; zero is allowed.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, Symbol)
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// A single comma is a decimal separator; with both, the comma groups thousands.
	if strings.Contains(s, ",") && strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.Replace(s, ",", ".", 1)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(2), nil
}

// ParseAmount parses s and requires a strictly positive result.
func ParseAmount(s string) (float64, error) {
	d, err := Parse(s)
	if err != nil {
		return 0, err
	}
	if !d.IsPositive() {
		return 0, ErrInvalidAmount
	}
	return d.InexactFloat64(), nil
}

// ParseOrZero is used for optional fields such as opening balances.
func ParseOrZero(s string) float64 {
	d, err := Parse(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// Format renders the absolute value as "R$ 1234,56".
func Format(v float64) string {
	d := decimal.NewFromFloat(v).Abs().StringFixed(2)
	return currencyPrefix + strings.Replace(d, ".", ",", 1)
}

// FormatSigned keeps a leading minus for negative values.
func FormatSigned(v float64) string {
	if v < 0 {
		return "-" + Format(v)
	}
	return Format(v)
}

// Percent returns part/total·100 rounded to two places; 0 when total is 0.
func Percent(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromFloat(part).
		Mul(hundred).
		Div(decimal.NewFromFloat(total)).
		Round(2).
		InexactFloat64()
}

// Sum adds amounts in decimal to avoid float drift across many rows.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}
