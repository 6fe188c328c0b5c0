package entities

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Width represents a roll width in hundredths of an inch. Cutting widths
// carry at most two decimal places, so hundredths keep all arithmetic exact
// and the type usable as a map key.
type Width int64

// WidthFromDecimal converts a decimal inch value to a Width
func WidthFromDecimal(d decimal.Decimal) (Width, error) {
	scaled := d.Mul(decimal.NewFromInt(100))
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("width %s has more than two decimal places", d)
	}
	return Width(scaled.IntPart()), nil
}

// ParseWidth parses a decimal inch string like "23.5" into a Width
func ParseWidth(s string) (Width, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid width %q: %w", s, err)
	}
	return WidthFromDecimal(d)
}

// MustWidth parses a width string and panics on failure; intended for
// constants and test fixtures only
func MustWidth(s string) Width {
	w, err := ParseWidth(s)
	if err != nil {
		panic(err)
	}
	return w
}

// WidthFromFloat converts an inch value to a Width, rounding to the
// nearest hundredth
func WidthFromFloat(f float64) Width {
	return Width(math.Round(f * 100))
}

// Decimal returns the width as a decimal inch value
func (w Width) Decimal() decimal.Decimal {
	return decimal.New(int64(w), -2)
}

// Inches returns the width as a float64 inch value
func (w Width) Inches() float64 {
	return float64(w) / 100
}

// String formats the width with two decimal places
func (w Width) String() string {
	return w.Decimal().StringFixed(2)
}
