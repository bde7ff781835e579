// Package core provides the ledger domain types and money handling.
//
// This file contains parsing of user supplied amounts and the two display
// formats used by the views: whole-yen thousands grouping for totals and
// two-decimal grouping for individual rows.
package core

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of fractional digits kept for every amount.
const AmountPlaces = 2

// Exponent bounds for parsed amounts. Rounding and comparison rescale through
// big.Int, so exponents outside this range are rejected before either runs.
const (
	maxAmountExponent = 8
	minAmountExponent = -(AmountPlaces + 10)
)

// MaxAmount is the largest amount a single transaction may carry (NUMERIC(10,2)).
var MaxAmount = decimal.RequireFromString("99999999.99")

// ParseAmount converts a decimal string into an amount rounded to two places.
//
// The value must be strictly positive after rounding, so "0", "-5" and
// "0.001" are all rejected along with anything that is not a number.
//
// Examples:
//
//	ParseAmount("3000")    -> 3000.00, nil
//	ParseAmount("1200.50") -> 1200.50, nil
//	ParseAmount("1.005")   -> 1.01, nil (half away from zero)
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if exp := d.Exponent(); exp > maxAmountExponent || exp < minAmountExponent {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(AmountPlaces)
	if !d.IsPositive() || d.GreaterThan(MaxAmount) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ToMinorUnits returns the amount in hundredths, the unit used by the store.
func ToMinorUnits(d decimal.Decimal) int64 {
	return d.Shift(AmountPlaces).Round(0).IntPart()
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(units int64) decimal.Decimal {
	return decimal.New(units, -AmountPlaces)
}

// FormatDisplay renders a total as a thousands-grouped integer, e.g. "51,800".
func FormatDisplay(d decimal.Decimal) string {
	return humanize.Comma(d.Round(0).IntPart())
}

// FormatAmount renders an amount with grouping and two decimals, e.g. "1,200.50".
func FormatAmount(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(AmountPlaces)
	dot := strings.IndexByte(fixed, '.')
	whole, err := strconv.ParseInt(fixed[:dot], 10, 64)
	if err != nil {
		return d.StringFixed(AmountPlaces)
	}
	out := humanize.Comma(whole) + fixed[dot:]
	if d.IsNegative() {
		return "-" + out
	}
	return out
}
