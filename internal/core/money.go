// Package core provides money parsing and handling utilities.
//
// Amounts travel through the domain as shopspring decimals and are persisted
// as integer cents. Conversions in either direction are lossless as long as the
// decimal carries at most two fractional digits, which validation enforces.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const centsExponent = 2

// MaxAmountCents bounds the magnitude of any single amount so that cents
// and sums of many amounts stay well inside int64.
const MaxAmountCents = 1_000_000_000_000_000

var (
	hundred   = decimal.NewFromInt(100)
	maxAmount = decimal.New(MaxAmountCents, -centsExponent)
)

// ParseAmount converts a decimal string to a decimal amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign. More than two fractional digits is an error rather
// than a silent rounding, so that stored cents always match what was sent.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("-12,34") -> -12.34, nil
//	ParseAmount("1.005")  -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !ValidMoney(d) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ValidMoney reports whether d has cent precision and a magnitude of at most
// MaxAmountCents, i.e. whether ToCents converts it exactly.
func ValidMoney(d decimal.Decimal) bool {
	return HasCentPrecision(d) && d.Abs().LessThanOrEqual(maxAmount)
}

// HasCentPrecision reports whether d has at most two fractional digits.
func HasCentPrecision(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(centsExponent))
}

// ToCents converts an amount to integer cents. Callers check ValidMoney first.
func ToCents(d decimal.Decimal) int64 {
	return d.Shift(centsExponent).IntPart()
}

// FromCents converts integer cents to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -centsExponent)
}

// Percentage returns part/whole*100 rounded to two places, or zero when whole
// is zero.
func Percentage(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}
