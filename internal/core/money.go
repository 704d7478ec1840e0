// Package core provides the transaction model, amount parsing, period
// filtering and aggregation shared by every backend.
//
// This file contains the amount parser. Amounts use '.' as the only decimal
// separator; ',' is always a grouping separator.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// currencyPrefixes are stripped before parsing, longest first.
var currencyPrefixes = []string{"rp.", "rp", "idr"}

// ParseAmount converts free-form amount text into a non-negative decimal.
//
// A leading currency unit ("Rp.", "Rp", "IDR") and grouping commas or spaces
// are removed first. What remains must be digits with at most one '.'.
//
// Examples:
//
//	ParseAmount("150000")       -> 150000, nil
//	ParseAmount("Rp. 150,000")  -> 150000, nil
//	ParseAmount("12.5")         -> 12.5, nil
//	ParseAmount("12a.000")      -> ErrInvalidAmount
//	ParseAmount("1.2.3")        -> ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, p := range currencyPrefixes {
		if strings.HasPrefix(lower, p) {
			s = s[len(p):]
			break
		}
	}
	s = strings.NewReplacer(",", "", " ", "").Replace(s)
	if s == "" || s == "." {
		return decimal.Zero, ErrInvalidAmount
	}

	dots := 0
	for _, r := range s {
		switch {
		case r == '.':
			dots++
			if dots > 1 {
				return decimal.Zero, ErrInvalidAmount
			}
		case r < '0' || r > '9':
			return decimal.Zero, ErrInvalidAmount
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// SanitizeAmount keeps only digits and '.' so the input field can be
// corrected while the user types. It does not validate.
func SanitizeAmount(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)
}

// FormatAmount returns the machine form of an amount, which ParseAmount reads
// back to the same value.
func FormatAmount(d decimal.Decimal) string {
	return d.String()
}
