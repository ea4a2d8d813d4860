package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrencyGTQ formats an amount as Guatemalan Quetzales.
// Example: 1234.5 -> "Q1,234.50"
func FormatCurrencyGTQ(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)

	parts := strings.Split(fixed, ".")
	integerPart := parts[0]
	decimalPart := parts[1]

	// Thousands separator every three digits.
	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	out := "Q" + strings.Join(groups, ",") + "." + decimalPart
	if negative {
		out = "-" + out
	}
	return out
}
