// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency prefixes amounts when no currency is configured.
const DefaultCurrency = "£"

// FormatMoney formats an amount rounded half away from zero to pence, with
// comma separators. e.g., 1234.565 -> "£1,234.57", -5 -> "-£5.00"
func FormatMoney(v float64, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return currency + "-"
	}
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return sign + currency + d.StringFixed(2)
	}
	return sign + currency + FormatNumber(n) + "." + frac
}

// FormatCompactMoney formats an amount with K/M/B suffixes for cards.
// e.g., 1234 -> "£1.2K", 1234567 -> "£1.2M", 12.5 -> "£12.50"
func FormatCompactMoney(v float64, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	abs := math.Abs(v)
	sign := ""
	if v < 0 {
		sign = "-"
	}
	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%s%s%.1fB", sign, currency, abs/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%s%s%.1fM", sign, currency, abs/1_000_000)
	case abs >= 10_000:
		return fmt.Sprintf("%s%s%.1fK", sign, currency, abs/1_000)
	default:
		return FormatMoney(v, currency)
	}
}

// FormatHours formats a duration in hours, dropping a zero fraction.
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64) + "h"
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDelta formats the change from previous to current with a sign.
func FormatDelta(current, previous float64, currency string) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatMoney(delta, currency)
	}
	return FormatMoney(delta, currency)
}

// FormatVariance formats actual spend as a share of target, or "-" without a target.
func FormatVariance(actual, target float64) string {
	if target == 0 {
		return "-"
	}
	return FormatPercent(actual / target)
}
