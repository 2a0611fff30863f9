// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const rupee = "₹"

var (
	lakh  = decimal.New(1, 5)
	crore = decimal.New(1, 7)
)

// GroupIndian formats the integer part of a number with lakh/crore grouping:
// the last three digits, then pairs.
// e.g., 12345678 -> "1,23,45,678"
func GroupIndian(n int64) string {
	if n < 0 {
		return "-" + GroupIndian(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	head, tail := s[:len(s)-3], s[len(s)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

// FormatINR formats an amount rounded to whole rupees.
// e.g., 7200000 -> "₹72,00,000"
func FormatINR(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(0)
	if d.IsNegative() {
		return "-" + rupee + GroupIndian(d.Neg().IntPart())
	}
	return rupee + GroupIndian(d.IntPart())
}

// FormatINRPaise formats an amount with two decimal places.
// e.g., 62483.2728 -> "₹62,483.27"
func FormatINRPaise(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	frac := d.Sub(whole).Shift(2).IntPart()
	return fmt.Sprintf("%s%s%s.%02d", sign, rupee, GroupIndian(whole.IntPart()), frac)
}

// FormatCompactINR abbreviates large amounts to lakh (L) or crore (Cr).
// e.g., 15000000 -> "₹1.50 Cr", 6248327 -> "₹62.48 L", 45000 -> "₹45,000"
func FormatCompactINR(amount float64) string {
	d := decimal.NewFromFloat(amount)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	switch {
	case d.GreaterThanOrEqual(crore):
		return sign + rupee + d.Div(crore).StringFixed(2) + " Cr"
	case d.GreaterThanOrEqual(lakh):
		return sign + rupee + d.Div(lakh).StringFixed(2) + " L"
	default:
		return sign + FormatINR(d.InexactFloat64())
	}
}

// FormatPercent formats a value already expressed in percent.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatRate formats an interest rate with two decimals.
func FormatRate(pct float64) string {
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatTenure formats a tenure in years and its installment count.
func FormatTenure(years int) string {
	if years == 1 {
		return "1 yr (12 EMIs)"
	}
	return fmt.Sprintf("%d yrs (%d EMIs)", years, years*12)
}

var unitSuffixes = []struct {
	suffix string
	scale  decimal.Decimal
}{
	{"crore", crore},
	{"cr", crore},
	{"lakh", lakh},
	{"lac", lakh},
	{"l", lakh},
	{"k", decimal.New(1, 3)},
}

// ParseINR reads an amount typed by a person: grouping commas, a leading
// rupee sign and a k/L/Cr unit are accepted.
// e.g., "90,00,000" -> 9000000, "1.2 Cr" -> 12000000, "62.5L" -> 6250000
func ParseINR(s string) (float64, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	raw = strings.TrimPrefix(raw, rupee)
	raw = strings.TrimPrefix(raw, "rs.")
	raw = strings.TrimPrefix(raw, "rs")
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("empty amount")
	}

	scale := decimal.New(1, 0)
	for _, u := range unitSuffixes {
		if strings.HasSuffix(raw, u.suffix) {
			raw = strings.TrimSpace(strings.TrimSuffix(raw, u.suffix))
			scale = u.scale
			break
		}
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return d.Mul(scale).InexactFloat64(), nil
}
