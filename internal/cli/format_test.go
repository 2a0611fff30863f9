package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theirongolddev/emicalc/internal/model"
)

func TestGroupIndian(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{100000, "1,00,000"},
		{7200000, "72,00,000"},
		{12345678, "1,23,45,678"},
		{-250000, "-2,50,000"},
	}
	for _, tt := range tests {
		if got := GroupIndian(tt.in); got != tt.want {
			t.Fatalf("GroupIndian(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatINR(t *testing.T) {
	assert.Equal(t, "₹72,00,000", FormatINR(7_200_000))
	assert.Equal(t, "₹62,483", FormatINR(62_483.27))
	assert.Equal(t, "₹62,484", FormatINR(62_483.5))
	assert.Equal(t, "-₹1,235", FormatINR(-1_234.6))
	assert.Equal(t, "₹0", FormatINR(0))
}

func TestFormatINRPaise(t *testing.T) {
	assert.Equal(t, "₹62,483.27", FormatINRPaise(62_483.2728))
	assert.Equal(t, "₹0.50", FormatINRPaise(0.5))
	assert.Equal(t, "₹1,00,000.00", FormatINRPaise(100_000))
	assert.Equal(t, "-₹10.05", FormatINRPaise(-10.05))
}

func TestFormatCompactINR(t *testing.T) {
	assert.Equal(t, "₹1.50 Cr", FormatCompactINR(15_000_000))
	assert.Equal(t, "₹62.48 L", FormatCompactINR(6_248_327))
	assert.Equal(t, "₹1.00 L", FormatCompactINR(100_000))
	assert.Equal(t, "₹45,000", FormatCompactINR(45_000))
	assert.Equal(t, "-₹2.50 L", FormatCompactINR(-250_000))
}

func TestFormatTenure(t *testing.T) {
	assert.Equal(t, "1 yr (12 EMIs)", FormatTenure(1))
	assert.Equal(t, "20 yrs (240 EMIs)", FormatTenure(20))
}

func TestShareBarSegments(t *testing.T) {
	p, i := ShareBarSegments(48, 50)
	assert.Equal(t, 24, p)
	assert.Equal(t, 26, i)

	p, i = ShareBarSegments(150, 10)
	assert.Equal(t, 10, p)
	assert.Equal(t, 0, i)

	p, i = ShareBarSegments(50, 0)
	assert.Zero(t, p)
	assert.Zero(t, i)
}

func TestRenderTable_AlignsRupeeCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Item", "Amount"},
		Rows: [][]string{
			{"Loan", FormatINR(7_200_000)},
			{"---"},
			{"EMI", FormatINR(62_483)},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 7)
	assert.Contains(t, out, "₹72,00,000")
	assert.Contains(t, out, "   ₹62,483")
}

func TestRenderStatus(t *testing.T) {
	assert.Equal(t, "Stretched", StatusLabel(model.AffordabilityStretched))
	assert.Contains(t, RenderStatus(model.AffordabilityStretched), "Stretched")
	assert.Equal(t, ColorRed, StatusColor(model.AffordabilityRisky))
	assert.Equal(t, ColorTextMuted, StatusColor(model.AffordabilityUnknown))
}

func TestParseINR(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"9000000", 9_000_000},
		{"90,00,000", 9_000_000},
		{"₹72,00,000", 7_200_000},
		{"Rs. 5000", 5_000},
		{"90L", 9_000_000},
		{"62.5 lakh", 6_250_000},
		{"1.2 Cr", 12_000_000},
		{"150k", 150_000},
		{"0", 0},
	}
	for _, tt := range tests {
		got, err := ParseINR(tt.in)
		if err != nil {
			t.Fatalf("ParseINR(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseINR(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "abc", "12..5", "L"} {
		if _, err := ParseINR(bad); err == nil {
			t.Fatalf("ParseINR(%q) error = nil, want error", bad)
		}
	}
}
