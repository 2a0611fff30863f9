package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/emicalc/internal/cli"
	"github.com/theirongolddev/emicalc/internal/model"
	"github.com/theirongolddev/emicalc/internal/tui/theme"
)

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 4) // UTF-8 block chars are up to 3 bytes
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		buf.WriteRune(blocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Render(buf.String())
}

// SplitSegments divides barWidth between principal and interest for one year.
func SplitSegments(y model.YearSummary, barWidth int) (principal, interest int) {
	if y.Paid <= 0 || barWidth <= 0 {
		return 0, 0
	}
	principal = int(y.Principal/y.Paid*float64(barWidth) + 0.5)
	if principal > barWidth {
		principal = barWidth
	}
	if principal < 0 {
		principal = 0
	}
	return principal, barWidth - principal
}

// YearlySplitChart renders one stacked bar per loan year showing how each
// year's payments divide between principal and interest.
func YearlySplitChart(years []model.YearSummary, width int) string {
	if len(years) == 0 {
		return ""
	}
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	principalStyle := lipgloss.NewStyle().Foreground(t.Principal)
	interestStyle := lipgloss.NewStyle().Foreground(t.Interest)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	barWidth := width - 16
	if barWidth < 10 {
		barWidth = 10
	}

	var b strings.Builder
	for i, y := range years {
		p, in := SplitSegments(y, barWidth)
		b.WriteString(labelStyle.Render(fmt.Sprintf("Y%02d ", y.Year)))
		b.WriteString(principalStyle.Render(strings.Repeat("█", p)))
		b.WriteString(interestStyle.Render(strings.Repeat("█", in)))
		b.WriteString(valueStyle.Render(" " + cli.FormatCompactINR(y.ClosingBalance)))
		if i < len(years)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
