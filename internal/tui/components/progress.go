package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/emicalc/internal/model"
	"github.com/theirongolddev/emicalc/internal/tui/theme"
)

// ColorForStatus maps an affordability band to a theme color.
func ColorForStatus(s model.AffordabilityStatus) lipgloss.Color {
	t := theme.Active
	switch s {
	case model.AffordabilityExcellent:
		return t.Green
	case model.AffordabilityGood:
		return t.Accent
	case model.AffordabilityStretched:
		return t.Yellow
	case model.AffordabilityRisky:
		return t.Red
	default:
		return t.TextDim
	}
}

// ShareBar renders the principal/interest split of the total payment as a
// solid two-color bar followed by the principal percentage.
func ShareBar(principalPct float64, width int) string {
	t := theme.Active

	pct := clampUnit(principalPct / 100)
	bar := progress.New(
		progress.WithSolidFill(string(t.Principal)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.Empty = bar.Full
	bar.EmptyColor = string(t.Interest)

	principalStyle := lipgloss.NewStyle().Foreground(t.Principal).Bold(true)
	interestStyle := lipgloss.NewStyle().Foreground(t.Interest).Bold(true)

	return bar.ViewAs(pct) + "\n" +
		principalStyle.Render(fmt.Sprintf("principal %.1f%%", principalPct)) + "  " +
		interestStyle.Render(fmt.Sprintf("interest %.1f%%", 100-principalPct))
}

// RatioGauge renders the EMI-to-income ratio as a bar colored by its band.
// The bar spans 0-100% of income.
func RatioGauge(ratio float64, status model.AffordabilityStatus, width int) string {
	t := theme.Active

	if status == model.AffordabilityUnknown {
		return lipgloss.NewStyle().Foreground(t.TextDim).Render("set a monthly income to check affordability")
	}

	color := ColorForStatus(status)
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	label := lipgloss.NewStyle().Foreground(color).Bold(true).
		Render(fmt.Sprintf("%.1f%% of income  %s", ratio, status))
	return bar.ViewAs(clampUnit(ratio/100)) + "\n" + label
}

func clampUnit(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
