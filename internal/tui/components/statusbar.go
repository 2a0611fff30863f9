package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/emicalc/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar: key hints on the left and
// a short message on the right.
func RenderStatusBar(width int, hints, message string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width)

	left := " " + hints
	right := message
	if right != "" {
		right += " "
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	bar := left
	for i := 0; i < padding; i++ {
		bar += " "
	}
	bar += right

	return style.Render(bar)
}
