package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("240"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)

	statusPlaying = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	statusPaused  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	warnStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	barHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	barMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	barLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// levelBar draws v in [lo, hi] as a filled bar. NaN renders as an empty
// bar marked with '?'.
func levelBar(v, lo, hi float64, width int) string {
	if math.IsNaN(v) {
		return barLow.Render("?" + strings.Repeat("░", width-1))
	}
	frac := (v - lo) / (hi - lo)
	filled := int(frac * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case frac >= 1 || frac <= 0:
		return barLow.Render(bar)
	case frac > 0.8 || frac < 0.2:
		return barMid.Render(bar)
	}
	return barHigh.Render(bar)
}
