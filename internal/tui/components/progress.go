package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/xercost/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders a block bar with a percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	filled := max(0, min(int(pct*float64(width)), width))

	barColor := t.Cyan
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled)) +
		pctStyle.Render(fmt.Sprintf(" %.0f%%", pct*100))
}

// ColorForSpend colors an actual-to-target ratio: green well under target,
// yellow approaching it, orange near it and red over it.
func ColorForSpend(ratio float64) lipgloss.Color {
	t := theme.Active
	switch {
	case ratio > 1:
		return t.Red
	case ratio >= 0.9:
		return t.Orange
	case ratio >= 0.7:
		return t.Yellow
	default:
		return t.Green
	}
}

// SpendBar renders a labeled bar of actual spend against target. Ratios
// above 1 show a full bar with the real percentage.
func SpendBar(label string, actual, target float64, labelW, barW int) string {
	t := theme.Active

	ratio := 0.0
	if target > 0 {
		ratio = actual / target
	}
	color := ColorForSpend(ratio)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barW),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) + space +
		bar.ViewAs(min(ratio, 1)) + space +
		pctStyle.Render(fmt.Sprintf("%4.0f%%", ratio*100))
}
