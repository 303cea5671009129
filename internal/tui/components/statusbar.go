package components

import (
	"strconv"
	"strings"

	"github.com/theirongolddev/xercost/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the status bar reports about the current selection.
type StatusInfo struct {
	Selection string
	Loading   bool
	Edits     int
	Err       string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	left := base.Render(" [?]help  [q]uit  ")
	switch {
	case info.Err != "":
		left += warn.Render(info.Err)
	case info.Loading:
		left += accent.Render("loading…")
	case info.Edits > 0:
		left += accent.Render(formatEdits(info.Edits))
	}

	right := base.Render(info.Selection + " ")
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().Background(t.Surface).Width(width).
		Render(left + base.Render(strings.Repeat(" ", gap)) + right)
}

func formatEdits(n int) string {
	if n == 1 {
		return "1 what-if edit"
	}
	return strconv.Itoa(n) + " what-if edits"
}
