package components

import (
	"strings"

	"github.com/theirongolddev/xercost/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab is one entry of the tab bar.
type Tab struct {
	Name string
	Key  rune
}

// Tabs lists the dashboard tabs in display order.
var Tabs = []Tab{
	{Name: "Forecast", Key: '1'},
	{Name: "Tasks", Key: '2'},
	{Name: "Resources", Key: '3'},
	{Name: "Movement", Key: '4'},
	{Name: "Settings", Key: '5'},
}

func tabLabel(tab Tab) string {
	return string(tab.Key) + " " + tab.Name
}

func tabStyle(active bool) lipgloss.Style {
	t := theme.Active
	if active {
		return lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright).Bold(true).Padding(0, 1)
	}
	return lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Padding(0, 1)
}

// TabVisualWidth is the rendered width of tab. Mouse hit-testing relies on it.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(tabStyle(active).Render(tabLabel(tab)))
}

// RenderTabBar renders one row of tabs separated by a single column.
func RenderTabBar(activeIdx, width int) string {
	t := theme.Active
	sep := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface).Render("│")

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		parts[i] = tabStyle(i == activeIdx).Render(tabLabel(tab))
	}
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(strings.Join(parts, sep))
}

// TabIdxByKey returns the tab index for a key press, or -1.
func TabIdxByKey(key string) int {
	for i, tab := range Tabs {
		if key == string(tab.Key) {
			return i
		}
	}
	return -1
}
