package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := 0; active < 5; active++ {
		a := App{activeTab: active}
		pos := 0

		for i := 0; i < 5; i++ {
			w := tabWidthForTest(i)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w
			if i < 4 {
				pos++ // separator
			}
		}
		if got := a.tabAtX(pos + 5); got != -1 {
			t.Fatalf("active=%d past last tab -> %d, want -1", active, got)
		}
	}
}

func TestMouseClickSelectsTab(t *testing.T) {
	a := App{loaded: true, taskState: newTasksState()}
	x := tabWidthForTest(0) + 1 + tabWidthForTest(1) + 1 + 2 // inside "3 Resources"

	m, _ := a.Update(tea.MouseMsg{X: x, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if got := m.(App).activeTab; got != tabResources {
		t.Fatalf("activeTab = %d, want %d", got, tabResources)
	}

	m, _ = m.(App).Update(tea.MouseMsg{X: 1, Y: 3, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if got := m.(App).activeTab; got != tabResources {
		t.Fatalf("click below the tab bar changed tab to %d", got)
	}
}

func tabWidthForTest(tabIdx int) int {
	labels := []string{
		"1 Forecast",
		"2 Tasks",
		"3 Resources",
		"4 Movement",
		"5 Settings",
	}
	return len(labels[tabIdx]) + 2 // horizontal padding in tab renderer
}
