package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/xercost/internal/cli"
	"github.com/theirongolddev/xercost/internal/model"
	"github.com/theirongolddev/xercost/internal/pipeline"
	"github.com/theirongolddev/xercost/internal/tui/components"
	"github.com/theirongolddev/xercost/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// tasksState holds the task list cursor and search box.
type tasksState struct {
	cursor    int
	offset    int
	searching bool
	input     textinput.Model
	query     string
}

func newTasksState() tasksState {
	ti := textinput.New()
	ti.Placeholder = "task name"
	ti.Prompt = "/ "
	ti.CharLimit = 100
	ti.Width = 40
	return tasksState{input: ti}
}

func (s *tasksState) clamp(n int) {
	s.cursor = max(0, min(s.cursor, n-1))
	s.offset = min(s.offset, s.cursor)
}

func (s *tasksState) move(delta, n int) {
	s.cursor += delta
	s.clamp(n)
}

// visibleTasks applies the search query, or the top-N cut without one.
func (a App) visibleTasks() []model.TaskCost {
	return pipeline.TopTasks(a.tasks, a.taskState.query, a.cfg.Dashboard.TopN)
}

func (a *App) updateTasksKey(key string) (bool, tea.Cmd) {
	n := len(a.visibleTasks())
	switch key {
	case "/":
		a.taskState.searching = true
		a.taskState.input.SetValue(a.taskState.query)
		a.taskState.input.Focus()
		return true, textinput.Blink
	case "esc":
		if a.taskState.query == "" {
			return false, nil
		}
		a.taskState.query = ""
		a.taskState.cursor, a.taskState.offset = 0, 0
	case "j", "down":
		a.taskState.move(1, n)
	case "k", "up":
		a.taskState.move(-1, n)
	case "g":
		a.taskState.cursor, a.taskState.offset = 0, 0
	case "G":
		a.taskState.move(n, n)
	default:
		return false, nil
	}
	return true, nil
}

// updateTaskSearch handles keys while the search box has focus.
func (a App) updateTaskSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.taskState.query = strings.TrimSpace(a.taskState.input.Value())
		a.taskState.searching = false
		a.taskState.input.Blur()
		a.taskState.cursor, a.taskState.offset = 0, 0
		return a, nil
	case "esc":
		a.taskState.searching = false
		a.taskState.input.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.taskState.input, cmd = a.taskState.input.Update(msg)
	return a, cmd
}

func (a App) renderTasksTab(cw, h int) string {
	t := theme.Active
	tasks := a.visibleTasks()
	totals := pipeline.SumTaskCosts(tasks)

	innerW := components.CardInnerWidth(cw)
	const moneyW = 14
	nameW := max(innerW-3*(moneyW+1)-9, 16)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var body strings.Builder
	if a.taskState.searching {
		body.WriteString(a.taskState.input.View())
		body.WriteString("\n")
	} else if a.taskState.query != "" {
		body.WriteString(mutedStyle.Render(fmt.Sprintf("search: %q  [esc] clear", a.taskState.query)))
		body.WriteString("\n")
	}

	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %*s %*s %*s %8s",
		nameW, "Task", moneyW, "Actual", moneyW, "Target", moneyW, "Remaining", "Spent")))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")

	if len(tasks) == 0 {
		body.WriteString(mutedStyle.Render("No matching tasks"))
		return components.ContentCard(pipeline.TaskTitle(a.taskState.query, a.cfg.Dashboard.TopN), body.String(), cw)
	}

	visible := max(h-10, 3)
	ts := a.taskState
	offset := ts.offset
	if ts.cursor < offset {
		offset = ts.cursor
	}
	if ts.cursor >= offset+visible {
		offset = ts.cursor - visible + 1
	}

	for i := offset; i < len(tasks) && i < offset+visible; i++ {
		tc := tasks[i]
		line := fmt.Sprintf("%-*s %*s %*s %*s %8s",
			nameW, truncStr(tc.TaskName, nameW),
			moneyW, a.money(tc.ActualCost),
			moneyW, a.money(tc.TargetCost),
			moneyW, a.money(tc.RemainCost),
			cli.FormatVariance(tc.ActualCost, tc.TargetCost))
		if i == ts.cursor {
			body.WriteString(selStyle.Render(line))
		} else {
			body.WriteString(rowStyle.Render(line))
		}
		body.WriteString("\n")
	}

	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %*s %*s %*s",
		nameW, fmt.Sprintf("Total (%d)", len(tasks)),
		moneyW, a.money(totals.Actual),
		moneyW, a.money(totals.Target),
		moneyW, a.money(totals.Remain))))

	return components.ContentCard(pipeline.TaskTitle(a.taskState.query, a.cfg.Dashboard.TopN), body.String(), cw)
}
