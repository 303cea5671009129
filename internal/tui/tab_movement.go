package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/xercost/internal/cli"
	"github.com/theirongolddev/xercost/internal/export"
	"github.com/theirongolddev/xercost/internal/model"
	"github.com/theirongolddev/xercost/internal/pipeline"
	"github.com/theirongolddev/xercost/internal/tui/components"
	"github.com/theirongolddev/xercost/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var changeTypes = []string{"", model.ChangeAdded, model.ChangeRemoved, pipeline.FilterModified}

// movementState holds the comparison options and detail cursor.
type movementState struct {
	method     string
	changeType string
	cursor     int
}

func (a *App) updateMovementKey(key string) (bool, tea.Cmd) {
	switch key {
	case "m":
		if a.moveState.method == pipeline.MatchByID {
			a.moveState.method = pipeline.MatchByName
		} else {
			a.moveState.method = pipeline.MatchByID
		}
		return true, a.reloadMovement()
	case "c":
		next := 0
		for i, ct := range changeTypes {
			if ct == a.moveState.changeType {
				next = (i + 1) % len(changeTypes)
			}
		}
		a.moveState.changeType = changeTypes[next]
		a.moveState.cursor = 0
		return true, a.reloadMovement()
	case "j", "down":
		if a.movement != nil && a.moveState.cursor < len(a.movement.Details)-1 {
			a.moveState.cursor++
		}
		return true, nil
	case "k", "up":
		if a.moveState.cursor > 0 {
			a.moveState.cursor--
		}
		return true, nil
	}
	return false, nil
}

func (a App) renderMovementTab(cw, h int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if a.uploadIdx <= 0 {
		return components.ContentCard("Movement",
			mutedStyle.Render("Select a later upload (u) to compare it with the one before it"), cw)
	}
	if a.movement == nil {
		return components.ContentCard("Movement", mutedStyle.Render("Comparing…"), cw)
	}
	m := a.movement
	s := m.Summary

	changeColor := t.TextDim
	switch {
	case s.TotalCostChange > 0:
		changeColor = t.Red
	case s.TotalCostChange < 0:
		changeColor = t.Green
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Total Changes", Value: cli.FormatNumber(int64(s.TotalChanges))},
		{Label: "Added Tasks", Value: cli.FormatNumber(int64(s.AddedTasks))},
		{Label: "Removed Tasks", Value: cli.FormatNumber(int64(s.RemovedTasks))},
		{Label: "Cost Changes", Value: cli.FormatNumber(int64(s.CostChanges)),
			Delta: cli.FormatDelta(s.TotalCostChange, 0, a.cfg.General.Currency), DeltaColor: changeColor},
	}, cw))
	b.WriteString("\n")

	innerW := components.CardInnerWidth(cw)
	const kindW, moneyW = 9, 14
	nameW := max(innerW-kindW-2*(moneyW+1)-2, 16)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-*s %*s %*s",
		kindW, "Change", nameW, "Task", moneyW, "Old Total", moneyW, "New Total")))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")

	if len(m.Details) == 0 {
		body.WriteString(mutedStyle.Render("No changes"))
	}

	visible := max(h-lipgloss.Height(b.String())-8, 3)
	offset := max(0, a.moveState.cursor-visible+1)
	for i := offset; i < len(m.Details) && i < offset+visible; i++ {
		d := m.Details[i]
		line := fmt.Sprintf("%-*s %-*s %*s %*s",
			kindW, export.ChangeLabel(d.Kind()),
			nameW, truncStr(d.TaskID+" "+d.TaskName, nameW),
			moneyW, a.costTotal(d.OldValues),
			moneyW, a.costTotal(d.NewValues))
		if i == a.moveState.cursor {
			body.WriteString(selStyle.Render(line))
		} else {
			body.WriteString(rowStyle.Render(line))
		}
		body.WriteString("\n")
	}

	filter := a.moveState.changeType
	if filter == "" {
		filter = "all"
	}
	body.WriteString(mutedStyle.Render(fmt.Sprintf("[m] match by %s  [c] show %s", a.moveState.method, filter)))

	prev := a.uploads[a.uploadIdx-1]
	title := fmt.Sprintf("%s → %s", prev.FileName, a.uploads[a.uploadIdx].FileName)
	b.WriteString(components.ContentCard(title, body.String(), cw))
	return b.String()
}

func (a App) costTotal(v *model.ChangeValues) string {
	if v == nil {
		return "-"
	}
	return a.money(v.Cost.Total())
}
