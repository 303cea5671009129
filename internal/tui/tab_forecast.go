package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/xercost/internal/cli"
	"github.com/theirongolddev/xercost/internal/forecast"
	"github.com/theirongolddev/xercost/internal/model"
	"github.com/theirongolddev/xercost/internal/tui/components"
	"github.com/theirongolddev/xercost/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// updateForecastKey handles period selection and what-if edits.
func (a *App) updateForecastKey(key string) bool {
	n := a.editor.Len()
	switch key {
	case "left", "h":
		if a.selected > 0 {
			a.selected--
		}
	case "right", "l":
		if a.selected < n-1 {
			a.selected++
		}
	case "up", "k", "+", "=":
		a.nudge(1)
	case "down", "j", "-":
		a.nudge(-1)
	case "r":
		a.editor.Reset(a.records)
		a.editErr = nil
	default:
		return false
	}
	return true
}

// nudge moves the selected cumulative actual by one tick step in dir.
func (a *App) nudge(dir float64) {
	if a.editor.Len() == 0 {
		return
	}
	step := forecast.TickStep(a.editor.AxisMax())
	_, err := a.editor.Nudge(a.selected, dir*step)
	a.editErr = err
}

func (a App) forecastSeries() []components.ChartSeries {
	t := theme.Active
	series := a.editor.Series()
	actual := make([]float64, len(series))
	target := make([]float64, len(series))
	cumActual := make([]float64, len(series))
	cumTarget := make([]float64, len(series))
	for i, p := range series {
		actual[i] = p.ActualCost
		target[i] = p.TargetCost
		cumActual[i] = p.CumulativeActual
		cumTarget[i] = p.CumulativeTarget
	}
	return []components.ChartSeries{
		{Name: "Actual", Values: actual, Color: t.Actual, Marker: '○'},
		{Name: "Target", Values: target, Color: t.Target, Marker: '△'},
		{Name: "Cumulative Target", Values: cumTarget, Color: t.CumulativeTarget, Marker: '◆'},
		{Name: "Cumulative Actual", Values: cumActual, Color: t.CumulativeActual, Marker: '●'},
	}
}

func (a App) renderForecastTab(cw, h int) string {
	t := theme.Active
	o := a.overall

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Actual Cost", Value: a.money(o.TotalActual), Delta: cli.FormatVariance(o.TotalActual, o.TotalTarget) + " of target",
			DeltaColor: spendColor(o.TotalActual, o.TotalTarget)},
		{Label: "Target Cost", Value: a.money(o.TotalTarget)},
		{Label: "Remaining Cost", Value: a.money(o.TotalRemain)},
		{Label: "At Completion", Value: a.money(o.TotalActual + o.TotalRemain),
			Delta: cli.FormatDelta(o.TotalActual+o.TotalRemain, o.TotalTarget, a.cfg.General.Currency) + " vs target"},
	}, cw))
	b.WriteString("\n")

	series := a.editor.Series()
	if len(series) == 0 {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		b.WriteString(components.ContentCard("Cost Forecast", muted.Render("No cost data for this selection"), cw))
		return b.String()
	}

	labels := make([]string, len(series))
	for i, p := range series {
		labels[i] = p.Period
	}
	chartH := max(h-lipgloss.Height(b.String())-9, 6)
	chart := components.LineChart(a.forecastSeries(), labels, a.editor.AxisMax(), a.selected,
		components.CardInnerWidth(cw), chartH)

	title := fmt.Sprintf("Cost Forecast (%s)", a.period)
	if a.editor.Edits() > 0 {
		title += "  what-if"
	}
	b.WriteString(components.ContentCard(title, chart, cw))
	b.WriteString("\n")
	b.WriteString(a.renderSelectedPoint(series, cw))
	return b.String()
}

func (a App) renderSelectedPoint(series []model.CumulativeCostPoint, cw int) string {
	t := theme.Active
	if a.selected < 0 || a.selected >= len(series) {
		return ""
	}
	p := series[a.selected]

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render("  ")

	field := func(label string, v float64) string {
		return labelStyle.Render(label+" ") + valueStyle.Render(a.money(v))
	}

	var body strings.Builder
	body.WriteString(field("Actual", p.ActualCost) + space +
		field("Target", p.TargetCost) + space +
		field("Cum. Actual", p.CumulativeActual) + space +
		field("Cum. Target", p.CumulativeTarget))
	body.WriteString("\n")

	innerW := components.CardInnerWidth(cw)
	body.WriteString(components.SpendBar("Spend to date", p.CumulativeActual, p.CumulativeTarget, 14, max(innerW-22, 10)))
	body.WriteString("\n")

	switch {
	case errors.Is(a.editErr, forecast.ErrNegativeActual):
		body.WriteString(warnStyle.Render("Edit rejected: the period actual cost cannot go below zero"))
	case a.editErr != nil:
		body.WriteString(warnStyle.Render("Edit rejected: " + a.editErr.Error()))
	default:
		body.WriteString(hintStyle.Render("[←/→] period  [↑/↓] move cumulative actual  [r] reset  [p] period type"))
	}

	return components.ContentCard(fmt.Sprintf("Period %s (%d of %d)", p.Period, a.selected+1, len(series)), body.String(), cw)
}

func spendColor(actual, target float64) lipgloss.Color {
	if target <= 0 {
		return theme.Active.TextDim
	}
	return components.ColorForSpend(actual / target)
}
