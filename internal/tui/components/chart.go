package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/xercost/internal/forecast"
	"github.com/theirongolddev/xercost/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a unicode sparkline from values. Negative values plot as zero.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(math.Max(v, 0) / peak * float64(len(blocks)-1))
		buf.WriteRune(blocks[min(idx, len(blocks)-1)])
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// ChartSeries is one line of a LineChart.
type ChartSeries struct {
	Name   string
	Values []float64
	Color  lipgloss.Color
	Marker rune
}

// LineChart plots series over shared x labels on a character grid scaled to
// [0, axisMax]. Later series draw over earlier ones. The selected column is
// highlighted; pass -1 for none.
func LineChart(series []ChartSeries, labels []string, axisMax float64, selected, width, height int) string {
	n := len(labels)
	if n == 0 || height < 3 {
		return ""
	}
	if axisMax <= 0 {
		axisMax = 1
	}
	t := theme.Active

	step := forecast.TickStep(axisMax)
	yLabelW := max(len(formatChartLabel(axisMax))+1, 4)
	plotW := max(width-yLabelW-1, n)

	type cell struct {
		r     rune
		color lipgloss.Color
	}
	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, plotW)
	}

	col := func(i int) int {
		if n == 1 {
			return plotW / 2
		}
		return i * (plotW - 1) / (n - 1)
	}
	row := func(v float64) int {
		v = forecast.Clamp(v, 0, axisMax)
		return int(math.Round(v / axisMax * float64(height-1)))
	}

	for _, s := range series {
		for i := 0; i+1 < len(s.Values) && i+1 < n; i++ {
			x0, x1 := col(i), col(i+1)
			for x := x0 + 1; x < x1; x++ {
				frac := float64(x-x0) / float64(x1-x0)
				v := s.Values[i] + frac*(s.Values[i+1]-s.Values[i])
				grid[row(v)][x] = cell{'·', s.Color}
			}
		}
		for i, v := range s.Values {
			if i >= n {
				break
			}
			grid[row(v)][col(i)] = cell{s.Marker, s.Color}
		}
	}

	tickLabels := make(map[int]string)
	for v := step; v <= axisMax+step/2; v += step {
		tickLabels[row(v)] = formatChartLabel(v)
	}

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	styles := make(map[lipgloss.Color]lipgloss.Style)
	styleFor := func(c lipgloss.Color, highlight bool) lipgloss.Style {
		bg := t.Surface
		if highlight {
			bg = t.SurfaceBright
		}
		key := c + "|" + bg
		st, ok := styles[key]
		if !ok {
			st = lipgloss.NewStyle().Foreground(c).Background(bg)
			styles[key] = st
		}
		return st
	}

	selCol := -1
	if selected >= 0 && selected < n {
		selCol = col(selected)
	}

	var b strings.Builder
	for r := height - 1; r >= 0; r-- {
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, tickLabels[r])))
		b.WriteString(axisStyle.Render("┤"))
		for x, c := range grid[r] {
			ch := c.r
			if ch == 0 {
				ch = ' '
			}
			b.WriteString(styleFor(c.color, x == selCol).Render(string(ch)))
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", plotW)))
	b.WriteString("\n")
	b.WriteString(axisStyle.Render(strings.Repeat(" ", yLabelW+1)))
	b.WriteString(axisStyle.Render(xLabels(labels, col, plotW)))
	b.WriteString("\n")
	b.WriteString(legend(series))
	return b.String()
}

// xLabels places labels under their columns, skipping any that would overlap.
func xLabels(labels []string, col func(int) int, plotW int) string {
	buf := []rune(strings.Repeat(" ", plotW))
	lastEnd := -1
	for i, lbl := range labels {
		pos := col(i) - len(lbl)/2
		pos = max(0, min(pos, plotW-len(lbl)))
		if pos <= lastEnd || pos < 0 {
			continue
		}
		copy(buf[pos:], []rune(lbl))
		lastEnd = pos + len(lbl)
	}
	return strings.TrimRight(string(buf), " ")
}

func legend(series []ChartSeries) string {
	t := theme.Active
	nameStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	parts := make([]string, len(series))
	for i, s := range series {
		marker := lipgloss.NewStyle().Foreground(s.Color).Background(t.Surface).Render(string(s.Marker))
		parts[i] = marker + nameStyle.Render(" "+s.Name)
	}
	return strings.Join(parts, nameStyle.Render("   "))
}

func formatChartLabel(v float64) string {
	switch {
	case v >= 1e9:
		return trimZero(v/1e9) + "B"
	case v >= 1e6:
		return trimZero(v/1e6) + "M"
	case v >= 1e3:
		return trimZero(v/1e3) + "k"
	case v >= 1:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func trimZero(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
