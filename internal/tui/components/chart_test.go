package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/xercost/internal/tui/theme"
)

func TestLineChart_Shape(t *testing.T) {
	series := []ChartSeries{
		{Name: "Cumulative Actual", Values: []float64{100, 250, 300}, Color: "#DA702C", Marker: '●'},
		{Name: "Cumulative Target", Values: []float64{120, 240, 400}, Color: "#CE5D97", Marker: '◆'},
	}
	out := LineChart(series, []string{"2024-01", "2024-02", "2024-03"}, 500, 1, 60, 8)
	lines := strings.Split(out, "\n")

	// 8 plot rows, the x axis, the labels and the legend.
	if len(lines) != 11 {
		t.Fatalf("lines = %d, want 11", len(lines))
	}
	if !strings.Contains(out, "●") || !strings.Contains(out, "◆") {
		t.Error("markers missing")
	}
	if !strings.Contains(out, "2024-01") || !strings.Contains(out, "2024-03") {
		t.Error("x labels missing")
	}
	if !strings.Contains(out, "Cumulative Target") {
		t.Error("legend missing")
	}
	for i, line := range lines[:9] {
		if w := lipgloss.Width(line); w > 60 {
			t.Errorf("line %d width = %d, want <= 60", i, w)
		}
	}
}

func TestLineChart_TopValueOnTopRow(t *testing.T) {
	series := []ChartSeries{{Name: "A", Values: []float64{0, 500}, Color: "1", Marker: 'x'}}
	lines := strings.Split(LineChart(series, []string{"a", "b"}, 500, -1, 40, 5), "\n")
	if !strings.Contains(lines[0], "x") {
		t.Errorf("top row = %q, want marker", lines[0])
	}
	if !strings.Contains(lines[4], "x") {
		t.Errorf("bottom row = %q, want marker", lines[4])
	}
}

func TestLineChart_Empty(t *testing.T) {
	if got := LineChart(nil, nil, 100, 0, 40, 8); got != "" {
		t.Errorf("LineChart(no labels) = %q, want empty", got)
	}
}

func TestSparkline_NegativeClamped(t *testing.T) {
	out := Sparkline([]float64{-5, 0, 10}, "2")
	if !strings.Contains(out, "▁▁█") {
		t.Errorf("Sparkline = %q", out)
	}
}

func TestColorForSpend(t *testing.T) {
	cases := []struct {
		ratio float64
		want  string
	}{
		{0.2, "Green"},
		{0.75, "Yellow"},
		{0.95, "Orange"},
		{1.2, "Red"},
	}
	for _, tc := range cases {
		got := ColorForSpend(tc.ratio)
		if got != themeColor(tc.want) {
			t.Errorf("ColorForSpend(%v) = %v, want %s", tc.ratio, got, tc.want)
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey("4"); got != 3 {
		t.Errorf("TabIdxByKey(4) = %d, want 3", got)
	}
	if got := TabIdxByKey("z"); got != -1 {
		t.Errorf("TabIdxByKey(z) = %d, want -1", got)
	}
}

func themeColor(name string) lipgloss.Color {
	t := theme.Active
	switch name {
	case "Green":
		return t.Green
	case "Yellow":
		return t.Yellow
	case "Orange":
		return t.Orange
	default:
		return t.Red
	}
}
