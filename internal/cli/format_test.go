package cli

import (
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "£0.00"},
		{5, "£5.00"},
		{1234.565, "£1,234.57"},
		{1234567.891, "£1,234,567.89"},
		{-5, "-£5.00"},
		{-0.004, "£0.00"},
		{math.NaN(), "£-"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in, "£"); got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := FormatMoney(1, "$"); got != "$1.00" {
		t.Errorf("currency = %q, want $1.00", got)
	}
	if got := FormatMoney(1, ""); got != "£1.00" {
		t.Errorf("default currency = %q, want £1.00", got)
	}
}

func TestFormatCompactMoney(t *testing.T) {
	tests := map[float64]string{
		12.5:       "£12.50",
		9999:       "£9,999.00",
		12345:      "£12.3K",
		2_500_000:  "£2.5M",
		-2_500_000: "-£2.5M",
	}
	for in, want := range tests {
		if got := FormatCompactMoney(in, "£"); got != want {
			t.Errorf("FormatCompactMoney(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDelta(t *testing.T) {
	if got := FormatDelta(150, 100, "£"); got != "+£50.00" {
		t.Errorf("FormatDelta up = %q", got)
	}
	if got := FormatDelta(100, 150, "£"); got != "-£50.00" {
		t.Errorf("FormatDelta down = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	for in, want := range map[int64]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -1234: "-1,234"} {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatVariance(t *testing.T) {
	if got := FormatVariance(50, 200); got != "25.0%" {
		t.Errorf("FormatVariance = %q, want 25.0%%", got)
	}
	if got := FormatVariance(50, 0); got != "-" {
		t.Errorf("FormatVariance without target = %q, want -", got)
	}
}

func TestRenderTable_SeparatorAndAlignment(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Task", "Actual"},
		Rows: [][]string{
			{"Piling", "£100.00"},
			{"---"},
			{"Total", "£100.00"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// top, header, header rule, row, separator, row, bottom
	if len(lines) != 7 {
		t.Fatalf("lines = %d, want 7:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "Piling") || !strings.Contains(out, "Total") {
		t.Errorf("rows missing:\n%s", out)
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w != lipgloss.Width(lines[0]) {
			t.Errorf("line %d width = %d, want %d (currency cells must align)", i, w, lipgloss.Width(lines[0]))
		}
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 50, 100}); got != "▁▄█" {
		t.Errorf("RenderSparkline = %q, want ▁▄█", got)
	}
	if got := RenderSparkline([]float64{-5, 0}); got != "▁▁" {
		t.Errorf("RenderSparkline negatives = %q", got)
	}
	if RenderSparkline(nil) != "" {
		t.Error("empty sparkline should be empty")
	}
}
