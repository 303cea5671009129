package forecast

import (
	"errors"
	"testing"
	"time"

	"github.com/theirongolddev/xercost/internal/model"
)

func TestEditor_DragUsesAxisMax(t *testing.T) {
	e := NewEditor(janFeb())
	// Largest plotted value is 210, so the axis tops out at 250.
	if got := e.AxisMax(); got != 250 {
		t.Fatalf("AxisMax = %v, want 250", got)
	}

	edit, err := e.Drag(0, 10_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if edit.Value != 250 {
		t.Errorf("Value = %v, want 250 (clamped)", edit.Value)
	}
	p, _ := e.Point(1)
	if p.CumulativeActual != 330 {
		t.Errorf("cumulative actual[1] = %v, want 330", p.CumulativeActual)
	}
	if e.Edits() != 1 {
		t.Errorf("Edits = %d, want 1", e.Edits())
	}
}

func TestEditor_RejectedDragKeepsSeries(t *testing.T) {
	e := NewEditor(janFeb())
	before := e.Series()

	_, err := e.Drag(1, 50)
	if !errors.Is(err, ErrNegativeActual) {
		t.Fatalf("err = %v, want ErrNegativeActual", err)
	}
	after := e.Series()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("point %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
	if e.Edits() != 0 {
		t.Errorf("Edits = %d, want 0", e.Edits())
	}
}

func TestEditor_SeriesIsACopy(t *testing.T) {
	e := NewEditor(janFeb())
	s := e.Series()
	s[0].CumulativeActual = -1

	p, _ := e.Point(0)
	if p.CumulativeActual != 100 {
		t.Errorf("editor state changed through returned slice: %v", p.CumulativeActual)
	}
}

func TestEditor_NudgeAndReset(t *testing.T) {
	e := NewEditor(janFeb())

	if _, err := e.Nudge(0, 25); err != nil {
		t.Fatalf("Nudge: %v", err)
	}
	if _, err := e.Nudge(0, 25); err != nil {
		t.Fatalf("Nudge: %v", err)
	}
	p, _ := e.Point(0)
	if p.ActualCost != 150 || p.CumulativeActual != 150 {
		t.Errorf("point 0 = %+v, want actual 150 cumulative 150", p)
	}

	if _, err := e.Nudge(5, 10); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Nudge out of range err = %v", err)
	}

	e.Reset([]model.CostPeriodRecord{{Period: "Mar", ActualCost: 5, TargetCost: 5}})
	if e.Len() != 1 || e.Edits() != 0 {
		t.Errorf("after Reset: len %d edits %d", e.Len(), e.Edits())
	}
}

func TestGuard_DropsStaleResponses(t *testing.T) {
	var g Guard
	k1 := SelectionKey{UploadID: 1, ProjectID: "P1", Period: Monthly}
	k2 := SelectionKey{UploadID: 1, ProjectID: "P1", Period: Quarterly}

	first := g.Begin(k1)
	second := g.Begin(k2)

	if g.Current(first) {
		t.Error("first ticket still current after a newer request")
	}
	if !g.Current(second) {
		t.Error("latest ticket not current")
	}

	// Re-requesting the same key still invalidates the older ticket.
	third := g.Begin(k2)
	if g.Current(second) {
		t.Error("second ticket current after re-request")
	}
	if !g.Current(third) {
		t.Error("third ticket not current")
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want Period
		ok   bool
	}{
		{"monthly", Monthly, true},
		{"Quarterly", Quarterly, true},
		{" yearly ", Yearly, true},
		{"", Monthly, true},
		{"weekly", "", false},
	}
	for _, tt := range tests {
		got, err := ParsePeriod(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParsePeriod(%q) err = %v", tt.in, err)
			continue
		}
		if !tt.ok && !errors.Is(err, ErrInvalidPeriod) {
			t.Errorf("ParsePeriod(%q) err = %v, want ErrInvalidPeriod", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParsePeriod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPeriodLabel(t *testing.T) {
	d := time.Date(2024, time.August, 15, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		p    Period
		want string
	}{
		{Monthly, "2024-08"},
		{Quarterly, "2024-Q3"},
		{Yearly, "2024"},
	}
	for _, tt := range tests {
		if got := tt.p.Label(d); got != tt.want {
			t.Errorf("%s.Label = %q, want %q", tt.p, got, tt.want)
		}
	}
	if got := Quarterly.Label(time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)); got != "2024-Q1" {
		t.Errorf("March quarter = %q, want 2024-Q1", got)
	}
	if got := Yearly.Next(); got != Monthly {
		t.Errorf("Yearly.Next = %q, want monthly", got)
	}
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2024-01-15 08:00", "2024-01-15 08:00:00", "2024-01-15"} {
		if _, ok := ParseDate(s); !ok {
			t.Errorf("ParseDate(%q) failed", s)
		}
	}
	for _, s := range []string{"", "N/A", "15/01/2024"} {
		if _, ok := ParseDate(s); ok {
			t.Errorf("ParseDate(%q) succeeded, want failure", s)
		}
	}
}

func TestNiceCeiling(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 1},
		{210, 250},
		{1000, 1000},
		{1234, 1250},
		{87, 100},
	}
	for _, tt := range tests {
		if got := NiceCeiling(tt.in); got != tt.want {
			t.Errorf("NiceCeiling(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := AxisMax(nil); got != 1 {
		t.Errorf("AxisMax(nil) = %v, want 1", got)
	}
}
