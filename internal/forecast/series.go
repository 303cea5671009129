// Package forecast builds the cumulative cost series behind the forecast chart
// and applies interactive what-if edits to it.
package forecast

import (
	"errors"
	"math"
	"strconv"

	"github.com/theirongolddev/xercost/internal/model"
)

// Edit rejection reasons.
var (
	ErrOutOfRange     = errors.New("forecast: edit index out of range")
	ErrNegativeActual = errors.New("forecast: edit would make the period actual cost negative")
	ErrInvalidValue   = errors.New("forecast: proposed value is not a number")
)

// ExportHeader is the header row of ToExportRows.
var ExportHeader = []string{"Period", "Actual Cost", "Target Cost", "Cumulative Actual", "Cumulative Target"}

// BuildCumulativeSeries computes running totals of both cost tracks.
// The output has one point per record, in input order. No rounding is applied.
func BuildCumulativeSeries(records []model.CostPeriodRecord) []model.CumulativeCostPoint {
	series := make([]model.CumulativeCostPoint, len(records))
	var cumActual, cumTarget float64
	for i, r := range records {
		cumActual += r.ActualCost
		cumTarget += r.TargetCost
		series[i] = model.CumulativeCostPoint{
			Period:           r.Period,
			ActualCost:       r.ActualCost,
			TargetCost:       r.TargetCost,
			CumulativeActual: cumActual,
			CumulativeTarget: cumTarget,
		}
	}
	return series
}

// DragEdit is a validated edit of one cumulative actual point.
type DragEdit struct {
	Index     int
	Value     float64 // clamped cumulative actual at Index
	Diff      float64 // Value minus the previous cumulative actual
	NewActual float64 // per-period actual at Index after the edit
}

// PlanDragEdit clamps proposedValue to [0, axisMax] and checks that the edit
// keeps the period actual cost non-negative. The series is not modified.
func PlanDragEdit(series []model.CumulativeCostPoint, index int, proposedValue, axisMax float64) (DragEdit, error) {
	if index < 0 || index >= len(series) {
		return DragEdit{}, ErrOutOfRange
	}
	if math.IsNaN(proposedValue) {
		return DragEdit{}, ErrInvalidValue
	}

	value := Clamp(proposedValue, 0, axisMax)
	p := series[index]
	diff := value - p.CumulativeActual
	newActual := p.ActualCost + diff
	if newActual < 0 {
		return DragEdit{}, ErrNegativeActual
	}
	return DragEdit{Index: index, Value: value, Diff: diff, NewActual: newActual}, nil
}

// Apply returns a copy of series with the edit committed. Later periods keep
// their per-period actual cost; only their running totals shift by Diff.
func (e DragEdit) Apply(series []model.CumulativeCostPoint) []model.CumulativeCostPoint {
	out := make([]model.CumulativeCostPoint, len(series))
	copy(out, series)

	out[e.Index].ActualCost = e.NewActual
	out[e.Index].CumulativeActual = e.Value
	for j := e.Index + 1; j < len(out); j++ {
		out[j].CumulativeActual += e.Diff
	}
	return out
}

// ApplyDragEdit moves the cumulative actual at index to proposedValue.
// A rejected edit returns the original series and false.
func ApplyDragEdit(series []model.CumulativeCostPoint, index int, proposedValue, axisMax float64) ([]model.CumulativeCostPoint, bool) {
	edit, err := PlanDragEdit(series, index, proposedValue, axisMax)
	if err != nil {
		return series, false
	}
	return edit.Apply(series), true
}

// ToExportRows flattens the series into a header row and one row per period.
func ToExportRows(series []model.CumulativeCostPoint) [][]string {
	rows := make([][]string, 0, len(series)+1)
	rows = append(rows, append([]string(nil), ExportHeader...))
	for _, p := range series {
		rows = append(rows, []string{
			p.Period,
			formatFloat(p.ActualCost),
			formatFloat(p.TargetCost),
			formatFloat(p.CumulativeActual),
			formatFloat(p.CumulativeTarget),
		})
	}
	return rows
}

// Clamp limits v to [lo, hi]. A hi below lo, or NaN, collapses the range
// to lo.
func Clamp(v, lo, hi float64) float64 {
	if hi < lo || math.IsNaN(hi) {
		hi = lo
	}
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
