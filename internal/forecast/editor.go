package forecast

import "github.com/theirongolddev/xercost/internal/model"

// Editor owns the series shown on a forecast chart. It is the only place the
// series changes after a load, so the chart and the export always agree.
// Edits are local and never written back.
type Editor struct {
	series []model.CumulativeCostPoint
	edits  int
}

// NewEditor builds the cumulative series for records.
func NewEditor(records []model.CostPeriodRecord) *Editor {
	return &Editor{series: BuildCumulativeSeries(records)}
}

// Reset discards all edits and rebuilds from records.
func (e *Editor) Reset(records []model.CostPeriodRecord) {
	e.series = BuildCumulativeSeries(records)
	e.edits = 0
}

// Series returns a copy of the current series.
func (e *Editor) Series() []model.CumulativeCostPoint {
	out := make([]model.CumulativeCostPoint, len(e.series))
	copy(out, e.series)
	return out
}

// Len is the number of periods.
func (e *Editor) Len() int { return len(e.series) }

// Point returns the point at index.
func (e *Editor) Point(index int) (model.CumulativeCostPoint, bool) {
	if index < 0 || index >= len(e.series) {
		return model.CumulativeCostPoint{}, false
	}
	return e.series[index], true
}

// AxisMax is the current upper display bound.
func (e *Editor) AxisMax() float64 { return AxisMax(e.series) }

// Edits counts accepted edits since the last Reset.
func (e *Editor) Edits() int { return e.edits }

// Drag handles one pointer-move: it forwards (index, proposed, AxisMax) to
// PlanDragEdit and commits the result when accepted.
func (e *Editor) Drag(index int, proposed float64) (DragEdit, error) {
	edit, err := PlanDragEdit(e.series, index, proposed, e.AxisMax())
	if err != nil {
		return DragEdit{}, err
	}
	e.series = edit.Apply(e.series)
	e.edits++
	return edit, nil
}

// Nudge moves the cumulative actual at index by delta.
func (e *Editor) Nudge(index int, delta float64) (DragEdit, error) {
	p, ok := e.Point(index)
	if !ok {
		return DragEdit{}, ErrOutOfRange
	}
	return e.Drag(index, p.CumulativeActual+delta)
}
