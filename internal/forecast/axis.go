package forecast

import (
	"math"

	"github.com/theirongolddev/xercost/internal/model"
)

// TickStep computes a nice tick interval targeting about five ticks up to maxVal.
func TickStep(maxVal float64) float64 {
	if maxVal <= 0 || math.IsInf(maxVal, 0) || math.IsNaN(maxVal) {
		return 1
	}
	rough := maxVal / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 2.25:
		return 2 * base
	case frac < 3.5:
		return 2.5 * base
	default:
		return 5 * base
	}
}

// NiceCeiling rounds maxVal up to the next multiple of its tick step.
func NiceCeiling(maxVal float64) float64 {
	if maxVal <= 0 || math.IsInf(maxVal, 0) || math.IsNaN(maxVal) {
		return 1
	}
	step := TickStep(maxVal)
	return math.Ceil(maxVal/step) * step
}

// AxisMax is the upper bound of the chart's value axis for series: the nice
// ceiling over every plotted value. Drag edits are clamped to it.
func AxisMax(series []model.CumulativeCostPoint) float64 {
	var peak float64
	for _, p := range series {
		peak = math.Max(peak, p.ActualCost)
		peak = math.Max(peak, p.TargetCost)
		peak = math.Max(peak, p.CumulativeActual)
		peak = math.Max(peak, p.CumulativeTarget)
	}
	return NiceCeiling(peak)
}
