package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/theirongolddev/xercost/internal/cli"
	"github.com/theirongolddev/xercost/internal/forecast"
	"github.com/theirongolddev/xercost/internal/model"
)

// Image formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// Chart errors.
var (
	ErrChartClosed = errors.New("export: chart is closed")
	ErrEmptySeries = errors.New("export: no data to chart")
	ErrFormat      = errors.New("export: unsupported image format")
)

// Series colors, keyed by what they plot.
var (
	actualColor     = drawing.ColorFromHex("4C78A8")
	targetColor     = drawing.ColorFromHex("F58518")
	cumActualColor  = drawing.ColorFromHex("54A24B")
	cumTargetColor  = drawing.ColorFromHex("E45756")
	defaultWidth    = 1024
	defaultHeight   = 512
	defaultCurrency = "£"
)

// ChartOptions configures NewChart.
type ChartOptions struct {
	Title    string
	Width    int
	Height   int
	Currency string
}

// Chart owns one rendered chart definition. Callers replacing a chart close
// the old handle before building the next one.
type Chart struct {
	def    *chart.Chart
	points int
	closed bool
}

// NewChart builds the four-series cost chart. The y axis runs from 0, or the
// lowest plotted value when one is negative, to the series' nice ceiling so
// it matches the editor's clamp bound.
func NewChart(series []model.CumulativeCostPoint, opts ChartOptions) (*Chart, error) {
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.Currency == "" {
		opts.Currency = defaultCurrency
	}

	n := len(series)
	xs := make([]float64, n)
	actual := make([]float64, n)
	target := make([]float64, n)
	cumActual := make([]float64, n)
	cumTarget := make([]float64, n)
	ticks := make([]chart.Tick, n)
	for i, p := range series {
		xs[i] = float64(i)
		actual[i] = p.ActualCost
		target[i] = p.TargetCost
		cumActual[i] = p.CumulativeActual
		cumTarget[i] = p.CumulativeTarget
		ticks[i] = chart.Tick{Value: float64(i), Label: p.Period}
	}
	// go-chart cannot draw a zero-width x range.
	if n == 1 {
		xs = append(xs, 1)
		for _, ys := range []*[]float64{&actual, &target, &cumActual, &cumTarget} {
			*ys = append(*ys, (*ys)[0])
		}
	}

	yMax := forecast.AxisMax(series)
	yMin := lowestValue(series)
	currency := opts.Currency
	def := &chart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 28}},
		XAxis: chart.XAxis{
			Name:  "Period",
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: 0, Max: float64(max(n-1, 1))},
		},
		YAxis: chart.YAxis{
			Name:  "Cost",
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return cli.FormatMoney(f, currency)
				}
				return ""
			},
		},
		Series: []chart.Series{
			line("Actual Cost", xs, actual, actualColor, false),
			line("Target Cost", xs, target, targetColor, false),
			line("Cumulative Actual", xs, cumActual, cumActualColor, true),
			line("Cumulative Target", xs, cumTarget, cumTargetColor, true),
		},
	}
	def.Elements = []chart.Renderable{chart.Legend(def)}
	return &Chart{def: def, points: n}, nil
}

func line(name string, xs, ys []float64, col drawing.Color, dashed bool) chart.ContinuousSeries {
	st := chart.Style{StrokeColor: col, StrokeWidth: 2, DotColor: col, DotWidth: 3}
	if dashed {
		st.StrokeDashArray = []float64{6, 4}
	}
	return chart.ContinuousSeries{Name: name, XValues: xs, YValues: ys, Style: st}
}

// Points is the number of periods on the chart.
func (c *Chart) Points() int { return c.points }

// Render draws the chart to w as "png" or "svg".
func (c *Chart) Render(w io.Writer, format string) error {
	if c == nil || c.closed {
		return ErrChartClosed
	}
	var provider chart.RendererProvider
	switch strings.ToLower(format) {
	case "", FormatPNG:
		provider = chart.PNG
	case FormatSVG:
		provider = chart.SVG
	default:
		return fmt.Errorf("%w: %q", ErrFormat, format)
	}
	if err := c.def.Render(provider, w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}

// Close releases the chart definition. Closing twice is a no-op.
func (c *Chart) Close() error {
	if c == nil || c.closed {
		return nil
	}
	c.def = nil
	c.closed = true
	return nil
}

// lowestValue returns the smallest plotted value, or 0 when none is negative.
func lowestValue(series []model.CumulativeCostPoint) float64 {
	lo := 0.0
	for _, p := range series {
		lo = min(lo, p.ActualCost, p.TargetCost, p.CumulativeActual, p.CumulativeTarget)
	}
	return lo
}
