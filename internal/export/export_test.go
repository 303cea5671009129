package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/xercost/internal/forecast"
	"github.com/theirongolddev/xercost/internal/model"
)

func sampleSeries() []model.CumulativeCostPoint {
	return forecast.BuildCumulativeSeries([]model.CostPeriodRecord{
		{Period: "2024-01", ActualCost: 100, TargetCost: 120},
		{Period: "2024-02", ActualCost: 80, TargetCost: 90},
	})
}

func readCSV(t *testing.T, data string) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	return rows
}

func TestWriteForecastCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteForecastCSV(&buf, sampleSeries()); err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"Cost Type", "2024-01", "2024-02"},
		{"Actual", "100", "80"},
		{"Target", "120", "90"},
		{"Cumulative Actual", "100", "180"},
		{"Cumulative Target", "120", "210"},
	}
	got := readCSV(t, buf.String())
	if len(got) != len(want) {
		t.Fatalf("rows = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if strings.Join(got[i], ",") != strings.Join(want[i], ",") {
			t.Errorf("row %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWriteForecastCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteForecastCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != NoDataMessage {
		t.Errorf("empty export = %q, want %q", got, NoDataMessage)
	}
}

func TestWriteSeriesCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSeriesCSV(&buf, sampleSeries()); err != nil {
		t.Fatal(err)
	}
	got := readCSV(t, buf.String())
	if len(got) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(got))
	}
	if got[2][3] != "180" || got[2][4] != "210" {
		t.Errorf("last row = %v, want cumulative 180/210", got[2])
	}
}

func TestWriteMovementCSV(t *testing.T) {
	details := []model.Comparison{
		{
			TaskID: "T1", TaskName: "Piling", Project: "P1", Changes: []string{model.ChangeCost},
			OldValues: &model.ChangeValues{Cost: model.CostValues{Actual: 100, Target: 120, Remain: 20}},
			NewValues: &model.ChangeValues{Cost: model.CostValues{Actual: 150.5, Target: 120, Remain: 10}},
		},
		{
			TaskID: "T3", TaskName: "Deck, east", Project: "P1", Changes: []string{model.ChangeAdded},
			NewValues: &model.ChangeValues{Cost: model.CostValues{Target: 90}},
		},
	}
	var buf bytes.Buffer
	if err := WriteMovementCSV(&buf, details); err != nil {
		t.Fatal(err)
	}
	got := readCSV(t, buf.String())
	if len(got) != 3 || len(got[0]) != len(MovementHeader) {
		t.Fatalf("csv = %v", got)
	}
	if got[1][3] != "Modified" || got[1][6] != "50.50" || got[1][12] != "-10.00" {
		t.Errorf("modified row = %v", got[1])
	}
	if got[2][1] != "Deck, east" || got[2][3] != "Added" || got[2][4] != "0" || got[2][9] != "90.00" {
		t.Errorf("added row = %v", got[2])
	}
}

func TestFilenames(t *testing.T) {
	if got := ForecastFilename(forecast.Quarterly, "csv"); got != "cost_forecast_quarterly.csv" {
		t.Errorf("ForecastFilename = %q", got)
	}
	if got := MovementFilename("name"); got != "comparison_data_name.csv" {
		t.Errorf("MovementFilename = %q", got)
	}
}

func TestWriteForecastXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteForecastXLSX(&buf, sampleSeries()); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer func() { _ = f.Close() }()

	if got := f.GetSheetList(); len(got) != 2 || got[0] != ForecastSheet || got[1] != SeriesSheet {
		t.Errorf("sheets = %v", got)
	}
	v, err := f.GetCellValue(ForecastSheet, "C4")
	if err != nil {
		t.Fatal(err)
	}
	if v != "180.00" && v != "180" {
		t.Errorf("Forecast!C4 = %q, want cumulative actual 180", v)
	}
	if v, _ := f.GetCellValue(SeriesSheet, "A3"); v != "2024-02" {
		t.Errorf("Series!A3 = %q, want 2024-02", v)
	}
}

func TestChart_RenderAndClose(t *testing.T) {
	c, err := NewChart(sampleSeries(), ChartOptions{Title: "Forecast"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Points() != 2 {
		t.Errorf("Points = %d, want 2", c.Points())
	}

	var png bytes.Buffer
	if err := c.Render(&png, FormatPNG); err != nil {
		t.Fatalf("Render png: %v", err)
	}
	if !bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")) {
		t.Error("png output lacks PNG signature")
	}

	var svg bytes.Buffer
	if err := c.Render(&svg, FormatSVG); err != nil {
		t.Fatalf("Render svg: %v", err)
	}
	if !strings.Contains(svg.String(), "<svg") {
		t.Error("svg output lacks <svg")
	}

	if err := c.Render(&svg, "gif"); !errors.Is(err, ErrFormat) {
		t.Errorf("err = %v, want ErrFormat", err)
	}

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	if err := c.Render(&png, FormatPNG); !errors.Is(err, ErrChartClosed) {
		t.Errorf("render after close: err = %v, want ErrChartClosed", err)
	}
}

func TestChart_SinglePointAndEmpty(t *testing.T) {
	one := forecast.BuildCumulativeSeries([]model.CostPeriodRecord{{Period: "2024", ActualCost: 10, TargetCost: 20}})
	c, err := NewChart(one, ChartOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = c.Close() }()
	var buf bytes.Buffer
	if err := c.Render(&buf, FormatPNG); err != nil {
		t.Errorf("single point render: %v", err)
	}

	if _, err := NewChart(nil, ChartOptions{}); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("err = %v, want ErrEmptySeries", err)
	}
}

func TestChart_NegativeCostsInRange(t *testing.T) {
	series := forecast.BuildCumulativeSeries([]model.CostPeriodRecord{
		{Period: "2024-01", ActualCost: 100, TargetCost: 80},
		{Period: "2024-02", ActualCost: -250, TargetCost: 40},
	})
	c, err := NewChart(series, ChartOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = c.Close() }()

	if got := c.def.YAxis.Range.GetMin(); got != -250 {
		t.Errorf("y min = %v, want -250", got)
	}
	var buf bytes.Buffer
	if err := c.Render(&buf, FormatSVG); err != nil {
		t.Errorf("render: %v", err)
	}

	c2, err := NewChart(sampleSeries(), ChartOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = c2.Close() }()
	if got := c2.def.YAxis.Range.GetMin(); got != 0 {
		t.Errorf("y min = %v, want 0 for non-negative costs", got)
	}
}
