// Package export writes forecasts and comparisons as CSV, XLSX and chart images.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/theirongolddev/xercost/internal/forecast"
	"github.com/theirongolddev/xercost/internal/model"
)

// NoDataMessage is the single cell written for an empty forecast export.
const NoDataMessage = "No data available for the selected criteria"

// ForecastFilename is the download name of a forecast export.
func ForecastFilename(period forecast.Period, ext string) string {
	return fmt.Sprintf("cost_forecast_%s.%s", period, ext)
}

// MovementFilename is the download name of a comparison export.
func MovementFilename(method string) string {
	return fmt.Sprintf("comparison_data_%s.csv", method)
}

// ForecastTable lays the series out with one column per period: a header row
// then Actual, Target, Cumulative Actual and Cumulative Target rows.
func ForecastTable(series []model.CumulativeCostPoint) [][]string {
	if len(series) == 0 {
		return [][]string{{NoDataMessage}}
	}
	rows := [][]string{
		{"Cost Type"},
		{"Actual"},
		{"Target"},
		{"Cumulative Actual"},
		{"Cumulative Target"},
	}
	for _, p := range series {
		rows[0] = append(rows[0], p.Period)
		rows[1] = append(rows[1], number(p.ActualCost))
		rows[2] = append(rows[2], number(p.TargetCost))
		rows[3] = append(rows[3], number(p.CumulativeActual))
		rows[4] = append(rows[4], number(p.CumulativeTarget))
	}
	return rows
}

// WriteForecastCSV writes ForecastTable(series) to w.
func WriteForecastCSV(w io.Writer, series []model.CumulativeCostPoint) error {
	return writeAll(w, ForecastTable(series))
}

// WriteSeriesCSV writes one row per point with a header, as produced by
// forecast.ToExportRows.
func WriteSeriesCSV(w io.Writer, series []model.CumulativeCostPoint) error {
	return writeAll(w, forecast.ToExportRows(series))
}

// MovementHeader is the header row of a comparison export.
var MovementHeader = []string{
	"Task ID", "Task Name", "Project", "Change Type",
	"Old Actual Cost", "New Actual Cost", "Actual Cost Change",
	"Old Target Cost", "New Target Cost", "Target Cost Change",
	"Old Remaining Cost", "New Remaining Cost", "Remaining Cost Change",
}

// MovementRows converts comparison details into export rows, header first.
func MovementRows(details []model.Comparison) [][]string {
	rows := make([][]string, 0, len(details)+1)
	rows = append(rows, MovementHeader)
	for _, d := range details {
		var oldC, newC model.CostValues
		if d.OldValues != nil {
			oldC = d.OldValues.Cost
		}
		if d.NewValues != nil {
			newC = d.NewValues.Cost
		}
		rows = append(rows, []string{
			d.TaskID, d.TaskName, d.Project, ChangeLabel(d.Kind()),
			number(oldC.Actual), number(newC.Actual), fixed2(newC.Actual - oldC.Actual),
			number(oldC.Target), number(newC.Target), fixed2(newC.Target - oldC.Target),
			number(oldC.Remain), number(newC.Remain), fixed2(newC.Remain - oldC.Remain),
		})
	}
	return rows
}

// WriteMovementCSV writes MovementRows(details) to w.
func WriteMovementCSV(w io.Writer, details []model.Comparison) error {
	return writeAll(w, MovementRows(details))
}

// ChangeLabel is the display name of a change kind.
func ChangeLabel(kind string) string {
	switch kind {
	case model.ChangeAdded:
		return "Added"
	case model.ChangeRemoved:
		return "Removed"
	case model.ChangeCost:
		return "Modified"
	}
	return kind
}

func writeAll(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func number(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func fixed2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
