package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/xercost/internal/forecast"
	"github.com/theirongolddev/xercost/internal/model"
)

// Workbook sheet names.
const (
	ForecastSheet = "Forecast"
	SeriesSheet   = "Series"
)

// moneyFormat is the built-in "#,##0.00" number format.
const moneyFormat = 4

// WriteForecastXLSX writes a workbook with the period-column layout on the
// Forecast sheet and one row per point on the Series sheet.
func WriteForecastXLSX(w io.Writer, series []model.CumulativeCostPoint) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ForecastSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if _, err := f.NewSheet(SeriesSheet); err != nil {
		return fmt.Errorf("adding sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: moneyFormat})
	if err != nil {
		return err
	}

	if err := writeSheet(f, ForecastSheet, ForecastTable(series)); err != nil {
		return err
	}
	if err := writeSheet(f, SeriesSheet, forecast.ToExportRows(series)); err != nil {
		return err
	}

	if len(series) > 0 {
		// Forecast: header row and label column are bold, amounts are money.
		last, _ := excelize.CoordinatesToCellName(len(series)+1, 5)
		lastHeader, _ := excelize.CoordinatesToCellName(len(series)+1, 1)
		if err := f.SetCellStyle(ForecastSheet, "A1", lastHeader, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(ForecastSheet, "A2", "A5", header); err != nil {
			return err
		}
		if err := f.SetCellStyle(ForecastSheet, "B2", last, money); err != nil {
			return err
		}

		lastRow, _ := excelize.CoordinatesToCellName(5, len(series)+1)
		if err := f.SetCellStyle(SeriesSheet, "A1", "E1", header); err != nil {
			return err
		}
		if err := f.SetCellStyle(SeriesSheet, "B2", lastRow, money); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}
	return nil
}

// writeSheet stores rows from A1, writing numeric text as numbers.
func writeSheet(f *excelize.File, sheet string, rows [][]string) error {
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			if n, err := strconv.ParseFloat(v, 64); err == nil && i > 0 && !(sheet == SeriesSheet && j == 0) {
				cells[j] = n
			} else {
				cells[j] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
