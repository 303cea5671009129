package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/theirongolddev/xercost/internal/cli"
	"github.com/theirongolddev/xercost/internal/dashboard"
	"github.com/theirongolddev/xercost/internal/export"
	"github.com/theirongolddev/xercost/internal/forecast"
	"github.com/theirongolddev/xercost/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagEdits        []string
	flagExportFormat string
	flagExportOut    string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Cost forecast per period with optional what-if edits",
	Long: "Print actual and target cost per period with their running totals.\n" +
		"Each --edit PERIOD=VALUE moves that period's cumulative actual cost, as\n" +
		"dragging the point on the dashboard chart would. PERIOD is a label such as\n" +
		"2024-03 or a zero-based index. Edits are never saved.",
	RunE: runForecast,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the cost forecast as csv, series, xlsx, png or svg",
	RunE:  runExport,
}

func init() {
	for _, c := range []*cobra.Command{forecastCmd, exportCmd} {
		c.Flags().StringArrayVar(&flagEdits, "edit", nil, "What-if edit PERIOD=VALUE (repeatable)")
	}
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "csv", "Output format: csv, series, xlsx, png or svg")
	exportCmd.Flags().StringVarP(&flagExportOut, "output", "o", "", "Output file (default: derived from the period)")

	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(exportCmd)
}

// loadEditor fetches the selection's forecast and applies the --edit flags.
func loadEditor() (*forecast.Editor, dashboard.Selection, forecast.Period, error) {
	period, err := periodFlag()
	if err != nil {
		return nil, dashboard.Selection{}, "", err
	}

	src, closeFn, err := openSource()
	if err != nil {
		return nil, dashboard.Selection{}, "", err
	}
	defer closeFn()

	ctx, cancel := commandContext()
	defer cancel()

	sel, err := resolveSelection(ctx, src)
	if err != nil {
		return nil, sel, period, err
	}
	records, err := src.Forecast(ctx, sel, period)
	if err != nil {
		return nil, sel, period, err
	}

	ed := forecast.NewEditor(records)
	if err := applyEdits(ed, flagEdits); err != nil {
		return nil, sel, period, err
	}
	return ed, sel, period, nil
}

// applyEdits drags each PERIOD=VALUE point in order. A rejected edit stops
// the run so the printed series is never silently different from the request.
func applyEdits(ed *forecast.Editor, edits []string) error {
	for _, e := range edits {
		key, raw, ok := strings.Cut(e, "=")
		if !ok {
			return fmt.Errorf("invalid --edit %q: want PERIOD=VALUE", e)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("invalid --edit %q: %w", e, err)
		}
		idx, err := editIndex(ed, strings.TrimSpace(key))
		if err != nil {
			return err
		}
		edit, err := ed.Drag(idx, value)
		if err != nil {
			return fmt.Errorf("edit %q rejected: %w", e, err)
		}
		log.Debug().Int("index", idx).Float64("value", edit.Value).Float64("diff", edit.Diff).Msg("applied edit")
	}
	return nil
}

func editIndex(ed *forecast.Editor, key string) (int, error) {
	for i := range ed.Len() {
		if p, _ := ed.Point(i); p.Period == key {
			return i, nil
		}
	}
	if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < ed.Len() {
		return i, nil
	}
	return 0, fmt.Errorf("unknown period %q", key)
}

func runForecast(_ *cobra.Command, _ []string) error {
	ed, sel, period, err := loadEditor()
	if err != nil {
		return err
	}
	series := ed.Series()
	if len(series) == 0 {
		fmt.Printf("\n  %s\n", export.NoDataMessage)
		return nil
	}

	cur := cfg.General.Currency
	rows := make([][]string, 0, len(series))
	cumActual := make([]float64, 0, len(series))
	for _, p := range series {
		rows = append(rows, []string{
			p.Period,
			cli.FormatMoney(p.ActualCost, cur),
			cli.FormatMoney(p.TargetCost, cur),
			cli.FormatMoney(p.CumulativeActual, cur),
			cli.FormatMoney(p.CumulativeTarget, cur),
		})
		cumActual = append(cumActual, p.CumulativeActual)
	}

	title := fmt.Sprintf("COST FORECAST  %s  upload %d  %s", sel.ProjectID, sel.UploadID, period)
	if ed.Edits() > 0 {
		title += "  (what-if)"
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Period", "Actual", "Target", "Cum. Actual", "Cum. Target"},
		Rows:    rows,
	}))

	last := series[len(series)-1]
	fmt.Println()
	fmt.Print(cli.RenderKeyValues([][2]string{
		{"Cumulative actual", cli.RenderSparkline(cumActual)},
		{"Variance", cli.FormatVariance(last.CumulativeActual, last.CumulativeTarget)},
		{"Axis max", cli.FormatMoney(ed.AxisMax(), cur)},
	}))
	return nil
}

func runExport(_ *cobra.Command, _ []string) error {
	format := strings.ToLower(flagExportFormat)
	ext := format
	switch format {
	case "csv", "xlsx", export.FormatPNG, export.FormatSVG:
	case "series":
		ext = "csv"
	default:
		return fmt.Errorf("unsupported export format %q", flagExportFormat)
	}

	ed, sel, period, err := loadEditor()
	if err != nil {
		return err
	}
	series := ed.Series()

	var buf bytes.Buffer
	switch format {
	case "csv":
		err = export.WriteForecastCSV(&buf, series)
	case "series":
		err = export.WriteSeriesCSV(&buf, series)
	case "xlsx":
		err = export.WriteForecastXLSX(&buf, series)
	default:
		err = renderChart(&buf, series, sel, period, format)
	}
	if err != nil {
		if errors.Is(err, export.ErrEmptySeries) {
			fmt.Printf("\n  %s\n", export.NoDataMessage)
			return nil
		}
		return err
	}

	out := flagExportOut
	if out == "" {
		out = export.ForecastFilename(period, ext)
	}
	if out == "-" {
		_, err = os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Printf("  Wrote %s (%s bytes)\n", out, cli.FormatNumber(int64(buf.Len())))
	return nil
}

func renderChart(buf *bytes.Buffer, series []model.CumulativeCostPoint, sel dashboard.Selection, period forecast.Period, format string) error {
	ch, err := export.NewChart(series, export.ChartOptions{
		Title:    fmt.Sprintf("Cost forecast %s (%s)", sel.ProjectID, period),
		Currency: cfg.General.Currency,
	})
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()
	return ch.Render(buf, format)
}
