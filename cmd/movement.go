package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/theirongolddev/xercost/internal/cli"
	"github.com/theirongolddev/xercost/internal/client"
	"github.com/theirongolddev/xercost/internal/dashboard"
	"github.com/theirongolddev/xercost/internal/export"
	"github.com/theirongolddev/xercost/internal/model"
	"github.com/theirongolddev/xercost/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagOldUpload  int64
	flagNewUpload  int64
	flagMethod     string
	flagChangeType string
	flagCostChange string
	flagMoveSearch string
	flagMoveExport string
)

var movementCmd = &cobra.Command{
	Use:   "movement",
	Short: "Compare task costs between two uploads of a project",
	Long: "Compare two uploads of a project. Without --old and --new the latest\n" +
		"upload is compared with the one before it.",
	RunE: runMovement,
}

func init() {
	f := movementCmd.Flags()
	f.Int64Var(&flagOldUpload, "old", 0, "Older upload id")
	f.Int64Var(&flagNewUpload, "new", 0, "Newer upload id")
	f.StringVar(&flagMethod, "method", pipeline.MatchByID, "Match tasks by id or name")
	f.StringVar(&flagChangeType, "change-type", "", "Only added, removed or modified tasks")
	f.StringVar(&flagCostChange, "cost-change", "", "Only increased, decreased or no_change cost changes")
	f.StringVarP(&flagMoveSearch, "search", "s", "", "Only tasks whose id or name contains this text")
	f.StringVar(&flagMoveExport, "export", "", "Write the filtered details as CSV to this file")

	rootCmd.AddCommand(movementCmd)
}

func runMovement(_ *cobra.Command, _ []string) error {
	method, err := pipeline.ParseCompareMethod(flagMethod)
	if err != nil {
		return err
	}

	src, closeFn, err := openSource()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := commandContext()
	defer cancel()

	q, err := movementQuery(ctx, src, method)
	if err != nil {
		return err
	}
	m, err := src.Movement(ctx, q)
	if err != nil {
		return err
	}

	if flagMoveExport != "" {
		return exportMovement(ctx, src, q, m.Details)
	}

	cur := cfg.General.Currency
	s := m.Summary
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("MOVEMENT  %s  #%d → #%d", q.ProjectID, q.OldUploadID, q.NewUploadID)))
	fmt.Println()
	fmt.Print(cli.RenderKeyValues([][2]string{
		{"Total changes", cli.FormatNumber(int64(s.TotalChanges))},
		{"Added", cli.FormatNumber(int64(s.AddedTasks))},
		{"Removed", cli.FormatNumber(int64(s.RemovedTasks))},
		{"Cost changes", cli.FormatNumber(int64(s.CostChanges))},
		{"Net cost change", cli.RenderDelta(s.TotalCostChange, cli.FormatMoney(s.TotalCostChange, cur))},
	}))
	fmt.Println()

	if len(m.Details) == 0 {
		fmt.Println("  No matching changes.")
		return nil
	}

	rows := make([][]string, 0, len(m.Details))
	for _, d := range m.Details {
		var oldTotal, newTotal float64
		if d.OldValues != nil {
			oldTotal = d.OldValues.Cost.Total()
		}
		if d.NewValues != nil {
			newTotal = d.NewValues.Cost.Total()
		}
		rows = append(rows, []string{
			d.TaskID,
			truncate(d.TaskName, 36),
			export.ChangeLabel(d.Kind()),
			cli.FormatMoney(oldTotal, cur),
			cli.FormatMoney(newTotal, cur),
			cli.RenderDelta(newTotal-oldTotal, cli.FormatDelta(newTotal, oldTotal, cur)),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Changes (%d)", len(m.Details)),
		Headers: []string{"Task ID", "Task", "Change", "Old Cost", "New Cost", "Delta"},
		Rows:    rows,
	}))
	return nil
}

// movementQuery fills in the two most recent uploads when --old/--new are unset.
func movementQuery(ctx context.Context, src dashboard.Source, method string) (dashboard.MovementQuery, error) {
	q := dashboard.MovementQuery{
		OldUploadID: flagOldUpload,
		NewUploadID: flagNewUpload,
		ProjectID:   flagProject,
		Method:      method,
		Filter: pipeline.ChangeFilter{
			Text:       flagMoveSearch,
			Method:     method,
			ChangeType: flagChangeType,
			CostChange: flagCostChange,
		},
	}
	if q.OldUploadID == 0 || q.NewUploadID == 0 {
		uploads, err := src.Uploads(ctx)
		if err != nil {
			return q, err
		}
		if len(uploads) < 2 {
			return q, fmt.Errorf("movement needs two uploads, found %d", len(uploads))
		}
		if q.NewUploadID == 0 {
			q.NewUploadID = uploads[len(uploads)-1].ID
		}
		if q.OldUploadID == 0 {
			for i := len(uploads) - 1; i >= 0; i-- {
				if uploads[i].ID < q.NewUploadID {
					q.OldUploadID = uploads[i].ID
					break
				}
			}
		}
		if q.OldUploadID == 0 {
			return q, fmt.Errorf("no upload older than #%d", q.NewUploadID)
		}
	}
	if q.ProjectID == "" {
		projects, err := src.Projects(ctx, q.NewUploadID)
		if err != nil {
			return q, err
		}
		if len(projects) == 0 {
			return q, fmt.Errorf("upload %d has no projects", q.NewUploadID)
		}
		q.ProjectID = projects[0].ID
	}
	return q, nil
}

// exportMovement writes the details CSV. A remote server renders it itself.
func exportMovement(ctx context.Context, src dashboard.Source, q dashboard.MovementQuery, details []model.Comparison) error {
	var data []byte
	if c, ok := src.(*client.Client); ok {
		body, err := c.ExportMovement(ctx, q)
		if err != nil {
			return err
		}
		data = body
	} else {
		var buf bytes.Buffer
		if err := export.WriteMovementCSV(&buf, details); err != nil {
			return err
		}
		data = buf.Bytes()
	}
	if err := os.WriteFile(flagMoveExport, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", flagMoveExport, err)
	}
	fmt.Printf("  Wrote %d changes to %s\n", len(details), flagMoveExport)
	return nil
}
