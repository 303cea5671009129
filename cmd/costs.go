package cmd

import (
	"fmt"

	"github.com/theirongolddev/xercost/internal/cli"
	"github.com/theirongolddev/xercost/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagSearch string
	flagTop    int
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Task costs: the top tasks or a name search",
	RunE:  runTasks,
}

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "Cost per resource",
	RunE:  runResources,
}

func init() {
	tasksCmd.Flags().StringVarP(&flagSearch, "search", "s", "", "Only tasks whose name contains this text")
	tasksCmd.Flags().IntVarP(&flagTop, "top", "n", 0, "Number of tasks without --search (default from config)")

	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(resourcesCmd)
}

func runTasks(_ *cobra.Command, _ []string) error {
	src, closeFn, err := openSource()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := commandContext()
	defer cancel()

	sel, err := resolveSelection(ctx, src)
	if err != nil {
		return err
	}
	overall, err := src.Overall(ctx, sel)
	if err != nil {
		return err
	}
	tasks, err := src.Tasks(ctx, sel)
	if err != nil {
		return err
	}

	n := flagTop
	if n <= 0 {
		n = cfg.Dashboard.TopN
	}
	visible := pipeline.TopTasks(tasks, flagSearch, n)
	cur := cfg.General.Currency

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("TASK COSTS  %s  upload %d", sel.ProjectID, sel.UploadID)))
	fmt.Println()
	fmt.Print(cli.RenderKeyValues([][2]string{
		{"Actual", cli.FormatMoney(overall.TotalActual, cur)},
		{"Target", cli.FormatMoney(overall.TotalTarget, cur)},
		{"Remaining", cli.FormatMoney(overall.TotalRemain, cur)},
		{"Variance", cli.FormatVariance(overall.TotalActual, overall.TotalTarget)},
	}))
	fmt.Println()

	if len(visible) == 0 {
		fmt.Println("  No matching tasks.")
		return nil
	}

	rows := make([][]string, 0, len(visible)+2)
	for _, t := range visible {
		rows = append(rows, []string{
			truncate(t.TaskName, 40),
			cli.FormatMoney(t.ActualCost, cur),
			cli.FormatMoney(t.TargetCost, cur),
			cli.FormatMoney(t.RemainCost, cur),
		})
	}
	sum := pipeline.SumTaskCosts(visible)
	rows = append(rows,
		[]string{cli.Separator},
		[]string{"Total", cli.FormatMoney(sum.Actual, cur), cli.FormatMoney(sum.Target, cur), cli.FormatMoney(sum.Remain, cur)},
	)

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   pipeline.TaskTitle(flagSearch, n),
		Headers: []string{"Task", "Actual", "Target", "Remaining"},
		Rows:    rows,
	}))
	return nil
}

func runResources(_ *cobra.Command, _ []string) error {
	src, closeFn, err := openSource()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := commandContext()
	defer cancel()

	sel, err := resolveSelection(ctx, src)
	if err != nil {
		return err
	}
	resources, err := src.Resources(ctx, sel)
	if err != nil {
		return err
	}
	if len(resources) == 0 {
		fmt.Println("\n  No resource assignments.")
		return nil
	}

	cur := cfg.General.Currency
	peak := 0.0
	for _, r := range resources {
		peak = max(peak, r.ActualCost)
	}

	rows := make([][]string, 0, len(resources))
	for _, r := range resources {
		name := r.ResourceName
		if name == "" {
			name = r.ResourceID
		}
		rows = append(rows, []string{
			truncate(name, 32),
			r.ResourceType,
			cli.FormatMoney(r.ActualCost, cur),
			cli.FormatMoney(r.TargetCost, cur),
			cli.FormatMoney(r.RemainCost, cur),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("RESOURCE COSTS  %s  upload %d", sel.ProjectID, sel.UploadID)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Resource", "Type", "Actual", "Target", "Remaining"},
		Rows:    rows,
	}))

	fmt.Println()
	for _, r := range resources[:min(len(resources), 10)] {
		fmt.Println(cli.RenderHorizontalBar(fmt.Sprintf("%-20s", truncate(r.ResourceName, 20)), r.ActualCost, peak, 40))
	}
	return nil
}
