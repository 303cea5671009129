package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/theirongolddev/xercost/internal/cli"
	"github.com/theirongolddev/xercost/internal/client"
	"github.com/theirongolddev/xercost/internal/dashboard"
	"github.com/theirongolddev/xercost/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagWBS       bool
	flagJSON      bool
	flagLayout    string
	flagNodeCount int
	flagProjects  []string
)

var ganttCmd = &cobra.Command{
	Use:   "gantt",
	Short: "Tasks and relationships of a project as Gantt data",
	RunE:  runGantt,
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Driving path graph of an upload",
	RunE:  runGraph,
}

func init() {
	ganttCmd.Flags().BoolVar(&flagWBS, "wbs", false, "Group tasks by WBS")
	graphCmd.Flags().StringVar(&flagLayout, "layout", "", "spring or layered (default from config)")
	graphCmd.Flags().IntVar(&flagNodeCount, "nodes", 0, fmt.Sprintf("Node count, %d-%d (default from config)", pipeline.MinNodeCount, pipeline.MaxNodeCount))
	graphCmd.Flags().StringSliceVar(&flagProjects, "projects", nil, "Project ids to include (default: all)")
	for _, c := range []*cobra.Command{ganttCmd, graphCmd} {
		c.Flags().BoolVar(&flagJSON, "json", false, "Print the API payload as JSON")
	}

	rootCmd.AddCommand(ganttCmd)
	rootCmd.AddCommand(graphCmd)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runGantt(_ *cobra.Command, _ []string) error {
	src, closeFn, err := openSource()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := commandContext()
	defer cancel()

	q := dashboard.GanttQuery{UploadID: flagUpload, ProjectID: flagProject, UseWBS: flagWBS}
	if q.ProjectID == "" {
		sel, err := resolveSelection(ctx, src)
		if err != nil {
			return err
		}
		q.UploadID, q.ProjectID = sel.UploadID, sel.ProjectID
	}

	g, err := src.Gantt(ctx, q)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(g)
	}
	if len(g.Data) == 0 {
		fmt.Printf("\n  No tasks for project %s.\n", q.ProjectID)
		return nil
	}

	rows := make([][]string, 0, len(g.Data))
	for _, t := range g.Data {
		rows = append(rows, []string{
			t.ID,
			truncate(t.Text, 40),
			derefOr(t.StartDate, "-"),
			derefOr(t.EndDate, "-"),
			cli.FormatPercent(t.Progress),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Gantt  %s  (%d tasks, %d links)", q.ProjectID, len(g.Data), len(g.Links)),
		Headers: []string{"ID", "Task", "Start", "Finish", "Progress"},
		Rows:    rows,
	}))
	return nil
}

func runGraph(_ *cobra.Command, _ []string) error {
	src, closeFn, err := openSource()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := commandContext()
	defer cancel()

	q := dashboard.GraphQuery{
		UploadID:   flagUpload,
		ProjectIDs: flagProjects,
		Layout:     flagLayout,
		NodeCount:  flagNodeCount,
	}
	if q.Layout == "" {
		q.Layout = cfg.Dashboard.Layout
	}
	if q.NodeCount == 0 {
		q.NodeCount = cfg.Dashboard.NodeCount
	}
	if q.UploadID == 0 {
		uploads, err := src.Uploads(ctx)
		if err != nil {
			return err
		}
		if len(uploads) == 0 {
			return errNoUploads
		}
		q.UploadID = uploads[len(uploads)-1].ID
	}
	if len(q.ProjectIDs) == 0 && flagProject != "" {
		q.ProjectIDs = []string{flagProject}
	}

	g, err := src.Graph(ctx, q)
	if errors.Is(err, dashboard.ErrNoTasks) || errors.Is(err, client.ErrNoContent) {
		fmt.Printf("\n  Upload %d has no tasks for the selected projects.\n", q.UploadID)
		return nil
	}
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(g)
	}

	nodes := append(g.Nodes[:0:0], g.Nodes...)
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Level != nodes[j].Level {
			return nodes[i].Level < nodes[j].Level
		}
		return nodes[i].Start < nodes[j].Start
	})

	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{
			strconv.Itoa(n.Level),
			n.ID,
			truncate(n.Name, 36),
			n.Start,
			n.End,
			strconv.FormatFloat(n.Float, 'f', 0, 64),
			n.DrivingPath,
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DRIVING PATH  upload %d  %s layout", q.UploadID, g.LayoutType)))
	fmt.Println()
	fmt.Print(cli.RenderKeyValues([][2]string{
		{"Projects", strings.Join(g.Projects, ", ")},
		{"Nodes", cli.FormatNumber(int64(len(g.Nodes)))},
		{"Links", cli.FormatNumber(int64(len(g.Links)))},
		{"Key start", derefOr(g.KeyStartNode, "-")},
		{"Key end", derefOr(g.KeyEndNode, "-")},
	}))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Level", "ID", "Task", "Start", "Finish", "Float (h)", "Driving"},
		Rows:    rows,
	}))
	return nil
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
