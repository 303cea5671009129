package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/xercost/internal/cli"

	"github.com/spf13/cobra"
)

var uploadsCmd = &cobra.Command{
	Use:   "uploads",
	Short: "List imported XER files",
	RunE:  runUploads,
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List the projects of an upload",
	RunE:  runProjects,
}

func init() {
	rootCmd.AddCommand(uploadsCmd)
	rootCmd.AddCommand(projectsCmd)
}

func runUploads(_ *cobra.Command, _ []string) error {
	src, closeFn, err := openSource()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := commandContext()
	defer cancel()

	uploads, err := src.Uploads(ctx)
	if err != nil {
		return err
	}
	if len(uploads) == 0 {
		fmt.Println("\n  No uploads yet. Run `xercost import <dir>` first.")
		return nil
	}

	rows := make([][]string, 0, len(uploads))
	for _, u := range uploads {
		rows = append(rows, []string{
			strconv.FormatInt(u.ID, 10),
			truncate(u.FileName, 40),
			u.ImportedAt.Local().Format("2006-01-02 15:04"),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Uploads (%d)", len(uploads)),
		Headers: []string{"ID", "File", "Imported"},
		Rows:    rows,
	}))
	return nil
}

func runProjects(_ *cobra.Command, _ []string) error {
	src, closeFn, err := openSource()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := commandContext()
	defer cancel()

	uploadID := flagUpload
	if uploadID == 0 {
		uploads, err := src.Uploads(ctx)
		if err != nil {
			return err
		}
		if len(uploads) == 0 {
			return errNoUploads
		}
		uploadID = uploads[len(uploads)-1].ID
	}

	projects, err := src.Projects(ctx, uploadID)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Printf("\n  Upload %d has no projects.\n", uploadID)
		return nil
	}

	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{p.ID, p.ShortName})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Projects in upload %d", uploadID),
		Headers: []string{"ID", "Name"},
		Rows:    rows,
	}))
	return nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
