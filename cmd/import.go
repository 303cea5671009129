package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/xercost/internal/cli"
	"github.com/theirongolddev/xercost/internal/pipeline"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Import new or changed XER files from a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	dir := cfg.General.ImportDir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		return errors.New("no import directory: pass one or set general.import_dir with `xercost setup`")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning %s...\n", dir)
	}
	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Parsing %s", cli.RenderProgressBar(current, total, 30))
	}

	res, err := pipeline.Import(dir, st, progressFn)
	if err != nil {
		return err
	}
	if !flagQuiet && res.Imported > 0 {
		fmt.Fprintln(os.Stderr)
	}

	fmt.Println()
	fmt.Printf("  Found %s XER files: %d imported, %d unchanged\n",
		cli.FormatNumber(int64(res.TotalFiles)), res.Imported, res.Skipped)
	for _, u := range res.Uploads {
		fmt.Printf("    #%d  %s\n", u.ID, u.FileName)
	}
	if res.FileErrors > 0 {
		fmt.Fprintln(os.Stderr, cli.RenderWarning(fmt.Sprintf("%d files could not be read", res.FileErrors)))
	}
	if res.ParseErrors > 0 {
		fmt.Fprintln(os.Stderr, cli.RenderWarning(fmt.Sprintf("%d malformed rows were skipped", res.ParseErrors)))
	}
	return nil
}
