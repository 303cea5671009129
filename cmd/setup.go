package cmd

import (
	"fmt"

	"github.com/theirongolddev/xercost/internal/config"
	"github.com/theirongolddev/xercost/internal/tui"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Upload count is informational; a missing database is fine here.
	uploads := 0
	if st, err := openStore(); err == nil {
		uploads, _ = st.UploadCount()
		_ = st.Close()
	}

	fmt.Println()
	fmt.Println("  Welcome to xercost!")
	if uploads > 0 {
		fmt.Printf("  %d uploads in %s\n", uploads, config.DBPath(cfg))
	}
	fmt.Println()

	saved, err := tui.RunSetup(cfg, uploads)
	if err != nil {
		return err
	}
	cfg = saved

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `xercost setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
