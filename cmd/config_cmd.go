package cmd

import (
	"fmt"

	"github.com/theirongolddev/xercost/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Database:    %s\n", config.DBPath(cfg))
	if cfg.General.ImportDir != "" {
		fmt.Printf("    Import dir:  %s\n", cfg.General.ImportDir)
	} else {
		fmt.Println("    Import dir:  not set")
	}
	fmt.Printf("    Currency:    %s\n", cfg.General.Currency)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:         %s\n", cfg.Server.Addr)
	fmt.Printf("    Cache TTL:       %s\n", cfg.Server.CacheTTL())
	fmt.Printf("    Uploads TTL:     %s\n", cfg.Server.UploadsTTL())
	if iv := cfg.Server.WatchInterval(); iv > 0 {
		fmt.Printf("    Watch interval:  %s\n", iv)
	} else {
		fmt.Println("    Watch interval:  off")
	}
	fmt.Println()

	fmt.Println("  [Client]")
	if u := serverURL(); u != "" {
		fmt.Printf("    Server URL: %s\n", u)
	} else {
		fmt.Println("    Server URL: not set (local database)")
	}
	fmt.Printf("    Timeout:    %s\n", cfg.Client.Timeout())
	fmt.Println()

	fmt.Println("  [Dashboard]")
	fmt.Printf("    Default period: %s\n", cfg.Dashboard.DefaultPeriod)
	fmt.Printf("    Top tasks:      %d\n", cfg.Dashboard.TopN)
	fmt.Printf("    Graph nodes:    %d\n", cfg.Dashboard.NodeCount)
	fmt.Printf("    Graph layout:   %s\n", cfg.Dashboard.Layout)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:  %s\n", cfg.Log.Level)
	fmt.Printf("    Format: %s\n", cfg.Log.Format)
	fmt.Println()

	fmt.Println("  Run `xercost setup` to reconfigure.")
	return nil
}
