package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/xercost/internal/config"
	"github.com/theirongolddev/xercost/internal/forecast"
	"github.com/theirongolddev/xercost/internal/tui"
	"github.com/theirongolddev/xercost/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	theme.SetActive(cfg.Appearance.Theme)

	// Logs would draw over the alt screen.
	logPath := filepath.Join(config.CacheDir(), "xercost.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err == nil {
		//nolint:gosec // log path is under the user's cache dir
		if f, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600); err == nil {
			defer func() { _ = f.Close() }()
			setupLogging(f, cfg.Log)
		}
	}

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	opts := tui.Options{UploadID: flagUpload, ProjectID: flagProject}
	if flagPeriod != "" {
		p, err := forecast.ParsePeriod(flagPeriod)
		if err != nil {
			return err
		}
		opts.Period = p
	}

	src, closeFn, err := openSource()
	if err != nil {
		return err
	}
	defer closeFn()

	app := tui.NewApp(src, cfg, opts)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
