// Package cmd implements the xercost CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/theirongolddev/xercost/internal/client"
	"github.com/theirongolddev/xercost/internal/config"
	"github.com/theirongolddev/xercost/internal/dashboard"
	"github.com/theirongolddev/xercost/internal/forecast"
	"github.com/theirongolddev/xercost/internal/store"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagDB       string
	flagServer   string
	flagUpload   int64
	flagProject  string
	flagPeriod   string
	flagLogLevel string
	flagQuiet    bool
)

// cfg is loaded once before any command runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "xercost",
	Short: "Schedule cost forecasting for Primavera XER exports",
	Long: "Import XER schedule exports and explore their cost forecast, task and resource\n" +
		"costs, upload-to-upload movement and the driving path.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runTUI,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Upload database path (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "Read from a running xercost server instead of the local database")
	rootCmd.PersistentFlags().Int64VarP(&flagUpload, "upload", "u", 0, "Upload id (default: latest)")
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "p", "", "Project id (default: first project of the upload)")
	rootCmd.PersistentFlags().StringVar(&flagPeriod, "period", "", "Forecast period: monthly, quarterly or yearly")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

func loadConfig(_ *cobra.Command, _ []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	cfg = c
	if flagDB != "" {
		cfg.General.DBPath = flagDB
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	setupLogging(os.Stderr, cfg.Log)
	return nil
}

// setupLogging points the global logger at w.
func setupLogging(w io.Writer, lc config.LogConfig) {
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil || lc.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if lc.Format == "json" {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
}

// serverURL is the remote API to read from, or empty for the local database.
func serverURL() string {
	if flagServer != "" {
		return flagServer
	}
	return config.ServerURL(cfg)
}

// openSource returns the dashboard queries, served remotely when a server URL
// is configured and from the local database otherwise.
func openSource() (dashboard.Source, func(), error) {
	if u := serverURL(); u != "" {
		log.Debug().Str("server", u).Msg("using remote source")
		return client.New(u).WithTimeout(cfg.Client.Timeout()), func() {}, nil
	}

	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	return dashboard.New(st, cfg.General.Currency), func() { _ = st.Close() }, nil
}

func openStore() (*store.Store, error) {
	path := config.DBPath(cfg)
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	return st, nil
}

// periodFlag resolves --period against the configured default.
func periodFlag() (forecast.Period, error) {
	if flagPeriod != "" {
		return forecast.ParsePeriod(flagPeriod)
	}
	if p, err := forecast.ParsePeriod(cfg.Dashboard.DefaultPeriod); err == nil {
		return p, nil
	}
	return forecast.Monthly, nil
}

// resolveSelection fills in the latest upload and its first project when the
// flags leave them out.
func resolveSelection(ctx context.Context, src dashboard.Source) (dashboard.Selection, error) {
	sel := dashboard.Selection{UploadID: flagUpload, ProjectID: flagProject}
	if sel.UploadID == 0 {
		uploads, err := src.Uploads(ctx)
		if err != nil {
			return sel, err
		}
		if len(uploads) == 0 {
			return sel, errNoUploads
		}
		sel.UploadID = uploads[len(uploads)-1].ID
	}
	if sel.ProjectID == "" {
		projects, err := src.Projects(ctx, sel.UploadID)
		if err != nil {
			return sel, err
		}
		if len(projects) == 0 {
			return sel, fmt.Errorf("upload %d has no projects", sel.UploadID)
		}
		sel.ProjectID = projects[0].ID
	}
	return sel, nil
}

var errNoUploads = errors.New("no uploads found; run `xercost import <dir>` first")

// commandContext bounds one CLI query.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Minute)
}
