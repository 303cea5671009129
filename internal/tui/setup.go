package tui

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/theirongolddev/xercost/internal/config"
	"github.com/theirongolddev/xercost/internal/forecast"
	"github.com/theirongolddev/xercost/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// setupValues are bound to the setup form fields.
type setupValues struct {
	ImportDir string
	Currency  string
	Period    string
	Theme     string
	ServerURL string
}

func setupValuesFrom(cfg config.Config) setupValues {
	return setupValues{
		ImportDir: cfg.General.ImportDir,
		Currency:  cfg.General.Currency,
		Period:    cfg.Dashboard.DefaultPeriod,
		Theme:     cfg.Appearance.Theme,
		ServerURL: cfg.Client.BaseURL,
	}
}

// apply copies the form values into cfg.
func (v setupValues) apply(cfg *config.Config) {
	cfg.General.ImportDir = strings.TrimSpace(v.ImportDir)
	if c := strings.TrimSpace(v.Currency); c != "" {
		cfg.General.Currency = c
	}
	cfg.Dashboard.DefaultPeriod = v.Period
	cfg.Appearance.Theme = v.Theme
	cfg.Client.BaseURL = strings.TrimSpace(v.ServerURL)
}

func validateServerURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return errors.New("enter host:port or a full http URL")
	}
	return nil
}

// newSetupForm builds the first-run form bound to vals. uploads is shown in
// the welcome text.
func newSetupForm(vals *setupValues, uploads int) *huh.Form {
	periods := make([]huh.Option[string], len(forecast.Periods))
	for i, p := range forecast.Periods {
		periods[i] = huh.NewOption(string(p), string(p))
	}
	themes := huh.NewOptions(theme.Names()...)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to xercost").
				Description(fmt.Sprintf("%d uploads in the database. Let's set a few defaults.", uploads)),
			huh.NewInput().
				Title("XER import directory").
				Description("Scanned by `xercost import` and `xercost serve --watch`.").
				Placeholder("~/schedules").
				Value(&vals.ImportDir),
			huh.NewInput().
				Title("Currency symbol").
				Placeholder("£").
				CharLimit(4).
				Value(&vals.Currency),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default forecast period").
				Options(periods...).
				Value(&vals.Period),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&vals.Theme),
			huh.NewInput().
				Title("Server URL").
				Description("Leave empty to read the local database.").
				Placeholder("127.0.0.1:8080").
				Validate(validateServerURL).
				Value(&vals.ServerURL),
		),
	).WithShowHelp(true)
}

// RunSetup runs the setup form in the terminal and saves the result.
func RunSetup(cfg config.Config, uploads int) (config.Config, error) {
	vals := setupValuesFrom(cfg)
	if err := newSetupForm(&vals, uploads).Run(); err != nil {
		return cfg, err
	}
	vals.apply(&cfg)
	if err := config.Save(cfg); err != nil {
		return cfg, err
	}
	theme.SetActive(cfg.Appearance.Theme)
	return cfg, nil
}

func (a *App) startSetup() tea.Cmd {
	a.setupVals = setupValuesFrom(a.cfg)
	a.setupForm = newSetupForm(&a.setupVals, len(a.uploads))
	if a.width > 0 {
		a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
	}
	return a.setupForm.Init()
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupVals.apply(&a.cfg)
		if err := config.Save(a.cfg); err != nil {
			a.err = fmt.Errorf("saving config: %w", err)
		}
		theme.SetActive(a.cfg.Appearance.Theme)
		if p, err := forecast.ParsePeriod(a.cfg.Dashboard.DefaultPeriod); err == nil {
			a.period = p
		}
		a.needSetup = false
		a.setupForm = nil
		return a, a.loadProjects()
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, a.loadProjects()
	}
	return a, cmd
}
