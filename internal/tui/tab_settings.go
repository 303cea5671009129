package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/xercost/internal/cli"
	"github.com/theirongolddev/xercost/internal/config"
	"github.com/theirongolddev/xercost/internal/forecast"
	"github.com/theirongolddev/xercost/internal/pipeline"
	"github.com/theirongolddev/xercost/internal/tui/components"
	"github.com/theirongolddev/xercost/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldTheme = iota
	settingsFieldCurrency
	settingsFieldPeriod
	settingsFieldTopN
	settingsFieldNodeCount
	settingsFieldLayout
	settingsFieldServerURL
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

func (a *App) updateSettingsKey(key string) (bool, tea.Cmd) {
	switch key {
	case "j", "down":
		if a.settings.cursor < settingsFieldCount-1 {
			a.settings.cursor++
		}
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
	case "enter":
		return true, a.settingsStartEdit()
	default:
		return false, nil
	}
	return true, nil
}

func (a *App) settingsStartEdit() tea.Cmd {
	cfg := a.cfg
	a.settings.editing = true
	a.settings.saved = false

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50

	switch a.settings.cursor {
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(cfg.Appearance.Theme)
	case settingsFieldCurrency:
		ti.Placeholder = "£"
		ti.CharLimit = 4
		ti.SetValue(cfg.General.Currency)
	case settingsFieldPeriod:
		ti.Placeholder = "monthly, quarterly, yearly"
		ti.SetValue(cfg.Dashboard.DefaultPeriod)
	case settingsFieldTopN:
		ti.Placeholder = strconv.Itoa(pipeline.DefaultTopN)
		ti.SetValue(strconv.Itoa(cfg.Dashboard.TopN))
	case settingsFieldNodeCount:
		ti.Placeholder = fmt.Sprintf("%d-%d", pipeline.MinNodeCount, pipeline.MaxNodeCount)
		ti.SetValue(strconv.Itoa(cfg.Dashboard.NodeCount))
	case settingsFieldLayout:
		ti.Placeholder = pipeline.LayoutSpring + " or " + pipeline.LayoutLayered
		ti.SetValue(cfg.Dashboard.Layout)
	case settingsFieldServerURL:
		ti.Placeholder = "empty for the local database"
		ti.SetValue(cfg.Client.BaseURL)
	}

	ti.Focus()
	a.settings.input = ti
	return textinput.Blink
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		cmd := a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, cmd
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave validates the edited value, applies it and writes the config.
// Invalid values are ignored. A changed period reloads the forecast.
func (a *App) settingsSave() tea.Cmd {
	val := strings.TrimSpace(a.settings.input.Value())
	cfg := a.cfg
	var cmd tea.Cmd

	switch a.settings.cursor {
	case settingsFieldTheme:
		for _, t := range theme.All {
			if t.Name == val {
				cfg.Appearance.Theme = val
				theme.SetActive(val)
			}
		}
	case settingsFieldCurrency:
		if val != "" {
			cfg.General.Currency = val
		}
	case settingsFieldPeriod:
		if p, err := forecast.ParsePeriod(val); err == nil {
			cfg.Dashboard.DefaultPeriod = string(p)
			if p != a.period {
				a.period = p
				cmd = a.reload()
			}
		}
	case settingsFieldTopN:
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			cfg.Dashboard.TopN = n
		}
	case settingsFieldNodeCount:
		if n, err := strconv.Atoi(val); err == nil && n >= pipeline.MinNodeCount && n <= pipeline.MaxNodeCount {
			cfg.Dashboard.NodeCount = n
		}
	case settingsFieldLayout:
		if val == pipeline.LayoutSpring || val == pipeline.LayoutLayered {
			cfg.Dashboard.Layout = val
		}
	case settingsFieldServerURL:
		if validateServerURL(val) == nil {
			cfg.Client.BaseURL = val
		}
	}

	a.cfg = cfg
	a.settings.saveErr = config.Save(cfg)
	return cmd
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := a.cfg

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	serverURL := cfg.Client.BaseURL
	if serverURL == "" {
		serverURL = "(local database)"
	}
	fields := []struct{ label, value string }{
		{"Theme", cfg.Appearance.Theme},
		{"Currency", cfg.General.Currency},
		{"Default Period", cfg.Dashboard.DefaultPeriod},
		{"Top Tasks", strconv.Itoa(cfg.Dashboard.TopN)},
		{"Graph Nodes", strconv.Itoa(cfg.Dashboard.NodeCount)},
		{"Graph Layout", cfg.Dashboard.Layout},
		{"Server URL", serverURL},
	}

	innerW := components.CardInnerWidth(cw)
	var form strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-16s ", f.label)))
			form.WriteString(a.settings.input.View())
			form.WriteString("\n")
			continue
		}
		if i == a.settings.cursor {
			line := markerStyle.Render("▸ ") +
				selectedLabelStyle.Render(fmt.Sprintf("%-16s ", f.label+":")) +
				selectedStyle.Render(f.value)
			form.WriteString(line)
			if pad := innerW - lipgloss.Width(line); pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			form.WriteString(labelStyle.Render(fmt.Sprintf("  %-16s ", f.label+":")))
			form.WriteString(valueStyle.Render(f.value))
		}
		form.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		form.WriteString("\n")
		form.WriteString(lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).
			Render(fmt.Sprintf("Save failed: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		form.WriteString("\n")
		form.WriteString(greenStyle.Render("Saved!"))
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var info strings.Builder
	info.WriteString(labelStyle.Render("Uploads:     ") + valueStyle.Render(cli.FormatNumber(int64(len(a.uploads)))) + "\n")
	info.WriteString(labelStyle.Render("Projects:    ") + valueStyle.Render(cli.FormatNumber(int64(len(a.projects)))) + "\n")
	info.WriteString(labelStyle.Render("Database:    ") + valueStyle.Render(config.DBPath(cfg)) + "\n")
	info.WriteString(labelStyle.Render("Config file: ") + valueStyle.Render(config.ConfigPath()))

	return components.ContentCard("Settings", form.String(), cw) + "\n" +
		components.ContentCard("General", info.String(), cw)
}
