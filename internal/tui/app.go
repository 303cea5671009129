// Package tui provides the interactive Bubble Tea cost dashboard.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/xercost/internal/cli"
	"github.com/theirongolddev/xercost/internal/config"
	"github.com/theirongolddev/xercost/internal/dashboard"
	"github.com/theirongolddev/xercost/internal/forecast"
	"github.com/theirongolddev/xercost/internal/model"
	"github.com/theirongolddev/xercost/internal/pipeline"
	"github.com/theirongolddev/xercost/internal/tui/components"
	"github.com/theirongolddev/xercost/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
)

const (
	tabForecast = iota
	tabTasks
	tabResources
	tabMovement
	tabSettings
)

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
	queryTimeout     = 30 * time.Second
)

// Options selects what the dashboard opens on. Zero values pick the latest
// upload, its first project and the configured period.
type Options struct {
	UploadID  int64
	ProjectID string
	Period    forecast.Period
}

type uploadsMsg struct {
	uploads []model.Upload
	err     error
}

type projectsMsg struct {
	uploadID int64
	projects []model.Project
	err      error
}

// selectionMsg carries everything the cost tabs show for one selection.
type selectionMsg struct {
	ticket    forecast.Ticket
	records   []model.CostPeriodRecord
	overall   model.OverallCosts
	tasks     []model.TaskCost
	resources []model.ResourceCost
	err       error
}

type movementMsg struct {
	seq      int
	movement model.Movement
	err      error
}

// App is the root Bubble Tea model.
type App struct {
	src  dashboard.Source
	cfg  config.Config
	opts Options

	// Selection
	uploads    []model.Upload
	uploadIdx  int
	projects   []model.Project
	projectIdx int
	period     forecast.Period

	// Forecast state. guard is shared by copies of App so stale loads are
	// recognised whichever copy receives them.
	guard    *forecast.Guard
	records  []model.CostPeriodRecord
	editor   *forecast.Editor
	selected int
	editErr  error

	overall   model.OverallCosts
	tasks     []model.TaskCost
	resources []model.ResourceCost

	movement    *model.Movement
	movementSeq int
	moveState   movementState

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	loaded    bool
	loading   bool
	err       error
	spinner   spinner.Model

	taskState tasksState
	settings  settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals setupValues
	needSetup bool
}

// NewApp creates the dashboard over src.
func NewApp(src dashboard.Source, cfg config.Config, opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	period := opts.Period
	if period == "" {
		if p, err := forecast.ParsePeriod(cfg.Dashboard.DefaultPeriod); err == nil {
			period = p
		} else {
			period = forecast.Monthly
		}
	}

	return App{
		src:       src,
		cfg:       cfg,
		opts:      opts,
		period:    period,
		guard:     &forecast.Guard{},
		editor:    forecast.NewEditor(nil),
		needSetup: !config.Exists(),
		spinner:   sp,
		moveState: movementState{method: pipeline.MatchByID},
		taskState: newTasksState(),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
		loadUploadsCmd(a.src),
	)
}

func (a App) currentUpload() (model.Upload, bool) {
	if a.uploadIdx < 0 || a.uploadIdx >= len(a.uploads) {
		return model.Upload{}, false
	}
	return a.uploads[a.uploadIdx], true
}

func (a App) currentProject() (model.Project, bool) {
	if a.projectIdx < 0 || a.projectIdx >= len(a.projects) {
		return model.Project{}, false
	}
	return a.projects[a.projectIdx], true
}

func (a App) selectionKey() forecast.SelectionKey {
	u, _ := a.currentUpload()
	p, _ := a.currentProject()
	return forecast.SelectionKey{UploadID: u.ID, ProjectID: p.ID, Period: a.period}
}

// reload starts loading the current selection. Earlier loads still in flight
// are dropped when they arrive.
func (a *App) reload() tea.Cmd {
	key := a.selectionKey()
	if key.UploadID == 0 || key.ProjectID == "" {
		a.guard.Begin(key)
		a.records = nil
		a.editor.Reset(nil)
		a.overall = model.OverallCosts{}
		a.tasks, a.resources, a.movement = nil, nil, nil
		a.loading = false
		return nil
	}
	a.loading = true
	ticket := a.guard.Begin(key)
	return tea.Batch(loadSelectionCmd(a.src, ticket), a.reloadMovement())
}

// reloadMovement compares the previous upload with the current one.
func (a *App) reloadMovement() tea.Cmd {
	a.movementSeq++
	a.movement = nil
	if a.uploadIdx <= 0 {
		return nil
	}
	p, ok := a.currentProject()
	if !ok {
		return nil
	}
	q := dashboard.MovementQuery{
		OldUploadID: a.uploads[a.uploadIdx-1].ID,
		NewUploadID: a.uploads[a.uploadIdx].ID,
		ProjectID:   p.ID,
		Method:      a.moveState.method,
		Filter: pipeline.ChangeFilter{
			Method:     a.moveState.method,
			ChangeType: a.moveState.changeType,
		},
	}
	return loadMovementCmd(a.src, a.movementSeq, q)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case uploadsMsg:
		a.loaded = true
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.uploads = msg.uploads
		a.uploadIdx = len(a.uploads) - 1
		for i, u := range a.uploads {
			if u.ID == a.opts.UploadID {
				a.uploadIdx = i
			}
		}
		if a.needSetup {
			return a, a.startSetup()
		}
		return a, a.loadProjects()

	case projectsMsg:
		if u, ok := a.currentUpload(); !ok || u.ID != msg.uploadID {
			return a, nil
		}
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		prev, _ := a.currentProject()
		a.projects = msg.projects
		a.projectIdx = 0
		want := prev.ID
		if want == "" {
			want = a.opts.ProjectID
		}
		for i, p := range a.projects {
			if p.ID == want {
				a.projectIdx = i
			}
		}
		return a, a.reload()

	case selectionMsg:
		if !a.guard.Current(msg.ticket) {
			log.Debug().Str("selection", msg.ticket.Key.String()).Msg("dropping stale load")
			return a, nil
		}
		a.loading = false
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.err = nil
		a.records = msg.records
		a.editor.Reset(msg.records)
		a.editErr = nil
		a.selected = max(0, a.editor.Len()-1)
		a.overall = msg.overall
		a.tasks = msg.tasks
		a.resources = msg.resources
		a.taskState.clamp(len(a.visibleTasks()))
		return a, nil

	case movementMsg:
		if msg.seq != a.movementSeq {
			return a, nil
		}
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		m := msg.movement
		a.movement = &m
		a.moveState.cursor = min(a.moveState.cursor, max(0, len(m.Details)-1))
		return a, nil

	case spinner.TickMsg:
		if !a.loaded || a.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a *App) loadProjects() tea.Cmd {
	u, ok := a.currentUpload()
	if !ok {
		return nil
	}
	return loadProjectsCmd(a.src, u.ID)
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}
	if a.activeTab == tabTasks && a.taskState.searching {
		return a.updateTaskSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	var handled bool
	var cmd tea.Cmd
	switch a.activeTab {
	case tabForecast:
		handled = a.updateForecastKey(key)
	case tabTasks:
		handled, cmd = a.updateTasksKey(key)
	case tabMovement:
		handled, cmd = a.updateMovementKey(key)
	case tabSettings:
		handled, cmd = a.updateSettingsKey(key)
	}
	if handled {
		return a, cmd
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	case "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "u", "U":
		if len(a.uploads) > 1 {
			step := 1
			if key == "U" {
				step = -1
			}
			a.uploadIdx = (a.uploadIdx + step + len(a.uploads)) % len(a.uploads)
			return a, a.loadProjects()
		}
	case "n", "N":
		if len(a.projects) > 1 {
			step := 1
			if key == "N" {
				step = -1
			}
			a.projectIdx = (a.projectIdx + step + len(a.projects)) % len(a.projects)
			return a, a.reload()
		}
	case "p":
		a.period = a.period.Next()
		return a, a.reload()
	case "R":
		return a, loadUploadsCmd(a.src)
	default:
		if idx := components.TabIdxByKey(key); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !a.loaded || a.showHelp || a.setupForm != nil {
		return a, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabTasks {
			a.taskState.move(-1, len(a.visibleTasks()))
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == tabTasks {
			a.taskState.move(1, len(a.visibleTasks()))
		}
	case tea.MouseButtonLeft:
		if msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

// tabAtX returns the tab index at column x, or -1. Hitboxes follow the widths
// RenderTabBar draws, with one separator column between tabs.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		w := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1
	}
	return -1
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  xercost needs at least %d columns.\n",
		a.width, minTerminalWidth)
	h := max(a.height, 5)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	body := logoStyle.Render("◈ xercost") + subtitleStyle.Render(" · Schedule Cost Forecast") + "\n\n" +
		a.spinner.View() + subtitleStyle.Render(" Loading uploads...")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Selection", [][2]string{
			{"1-5 Tab", "Jump to / next tab"},
			{"u U", "Next / previous upload"},
			{"n N", "Next / previous project"},
			{"p", "Cycle period"},
			{"R", "Reload uploads"},
		}},
		{"Forecast", [][2]string{
			{"← →", "Select period"},
			{"↑ ↓ + -", "Move cumulative actual one tick"},
			{"r", "Reset what-if edits"},
		}},
		{"Tasks / Movement", [][2]string{
			{"/", "Search tasks"},
			{"j k", "Move cursor"},
			{"m c", "Match method / change filter"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-10s", bind[0])), descStyle.Render(bind[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) selectionLabel() string {
	u, ok := a.currentUpload()
	if !ok {
		return "no uploads"
	}
	label := u.FileName
	if p, ok := a.currentProject(); ok {
		label += " · " + p.ShortName
	}
	return label + " · " + string(a.period)
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)

	info := components.StatusInfo{
		Selection: a.selectionLabel(),
		Loading:   a.loading,
		Edits:     a.editor.Edits(),
	}
	if a.err != nil {
		info.Err = a.err.Error()
	}
	statusBar := components.RenderStatusBar(w, info)

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case len(a.uploads) == 0 && a.activeTab != tabSettings:
		content = components.ContentCard("No uploads",
			"Import XER files with `xercost import <dir>` and press R to reload.", cw)
	default:
		switch a.activeTab {
		case tabForecast:
			content = a.renderForecastTab(cw, contentH)
		case tabTasks:
			content = a.renderTasksTab(cw, contentH)
		case tabResources:
			content = a.renderResourcesTab(cw)
		case tabMovement:
			content = a.renderMovementTab(cw, contentH)
		case tabSettings:
			content = a.renderSettingsTab(cw)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

func loadUploadsCmd(src dashboard.Source) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		uploads, err := src.Uploads(ctx)
		return uploadsMsg{uploads: uploads, err: err}
	}
}

func loadProjectsCmd(src dashboard.Source, uploadID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		projects, err := src.Projects(ctx, uploadID)
		return projectsMsg{uploadID: uploadID, projects: projects, err: err}
	}
}

func loadSelectionCmd(src dashboard.Source, ticket forecast.Ticket) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		sel := dashboard.Selection{UploadID: ticket.Key.UploadID, ProjectID: ticket.Key.ProjectID}
		msg := selectionMsg{ticket: ticket}
		if msg.records, msg.err = src.Forecast(ctx, sel, ticket.Key.Period); msg.err != nil {
			return msg
		}
		if msg.overall, msg.err = src.Overall(ctx, sel); msg.err != nil {
			return msg
		}
		if msg.tasks, msg.err = src.Tasks(ctx, sel); msg.err != nil {
			return msg
		}
		msg.resources, msg.err = src.Resources(ctx, sel)
		return msg
	}
}

func loadMovementCmd(src dashboard.Source, seq int, q dashboard.MovementQuery) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		m, err := src.Movement(ctx, q)
		return movementMsg{seq: seq, movement: m, err: err}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func (a App) money(v float64) string {
	return cli.FormatMoney(v, a.cfg.General.Currency)
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with the background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
