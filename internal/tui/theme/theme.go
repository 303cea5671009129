// Package theme defines the color themes of the xercost dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme maps color roles to terminal colors.
type Theme struct {
	Name          string
	Background    lipgloss.Color // app background
	Surface       lipgloss.Color // cards and panels
	SurfaceBright lipgloss.Color // selected row
	Border        lipgloss.Color
	BorderAccent  lipgloss.Color // focused card, loading card
	TextDim       lipgloss.Color // hints, axes
	TextMuted     lipgloss.Color // labels
	TextPrimary   lipgloss.Color
	Accent        lipgloss.Color
	AccentBright  lipgloss.Color
	Green         lipgloss.Color
	Orange        lipgloss.Color
	Red           lipgloss.Color
	Yellow        lipgloss.Color
	Cyan          lipgloss.Color

	// Forecast chart series.
	Actual           lipgloss.Color
	Target           lipgloss.Color
	CumulativeActual lipgloss.Color
	CumulativeTarget lipgloss.Color
}

// Active is the theme every view renders with.
var Active = FlexokiDark

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:             "flexoki-dark",
	Background:       lipgloss.Color("#100F0F"),
	Surface:          lipgloss.Color("#1C1B1A"),
	SurfaceBright:    lipgloss.Color("#343331"),
	Border:           lipgloss.Color("#403E3C"),
	BorderAccent:     lipgloss.Color("#3AA99F"),
	TextDim:          lipgloss.Color("#575653"),
	TextMuted:        lipgloss.Color("#878580"),
	TextPrimary:      lipgloss.Color("#FFFCF0"),
	Accent:           lipgloss.Color("#3AA99F"),
	AccentBright:     lipgloss.Color("#5BC8BE"),
	Green:            lipgloss.Color("#879A39"),
	Orange:           lipgloss.Color("#DA702C"),
	Red:              lipgloss.Color("#D14D41"),
	Yellow:           lipgloss.Color("#D0A215"),
	Cyan:             lipgloss.Color("#24837B"),
	Actual:           lipgloss.Color("#4385BE"),
	Target:           lipgloss.Color("#879A39"),
	CumulativeActual: lipgloss.Color("#DA702C"),
	CumulativeTarget: lipgloss.Color("#CE5D97"),
}

// TokyoNight is a cool blue theme.
var TokyoNight = Theme{
	Name:             "tokyo-night",
	Background:       lipgloss.Color("#1A1B26"),
	Surface:          lipgloss.Color("#24283B"),
	SurfaceBright:    lipgloss.Color("#414868"),
	Border:           lipgloss.Color("#565F89"),
	BorderAccent:     lipgloss.Color("#7AA2F7"),
	TextDim:          lipgloss.Color("#565F89"),
	TextMuted:        lipgloss.Color("#A9B1D6"),
	TextPrimary:      lipgloss.Color("#C0CAF5"),
	Accent:           lipgloss.Color("#7AA2F7"),
	AccentBright:     lipgloss.Color("#A9C1FF"),
	Green:            lipgloss.Color("#9ECE6A"),
	Orange:           lipgloss.Color("#FF9E64"),
	Red:              lipgloss.Color("#F7768E"),
	Yellow:           lipgloss.Color("#E0AF68"),
	Cyan:             lipgloss.Color("#7DCFFF"),
	Actual:           lipgloss.Color("#7AA2F7"),
	Target:           lipgloss.Color("#9ECE6A"),
	CumulativeActual: lipgloss.Color("#FF9E64"),
	CumulativeTarget: lipgloss.Color("#BB9AF7"),
}

// Terminal uses the 16 ANSI colors only.
var Terminal = Theme{
	Name:             "terminal",
	Background:       lipgloss.Color("0"),
	Surface:          lipgloss.Color("0"),
	SurfaceBright:    lipgloss.Color("8"),
	Border:           lipgloss.Color("8"),
	BorderAccent:     lipgloss.Color("6"),
	TextDim:          lipgloss.Color("8"),
	TextMuted:        lipgloss.Color("7"),
	TextPrimary:      lipgloss.Color("15"),
	Accent:           lipgloss.Color("6"),
	AccentBright:     lipgloss.Color("14"),
	Green:            lipgloss.Color("2"),
	Orange:           lipgloss.Color("3"),
	Red:              lipgloss.Color("1"),
	Yellow:           lipgloss.Color("11"),
	Cyan:             lipgloss.Color("6"),
	Actual:           lipgloss.Color("4"),
	Target:           lipgloss.Color("2"),
	CumulativeActual: lipgloss.Color("3"),
	CumulativeTarget: lipgloss.Color("5"),
}

// All lists the selectable themes.
var All = []Theme{FlexokiDark, TokyoNight, Terminal}

// Names returns the names of All, in order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
