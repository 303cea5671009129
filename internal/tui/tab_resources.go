package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/xercost/internal/tui/components"
	"github.com/theirongolddev/xercost/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderResourcesTab(cw int) string {
	t := theme.Active

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	if len(a.resources) == 0 {
		return components.ContentCard("Resource Costs", mutedStyle.Render("No resource assignments"), cw)
	}

	innerW := components.CardInnerWidth(cw)
	const moneyW, typeW = 14, 10
	barW := max(innerW/4, 10)
	nameW := max(innerW-typeW-3*(moneyW+1)-barW-3, 12)

	peak := 0.0
	for _, r := range a.resources {
		peak = max(peak, r.ActualCost, r.TargetCost)
	}
	if peak == 0 {
		peak = 1
	}

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-*s %*s %*s %*s  %s",
		nameW, "Resource", typeW, "Type", moneyW, "Actual", moneyW, "Target", moneyW, "Remaining", "Actual / Target")))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")

	for _, r := range a.resources {
		name := r.ResourceName
		if name == "" {
			name = r.ResourceID
		}
		body.WriteString(nameStyle.Render(fmt.Sprintf("%-*s %-*s %*s %*s %*s",
			nameW, truncStr(name, nameW),
			typeW, truncStr(resourceType(r.ResourceType), typeW),
			moneyW, a.money(r.ActualCost),
			moneyW, a.money(r.TargetCost),
			moneyW, a.money(r.RemainCost))))
		body.WriteString(space.Render("  "))
		body.WriteString(costBar(r.ActualCost, r.TargetCost, peak, barW))
		body.WriteString("\n")
	}
	return components.ContentCard(fmt.Sprintf("Resource Costs (%d)", len(a.resources)), body.String(), cw)
}

// costBar draws actual spend over a dim track reaching to target.
func costBar(actual, target, peak float64, width int) string {
	t := theme.Active
	aw := int(actual / peak * float64(width))
	tw := max(int(target/peak*float64(width)), aw)

	color := t.TextDim
	if target > 0 {
		color = components.ColorForSpend(actual / target)
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(strings.Repeat("█", aw)) +
		lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render(strings.Repeat("░", tw-aw))
}

func resourceType(rt string) string {
	switch rt {
	case "RT_Labor":
		return "Labor"
	case "RT_Equip":
		return "Nonlabor"
	case "RT_Mat":
		return "Material"
	}
	return rt
}
