package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cruxy/internal/plan"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	itemStyle    = lipgloss.NewStyle().PaddingLeft(2)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderBuildPreview shows the synthesized plan before confirmation, mirroring
// what a reviewer needs: roles first, then the structure task by task.
func renderBuildPreview(theme string, p *plan.BuildPlan, reset bool) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Server Build Plan Preview"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Theme: %q\n\n", theme))

	if len(p.Roles) > 0 {
		b.WriteString(sectionStyle.Render("🔑 Roles to be Created"))
		b.WriteString("\n")
		for _, role := range p.Roles {
			b.WriteString(itemStyle.Render("• " + role))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("🏗️ Structure"))
	b.WriteString("\n")
	for _, task := range p.Tasks {
		switch task.Kind {
		case plan.TaskCreateCategory:
			b.WriteString(itemStyle.Render("📁 " + task.Name))
		case plan.TaskCreateChannel:
			line := fmt.Sprintf("# %s (%s, %s)", task.Name, task.ChannelKind, task.Permissions.Kind)
			if task.Category != "" {
				line += " in " + task.Category
			}
			b.WriteString(itemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if reset {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("⚠️ Existing channels and roles will be wiped first."))
		b.WriteString("\n")
	}
	return b.String()
}
