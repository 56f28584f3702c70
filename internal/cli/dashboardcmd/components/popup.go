package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/gcstr/cardtrack/internal/cli/dashboardcmd/theme"
)

// RenderPopup renders a bordered modal with a colored title line, a body and
// a muted footer. Width is the outer width; it is clamped to at least 24.
func RenderPopup(title, body, footer string, accent lipgloss.Color, width int) string {
	if width < 24 {
		width = 24
	}
	titleStyled := lipgloss.NewStyle().Foreground(accent).Bold(true).Render(title)
	bodyStyled := lipgloss.NewStyle().Foreground(theme.FgBase).Render(body)
	content := titleStyled + "\n\n" + bodyStyled
	if footer != "" {
		content += "\n\n" + lipgloss.NewStyle().Foreground(theme.FgHalfMuted).Render(footer)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(1, 2).
		Width(width - 2).
		Render(content)
}
