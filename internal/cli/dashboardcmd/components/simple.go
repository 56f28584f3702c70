package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/gcstr/cardtrack/internal/cli/dashboardcmd/theme"
)

// RenderSimple renders a single line in the format "key: value" with styles:
// - the "key: " part uses theme.FgHalfMuted
// - the value uses theme.FgBase and is italic
func RenderSimple(key, value string) string {
	return RenderSimpleColored(key, value, theme.FgBase)
}

// RenderSimpleColored is RenderSimple with a custom value color.
func RenderSimpleColored(key, value string, color lipgloss.Color) string {
	keyStyled := lipgloss.NewStyle().Foreground(theme.FgHalfMuted).Render(key + ": ")
	valueStyled := lipgloss.NewStyle().Foreground(color).Italic(true).Render(value)
	return keyStyled + valueStyled
}
