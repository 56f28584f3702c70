package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gcstr/cardtrack/internal/cli/dashboardcmd/theme"
)

// patternChar fills the space after a header title.
const patternChar = "/"

// RenderHeader renders a single-line header like "◇ Title /////" that fills the full
// content width of the parent container, never wrapping. The containerWidth is the
// container's width; totalHorizontalPadding is subtracted from it.
func RenderHeader(title string, containerWidth int, totalHorizontalPadding int) string {
	return renderHeader(title, containerWidth, totalHorizontalPadding, theme.FgHalfMuted, theme.FgSubtle)
}

// RenderHeaderActive is RenderHeader with highlighted colors, used for the
// section that currently takes input.
func RenderHeaderActive(title string, containerWidth int, totalHorizontalPadding int) string {
	return renderHeader(title, containerWidth, totalHorizontalPadding, theme.Primary, theme.FgMuted)
}

func renderHeader(title string, containerWidth, totalHorizontalPadding int, titleColor, fillColor lipgloss.Color) string {
	contentWidth := containerWidth - totalHorizontalPadding
	if contentWidth <= 0 {
		return ""
	}
	base := fmt.Sprintf("◇ %s ", title)
	baseStyled := lipgloss.NewStyle().Foreground(titleColor).Render(base)

	fill := contentWidth - lipgloss.Width(base)
	if fill < 0 {
		// Title too long: truncate to the exact width
		return lipgloss.NewStyle().Width(contentWidth).MaxWidth(contentWidth).MaxHeight(1).Render(baseStyled)
	}
	return baseStyled + lipgloss.NewStyle().Foreground(fillColor).Render(strings.Repeat(patternChar, fill))
}
