package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gcstr/cardtrack/internal/cli/dashboardcmd/theme"
	"github.com/gcstr/cardtrack/internal/tracker"
)

// RenderSteps draws the tracker as connected nodes:
//
//	● Submitted ── ● Under review ── ◉ Printing ── ○ Ready for pickup
//
// Completed steps are green, the current step is highlighted and pulses
// with the given frame while printing is active.
func RenderSteps(p tracker.TrackerProps, pulse string) string {
	done := lipgloss.NewStyle().Foreground(theme.Success)
	current := lipgloss.NewStyle().Foreground(theme.Info).Bold(true)
	pending := lipgloss.NewStyle().Foreground(theme.FgMuted)
	label := lipgloss.NewStyle().Foreground(theme.FgBase)
	muted := lipgloss.NewStyle().Foreground(theme.FgHalfMuted)

	parts := make([]string, 0, len(tracker.Steps)-1)
	for _, s := range tracker.Steps[1:] {
		var node string
		switch {
		case s < p.CurrentStep || (s == tracker.StepReadyForPickup && p.ReadyForPickup):
			node = done.Render("●") + " " + label.Render(s.Label())
		case s == p.CurrentStep:
			icon := "◉"
			if s == tracker.StepPrinting && p.PrintingActive && pulse != "" {
				icon = pulse
			}
			node = current.Render(icon) + " " + current.Render(s.Label())
		default:
			node = pending.Render("○") + " " + muted.Render(s.Label())
		}
		parts = append(parts, node)
	}
	return strings.Join(parts, pending.Render(" ── "))
}
