package dashboardcmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gcstr/cardtrack/internal/cli/dashboardcmd/components"
	"github.com/gcstr/cardtrack/internal/cli/dashboardcmd/theme"
	"github.com/gcstr/cardtrack/internal/tracker"
	"github.com/gcstr/cardtrack/internal/ui"
)

func (m model) View() string {
	if m.quitting {
		return ""
	}
	if m.state.Popup.Open() {
		return m.renderPopup()
	}

	width := m.contentWidth()
	sections := []string{
		"",
		components.RenderAppTitle("cardtrack") + m.renderVersion(),
		"",
		m.renderInfo(width),
		"",
		components.RenderHeaderActive("Tracker", width, totalHorizontalPadding),
		"",
		m.renderTracker(),
		"",
		components.RenderHeader("Request", width, totalHorizontalPadding),
		"",
		m.renderRequest(),
		"",
		components.RenderHeader("History", width, totalHorizontalPadding),
		"",
		m.renderHistory(),
	}
	if m.state.Notice != "" {
		sections = append(sections, "", lipgloss.NewStyle().Foreground(theme.Error).Render("! "+m.state.Notice))
	}
	if m.editing {
		sections = append(sections, "", m.renderInput())
	}
	body := lipgloss.NewStyle().
		Padding(paddingVertical, paddingHorizontal).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return m.fill(lipgloss.JoinVertical(lipgloss.Left, body, m.renderHelp()))
}

// fill paints the whole terminal with the base background. Before the first
// WindowSizeMsg the content is returned as is.
func (m model) fill(content string) string {
	if m.width <= 0 || m.height <= 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(theme.BgBase))
}

func (m model) contentWidth() int {
	w := m.width
	if w <= 0 || w > maxContentWidth {
		w = maxContentWidth
	}
	return w
}

func (m model) renderVersion() string {
	if m.opts.Version == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(theme.FgMuted).Render(" v" + strings.TrimPrefix(m.opts.Version, "v"))
}

func (m model) renderInfo(width int) string {
	reg := m.state.Identity
	if reg == "" {
		reg = "not set (press i)"
	}
	lines := []string{
		components.RenderSimple("Register number", reg),
		components.RenderSimple("Server", m.opts.Server),
	}
	switch {
	case m.busy():
		lines = append(lines, components.RenderSimple("Last synced", m.spinner.View()+" syncing"))
	case m.lastErr != "":
		lines = append(lines, components.RenderSimpleColored("Last synced", m.lastErr, theme.Error))
	case !m.lastSynced.IsZero():
		lines = append(lines, components.RenderSimple("Last synced", m.lastSynced.Format("15:04:05")))
	default:
		lines = append(lines, components.RenderSimple("Last synced", "never"))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(lines, "\n"))
}

func (m model) renderTracker() string {
	props := m.state.Tracker()
	pulse := ""
	if props.PrintingActive {
		pulse = strings.TrimSpace(m.spinner.View())
	}
	steps := components.RenderSteps(props, pulse)
	label := props.CurrentStep.Label()
	if props.CurrentStep == tracker.StepPrinting && props.PrintingActive {
		label += " (in progress)"
	}
	bar := m.bar.ViewAs(ui.Fraction(props.CurrentStep))
	progress := fmt.Sprintf("%s %d/%d %s", bar, int(props.CurrentStep), int(tracker.StepReadyForPickup),
		lipgloss.NewStyle().Foreground(theme.FgHalfMuted).Render(label))
	return steps + "\n\n" + progress
}

func (m model) renderRequest() string {
	form := m.state.Form()
	button := lipgloss.NewStyle().Padding(0, 2)
	hint := lipgloss.NewStyle().Foreground(theme.FgMuted)
	if form.Disabled {
		reason := "submissions are closed"
		switch {
		case !m.state.HasIdentity():
			reason = "set a register number first"
		case m.state.PrintingActive:
			reason = "your card is being printed"
		}
		return button.Foreground(theme.FgMuted).Background(theme.FgSubtle).Render(form.ButtonText) +
			"  " + hint.Render(reason)
	}
	return button.Foreground(theme.FgSelected).Background(theme.Primary).Bold(true).Render(form.ButtonText) +
		"  " + hint.Render("press s to submit")
}

func (m model) renderHistory() string {
	h := m.state.History()
	muted := lipgloss.NewStyle().Foreground(theme.FgHalfMuted)
	if h.RegisterNumber == "" {
		return muted.Render("No register number set.")
	}
	return muted.Render("Previous requests for " + h.RegisterNumber + " are listed at " + m.opts.Server)
}

func (m model) renderInput() string {
	out := components.RenderSimple("New register number", "") + "\n" + m.input.View()
	if m.inputErr != "" {
		out += "\n" + lipgloss.NewStyle().Foreground(theme.Error).Render(m.inputErr)
	}
	return out
}

func (m model) renderPopup() string {
	w := popupWidth
	if m.width > 0 && m.width < w {
		w = m.width
	}
	var box string
	switch m.state.Popup.Kind {
	case tracker.PopupRejected:
		footer := "a / enter  acknowledge"
		if m.state.InFlight.Rejected {
			footer = m.spinner.View() + " Acknowledging..."
		}
		box = components.RenderPopup("Request rejected", rejectedBody(m.state.Popup.Card), m.popupFooter(footer), theme.Error, w)
	case tracker.PopupReady:
		footer := "a / enter  confirm pickup"
		if m.state.InFlight.Accepted {
			footer = m.spinner.View() + " Acknowledging..."
		}
		body := "Your new ID card is ready for pickup.\nCollect it at the card office."
		box = components.RenderPopup("Ready for pickup", body, m.popupFooter(footer), theme.Success, w)
	}
	if m.width <= 0 || m.height <= 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceBackground(theme.BgBase))
}

func (m model) popupFooter(footer string) string {
	if m.state.Notice == "" {
		return footer
	}
	return lipgloss.NewStyle().Foreground(theme.Error).Render(m.state.Notice) + "\n" + footer
}

func rejectedBody(card *tracker.RejectedCard) string {
	if card == nil {
		return "Your request was rejected."
	}
	lines := []string{
		components.RenderSimple("Name", card.Name),
		components.RenderSimple("Reason", card.RejectionReason),
	}
	if !card.CreatedAt.IsZero() {
		lines = append(lines, components.RenderSimple("Submitted", card.CreatedAt.Local().Format("2006-01-02 15:04")))
	}
	return strings.Join(lines, "\n")
}

func (m model) renderHelp() string {
	var view string
	if m.editing {
		view = m.help.View(editingKeys{m.keys})
	} else {
		view = m.help.View(m.keys)
	}
	return lipgloss.NewStyle().Padding(0, paddingHorizontal).Render(view)
}
