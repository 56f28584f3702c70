package ui

import (
	"fmt"
	"regexp"
	"strings"

	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/gcstr/cardtrack/internal/tracker"
)

var (
	styleDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	styleCurrent = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // blue
	stylePending = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // grey
	styleAlert   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red

	styleInfoPrefix  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true) // blue
	styleWarnPrefix  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true) // yellow
	styleErrorPrefix = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)  // red

	styleSectionTitle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#3478F6", Dark: "#4A9EFF"}).
				Padding(0, 0)

	styleLabel = lipgloss.NewStyle().Bold(true)

	styleItalicName = lipgloss.NewStyle().Italic(true)
)

// Italic renders the given string in italic style (used for names and paths).
func Italic(s string) string {
	return styleItalicName.Render(s)
}

// StepMark is how a tracker step is drawn relative to the current step.
type StepMark int

const (
	Pending StepMark = iota
	Current
	Done
)

// MarkFor classifies step against the current tracker position.
func MarkFor(step, current tracker.Step) StepMark {
	switch {
	case step < current:
		return Done
	case step == current:
		return Current
	default:
		return Pending
	}
}

func iconFor(m StepMark) string {
	switch m {
	case Done:
		return styleDone.Render("✓")
	case Current:
		return styleCurrent.Render("●")
	case Pending:
		return stylePending.Render("○")
	}
	return ""
}

// RenderSteps renders the tracker as one line per step, skipping the
// "no request" start node.
func RenderSteps(p tracker.TrackerProps) string {
	var b strings.Builder
	b.WriteString(styleSectionTitle.Render("Progress"))
	b.WriteString("\n")
	for _, s := range tracker.Steps[1:] {
		mark := MarkFor(s, p.CurrentStep)
		if s == tracker.StepReadyForPickup && p.ReadyForPickup {
			mark = Done
		}
		b.WriteString("  ")
		b.WriteString(iconFor(mark))
		b.WriteString(" ")
		label := s.Label()
		if mark == Current && s == tracker.StepPrinting && p.PrintingActive {
			label += " (in progress)"
		}
		b.WriteString(label)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderRejected renders a rejected card block for non-interactive output.
func RenderRejected(card *tracker.RejectedCard) string {
	if card == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(styleAlert.Bold(true).Render("Request rejected"))
	b.WriteString("\n")
	b.WriteString(Field("Name", card.Name))
	b.WriteString(Field("Reason", card.RejectionReason))
	if !card.CreatedAt.IsZero() {
		b.WriteString(Field("Submitted", card.CreatedAt.Local().Format("2006-01-02 15:04")))
	}
	return b.String()
}

// Field renders an indented "label: value" line.
func Field(label, value string) string {
	return fmt.Sprintf("  %s %s\n", styleLabel.Render(label+":"), value)
}

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripANSI removes ANSI color codes for snapshot testing when needed.
func StripANSI(s string) string {
	return ansiRegexp.ReplaceAllString(s, "")
}

// clearCurrentLineIfTTY clears the current terminal line when writing to a TTY.
func clearCurrentLineIfTTY(w io.Writer) {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		_, _ = fmt.Fprint(w, "\r\x1b[2K")
	}
}

// Printer centralizes user-facing output. It routes informational messages to
// stdout and warnings/errors to stderr.
type Printer interface {
	// Plain writes to stdout without any prefix or styling.
	Plain(format string, a ...any)
	// Info writes to stdout with an [info] prefix.
	Info(format string, a ...any)
	// Warn writes to stderr with a [warn] prefix.
	Warn(format string, a ...any)
	// Error writes to stderr with an [error] prefix.
	Error(format string, a ...any)
}

// StdPrinter writes Info to Out and Warn/Error to Err.
type StdPrinter struct {
	Out io.Writer
	Err io.Writer
}

func (p StdPrinter) Plain(format string, a ...any) {
	if p.Out == nil {
		return
	}
	_, _ = fmt.Fprintf(p.Out, format+"\n", a...)
}

func (p StdPrinter) Info(format string, a ...any) {
	if p.Out == nil {
		return
	}
	// Avoid mixing with any active spinner on TTY
	clearCurrentLineIfTTY(p.Out)
	prefix := styleInfoPrefix.Render("[info]")
	_, _ = fmt.Fprintf(p.Out, "%s "+format+"\n", append([]any{prefix}, a...)...)
}

func (p StdPrinter) Warn(format string, a ...any) {
	if p.Err == nil {
		return
	}
	clearCurrentLineIfTTY(p.Err)
	prefix := styleWarnPrefix.Render("[warn]")
	_, _ = fmt.Fprintf(p.Err, "%s "+format+"\n", append([]any{prefix}, a...)...)
}

func (p StdPrinter) Error(format string, a ...any) {
	if p.Err == nil {
		return
	}
	clearCurrentLineIfTTY(p.Err)
	prefix := styleErrorPrefix.Render("[error]")
	_, _ = fmt.Fprintf(p.Err, "%s "+format+"\n", append([]any{prefix}, a...)...)
}

// NoopPrinter discards all output; useful as a default or in tests.
type NoopPrinter struct{}

func (NoopPrinter) Plain(string, ...any) {}
func (NoopPrinter) Info(string, ...any)  {}
func (NoopPrinter) Warn(string, ...any)  {}
func (NoopPrinter) Error(string, ...any) {}

// SectionTitle renders a bold section header for grouped output.
func SectionTitle(title string) string {
	return styleSectionTitle.Render(title)
}

// SuccessMark is the green check printed after a confirmed prompt.
func SuccessMark() string { return styleDone.Render("✓") }

// RedText renders s in the alert color.
func RedText(s string) string { return styleAlert.Render(s) }
