package ui

import (
	"fmt"

	bubbleprogress "github.com/charmbracelet/bubbles/progress"

	"github.com/gcstr/cardtrack/internal/tracker"
)

// DefaultBarWidth is used when the terminal width is unknown.
const DefaultBarWidth = 40

// StepBar renders the tracker position as a gradient progress bar followed by
// "n/4 <label>". It is static: the bar reflects the last known step only.
type StepBar struct {
	model bubbleprogress.Model
}

// NewStepBar builds a bar of the given width. Widths below 10 fall back to
// DefaultBarWidth.
func NewStepBar(width int) StepBar {
	m := bubbleprogress.New(bubbleprogress.WithScaledGradient("#3478F6", "#53B6F9"), bubbleprogress.WithoutPercentage())
	if width < 10 {
		width = DefaultBarWidth
	}
	m.Width = width
	return StepBar{model: m}
}

// Fraction is the completed share of the tracker for step.
func Fraction(step tracker.Step) float64 {
	last := tracker.Steps[len(tracker.Steps)-1]
	frac := float64(step) / float64(last)
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}

// View renders the bar for p.
func (b StepBar) View(p tracker.TrackerProps) string {
	last := tracker.Steps[len(tracker.Steps)-1]
	return fmt.Sprintf("%s %d/%d %s", b.model.ViewAs(Fraction(p.CurrentStep)), p.CurrentStep, last, p.CurrentStep.Label())
}
