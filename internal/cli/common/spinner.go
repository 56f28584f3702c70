package common

import (
	"github.com/gcstr/cardtrack/internal/ui"
)

// SpinnerOperation runs an operation with a spinner, automatically handling start/stop.
func SpinnerOperation(pr ui.StdPrinter, message string, operation func() error) error {
	spinner := ui.NewSpinner(pr.Out, message)
	spinner.Start()
	err := operation()
	spinner.Stop()
	return err
}

// DynamicSpinnerOperation runs an operation with a spinner that can be relabeled.
func DynamicSpinnerOperation(pr ui.StdPrinter, message string, operation func(*ui.Spinner) error) error {
	spinner := ui.NewSpinner(pr.Out, message)
	spinner.Start()
	err := operation(spinner)
	spinner.Stop()
	return err
}
