package statuscmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gcstr/cardtrack/internal/cli/common"
	"github.com/gcstr/cardtrack/internal/tracker"
	"github.com/gcstr/cardtrack/internal/ui"
	"github.com/spf13/cobra"
)

// New creates the `status` command.
func New() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the progress of your ID card request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := common.SetupCLIContext(cmd, common.SetupOptions{RequireIdentity: true})
			if err != nil {
				return err
			}
			defer func() { _ = cc.Close() }()

			width := common.TerminalWidth(cmd)
			if !watch {
				st := tracker.New(cc.RegisterNumber())
				var statusErr error
				err := common.SpinnerOperation(cc.Printer, "Fetching status...", func() error {
					statusErr, _ = common.Sync(cc.Ctx, cc.Client, &st)
					return statusErr
				})
				if err != nil {
					return err
				}
				_, _ = io.WriteString(cmd.OutOrStdout(), Render(st, width))
				return nil
			}
			return runWatch(cc, cmd.OutOrStdout(), width)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep polling and print the status whenever it changes")
	return cmd
}

// runWatch polls at the configured interval until the context is cancelled.
// Fetch failures are reported as warnings; the loop keeps going.
func runWatch(cc *common.CLIContext, out io.Writer, width int) error {
	st := tracker.New(cc.RegisterNumber())
	interval := cc.Config.Polling.StatusInterval
	var last string
	for {
		statusErr, _ := common.Sync(cc.Ctx, cc.Client, &st)
		if statusErr != nil && cc.Ctx.Err() == nil {
			cc.Printer.Warn("status fetch failed: %v", statusErr)
		}
		if report := Render(st, width); report != last {
			if last != "" {
				_, _ = fmt.Fprintln(out)
			}
			_, _ = fmt.Fprintf(out, "%s\n", ui.SectionTitle(time.Now().Format("15:04:05")))
			_, _ = io.WriteString(out, report)
			last = report
		}
		select {
		case <-cc.Ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// Render formats st as a plain report.
func Render(st tracker.State, width int) string {
	var b strings.Builder
	b.WriteString(ui.Field("Register number", st.Identity))
	b.WriteString(ui.Field("Request", requestLabel(st)))
	barWidth := ui.DefaultBarWidth
	if width > 0 && width-20 < barWidth {
		barWidth = width - 20
	}
	b.WriteString("  ")
	b.WriteString(ui.NewStepBar(barWidth).View(st.Tracker()))
	b.WriteString("\n\n")
	b.WriteString(ui.RenderSteps(st.Tracker()))

	form := st.Form()
	state := "open"
	if form.Disabled {
		state = "closed"
	}
	b.WriteString("\n")
	b.WriteString(ui.Field("Form", fmt.Sprintf("%s (%s)", form.ButtonText, state)))

	switch st.Popup.Kind {
	case tracker.PopupRejected:
		b.WriteString("\n")
		b.WriteString(ui.RenderRejected(st.Popup.Card))
		b.WriteString("  Run 'cardtrack ack rejected' to move it to your history.\n")
	case tracker.PopupReady:
		b.WriteString("\n")
		b.WriteString(ui.SectionTitle("Your card is ready for pickup"))
		b.WriteString("\n  Run 'cardtrack ack ready' once you have collected it.\n")
	case tracker.PopupNone:
	}
	return b.String()
}

func requestLabel(st tracker.State) string {
	switch {
	case st.Step == tracker.StepNoRequest && st.RejectedCard == nil:
		return "none"
	case st.Step == tracker.StepNoRequest:
		return "rejected"
	default:
		return st.Step.Label()
	}
}

// Once runs a single sync and returns the rendered report. It is used by
// commands that print the status after acting on it.
func Once(ctx context.Context, src common.Source, registerNumber string, width int) (string, error) {
	st := tracker.New(registerNumber)
	statusErr, _ := common.Sync(ctx, src, &st)
	return Render(st, width), statusErr
}
