package ackcmd

import (
	"context"
	"fmt"
	"io"

	"github.com/gcstr/cardtrack/internal/api"
	"github.com/gcstr/cardtrack/internal/apperr"
	"github.com/gcstr/cardtrack/internal/cli/common"
	"github.com/gcstr/cardtrack/internal/cli/statuscmd"
	"github.com/gcstr/cardtrack/internal/tracker"
	"github.com/spf13/cobra"
)

// Transferer is the write side of the card office API.
type Transferer interface {
	common.Source
	TransferAccepted(ctx context.Context, registerNumber string) (api.TransferResult, error)
	TransferRejected(ctx context.Context, registerNumber string) (api.TransferResult, error)
}

// New creates the `ack` command with its `ready` and `rejected` subcommands.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ack",
		Short: "Acknowledge a ready or rejected card",
	}
	cmd.PersistentFlags().Bool("yes", false, "Skip confirmation prompt")
	cmd.AddCommand(newReadyCmd(), newRejectedCmd())
	return cmd
}

func newReadyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ready",
		Short: "Confirm you collected your card and move it to your history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, tracker.PopupReady)
		},
	}
}

func newRejectedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rejected",
		Short: "Acknowledge a rejected request and move it to your history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, tracker.PopupRejected)
		},
	}
}

func run(cmd *cobra.Command, kind tracker.PopupKind) error {
	cc, err := common.SetupCLIContext(cmd, common.SetupOptions{RequireIdentity: true})
	if err != nil {
		return err
	}
	defer func() { _ = cc.Close() }()
	yes, _ := cmd.Flags().GetBool("yes")
	return Acknowledge(cmd, cc, cc.Client, kind, yes)
}

// Acknowledge syncs the current state, checks that the matching popup would be
// showing, asks for confirmation and performs the transfer. The tracker's
// in-flight lock and popup precedence apply exactly as on the dashboard.
func Acknowledge(cmd *cobra.Command, cc *common.CLIContext, client Transferer, kind tracker.PopupKind, yes bool) error {
	const op = "ackcmd.Acknowledge"
	ctx := cc.Ctx
	st := tracker.New(cc.RegisterNumber())
	if statusErr, rejectedErr := common.Sync(ctx, client, &st); statusErr != nil {
		return statusErr
	} else if rejectedErr != nil && kind == tracker.PopupRejected {
		return rejectedErr
	}

	var begin func() bool
	var message string
	switch kind {
	case tracker.PopupReady:
		begin = st.BeginAckReady
		message = fmt.Sprintf("Confirm that %s collected the ID card.", st.Identity)
	case tracker.PopupRejected:
		begin = st.BeginAckRejected
		message = fmt.Sprintf("Acknowledge the rejected request for %s.", st.Identity)
	default:
		return apperr.New(op, apperr.Internal, "unknown acknowledgement kind %d", kind)
	}
	if !begin() {
		return notShowing(op, st, kind)
	}

	ok, err := common.GetConfirmation(cmd, cc.Printer, common.ConfirmationOptions{SkipConfirmation: yes, Message: message})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	session := st.Session
	switch kind {
	case tracker.PopupReady:
		_, err = client.TransferAccepted(ctx, st.Identity)
		st.FinishAckReady(session, err)
	case tracker.PopupRejected:
		_, err = client.TransferRejected(ctx, st.Identity)
		st.FinishAckRejected(session, err)
	}
	if err != nil {
		return err
	}

	if kind == tracker.PopupReady {
		cc.Printer.Info("pickup confirmed; the card was moved to your history")
	} else {
		cc.Printer.Info("rejection acknowledged; the request was moved to your history")
	}
	report, err := statuscmd.Once(ctx, client, st.Identity, common.TerminalWidth(cmd))
	if err != nil {
		cc.Printer.Warn("could not refresh status: %v", err)
		return nil
	}
	_, _ = io.WriteString(cmd.OutOrStdout(), "\n"+report)
	return nil
}

func notShowing(op string, st tracker.State, kind tracker.PopupKind) error {
	if kind == tracker.PopupReady && st.Popup.Kind == tracker.PopupRejected {
		return apperr.New(op, apperr.Precondition, "a rejected request must be acknowledged first: run 'cardtrack ack rejected'")
	}
	if kind == tracker.PopupReady {
		return apperr.New(op, apperr.Precondition, "your card is not ready for pickup")
	}
	return apperr.New(op, apperr.Precondition, "there is no rejected request to acknowledge")
}
