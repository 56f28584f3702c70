package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gcstr/cardtrack/internal/apperr"
	"github.com/gcstr/cardtrack/internal/cli/ackcmd"
	"github.com/gcstr/cardtrack/internal/cli/buildinfo"
	"github.com/gcstr/cardtrack/internal/cli/common"
	"github.com/gcstr/cardtrack/internal/cli/configcmd"
	"github.com/gcstr/cardtrack/internal/cli/dashboardcmd"
	"github.com/gcstr/cardtrack/internal/cli/statuscmd"
	"github.com/gcstr/cardtrack/internal/cli/versioncmd"
	"github.com/spf13/cobra"
)

// verbose controls extra error detail printing.
var verbose bool

// Execute runs the root command and handles error formatting and exit codes.
func Execute(ctx context.Context) int {
	cmd := newRootCmd()
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	printUserFriendly(cmd.ErrOrStderr(), err)
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case apperr.IsKind(err, apperr.InvalidInput):
		return 2
	case apperr.IsKind(err, apperr.Unavailable) || apperr.IsKind(err, apperr.Timeout):
		return 69
	case apperr.IsKind(err, apperr.External):
		return 70
	default:
		return 1
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cardtrack",
		Short:         "Follow and manage your ID card reissue request",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	common.RegisterGlobalFlags(cmd)
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose error output")

	cmd.AddCommand(dashboardcmd.New())
	cmd.AddCommand(statuscmd.New())
	cmd.AddCommand(ackcmd.New())
	cmd.AddCommand(configcmd.New())
	cmd.AddCommand(versioncmd.New())

	cmd.SetHelpTemplate(cmd.HelpTemplate() + "\n\nProject home: https://github.com/gcstr/cardtrack\n")

	cmd.SetVersionTemplate(fmt.Sprintf("%s\n", buildinfo.VersionSimple()))
	cmd.Version = buildinfo.VersionSimple()

	return cmd
}

func printUserFriendly(w io.Writer, err error) {
	var e *apperr.E
	if errors.As(err, &e) {
		if e.Msg != "" {
			_, _ = fmt.Fprintf(w, "Error: %s\n", e.Msg)
		} else {
			_, _ = fmt.Fprintf(w, "Error: %s\n", err.Error())
		}
		if verbose {
			_, _ = fmt.Fprintln(w, "Detail:", err)
		}
		switch {
		case apperr.IsKind(err, apperr.Unavailable) || apperr.IsKind(err, apperr.Timeout):
			_, _ = fmt.Fprintln(w, "Hint: Is the card office reachable? Check server.base_url in cardtrack.yaml or --server.")
		case apperr.IsKind(err, apperr.Unauthorized):
			_, _ = fmt.Fprintln(w, "Hint: Set CARDTRACK_TOKEN or configure auth.sops in cardtrack.yaml.")
		}
		return
	}
	_, _ = fmt.Fprintln(w, "Error:", err)
}
