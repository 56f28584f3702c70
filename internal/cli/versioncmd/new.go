package versioncmd

import (
	"fmt"
	"runtime"

	"github.com/gcstr/cardtrack/internal/cli/buildinfo"
	"github.com/spf13/cobra"
)

// New creates the `version` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show detailed version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			orUnknown := func(s string) string {
				if s == "" {
					return "<unknown>"
				}
				return s
			}
			_, _ = fmt.Fprintf(out, "Cardtrack\n")
			_, _ = fmt.Fprintf(out, " Version:\t%s\n", buildinfo.Version())
			_, _ = fmt.Fprintf(out, " Go version:\t%s\n", buildinfo.GoVersion())
			_, _ = fmt.Fprintf(out, " Git commit:\t%s\n", orUnknown(buildinfo.Commit()))
			_, _ = fmt.Fprintf(out, " Built:\t\t%s\n", orUnknown(buildinfo.BuildDate()))
			_, _ = fmt.Fprintf(out, " OS/Arch:\t%s/%s\n", runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
