package common

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ttyStatus reports whether the command's stdin and stdout are terminals.
type ttyStatus struct {
	In  bool
	Out bool
}

// detectTTY checks whether cmd's stdin and stdout are connected to a terminal.
func detectTTY(cmd *cobra.Command) ttyStatus {
	var s ttyStatus
	if f, ok := cmd.InOrStdin().(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		s.In = true
	}
	if f, ok := cmd.OutOrStdout().(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		s.Out = true
	}
	return s
}

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive(cmd *cobra.Command) bool {
	s := detectTTY(cmd)
	return s.In && s.Out
}

// TerminalWidth returns the width of cmd's stdout, or 0 when it is not a terminal.
func TerminalWidth(cmd *cobra.Command) int {
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}
