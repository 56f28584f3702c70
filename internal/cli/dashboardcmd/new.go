package dashboardcmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gcstr/cardtrack/internal/apperr"
	"github.com/gcstr/cardtrack/internal/cli/buildinfo"
	"github.com/gcstr/cardtrack/internal/cli/common"
)

// New creates the `cardtrack dashboard` command.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Launch the card request dashboard (fullscreen TUI)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Log lines would tear the alt screen; they go to --log-file only.
			cc, err := common.SetupCLIContext(cmd, common.SetupOptions{QuietLogs: true})
			if err != nil {
				return err
			}
			defer func() { _ = cc.Close() }()

			m := newModel(cc.Ctx, cc.Client, Options{
				RegisterNumber: cc.RegisterNumber(),
				Server:         cc.Config.Server.BaseURL,
				Version:        buildinfo.VersionSimple(),
				PollInterval:   cc.Config.Polling.StatusInterval,
				SubmitDelay:    cc.Config.Polling.SubmitDelay,
				Logger:         cc.Logger,
			})
			p := tea.NewProgram(m,
				tea.WithAltScreen(),
				tea.WithContext(cc.Ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			if _, err := p.Run(); err != nil && cc.Ctx.Err() == nil {
				return apperr.Wrap("dashboard.Run", apperr.Internal, err, "run dashboard")
			}
			return nil
		},
	}
	return cmd
}
