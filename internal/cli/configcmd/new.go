package configcmd

import (
	"io"
	"strings"

	"github.com/gcstr/cardtrack/internal/cli/common"
	"github.com/gcstr/cardtrack/internal/secrets"
	"github.com/gcstr/cardtrack/internal/ui"
	"github.com/spf13/cobra"
)

// New creates the `config` command group.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the cardtrack configuration",
	}
	cmd.AddCommand(newValidateCmd())
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and show the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pr := ui.StdPrinter{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
			cfg, err := common.LoadConfig(cmd, pr)
			if err != nil {
				return err
			}

			source := cfg.Path
			if source == "" {
				source = "(defaults and flags)"
			}
			register := cfg.Student.RegisterNumber
			if register == "" {
				register = "(not set; pass --register)"
			}

			var token string
			tokenSource := "env " + cfg.Auth.TokenEnv
			if cfg.Auth.Sops != nil {
				tokenSource = "sops " + ui.Italic(cfg.Auth.Sops.Path)
			}
			tok, err := secrets.Token(cmd.Context(), cfg.Auth)
			switch {
			case err != nil:
				return err
			case tok == "":
				token = "not set (" + tokenSource + ")"
			default:
				token = "set (" + tokenSource + ")"
			}

			var b strings.Builder
			b.WriteString(ui.SectionTitle("Configuration") + "\n")
			b.WriteString(ui.Field("Source", source))
			b.WriteString(ui.Field("Server", cfg.Server.BaseURL))
			b.WriteString(ui.Field("Timeout", cfg.Server.Timeout.String()))
			b.WriteString(ui.Field("Register number", register))
			b.WriteString(ui.Field("Status interval", cfg.Polling.StatusInterval.String()))
			b.WriteString(ui.Field("Submit delay", cfg.Polling.SubmitDelay.String()))
			b.WriteString(ui.Field("Token", token))
			_, _ = io.WriteString(cmd.OutOrStdout(), b.String())
			pr.Info("configuration is valid")
			return nil
		},
	}
}
