package common

import (
	"context"
	"io"
	"strings"

	"github.com/gcstr/cardtrack/internal/api"
	"github.com/gcstr/cardtrack/internal/apperr"
	"github.com/gcstr/cardtrack/internal/cli/buildinfo"
	"github.com/gcstr/cardtrack/internal/config"
	"github.com/gcstr/cardtrack/internal/logger"
	"github.com/gcstr/cardtrack/internal/secrets"
	"github.com/gcstr/cardtrack/internal/ui"
	"github.com/spf13/cobra"
)

// CLIContext contains all the components needed for most CLI operations.
type CLIContext struct {
	Ctx     context.Context
	Config  config.Config
	Printer ui.StdPrinter
	Logger  logger.Logger
	Client  *api.Client

	closer io.Closer
}

// SetupOptions tweaks SetupCLIContext for a specific command.
type SetupOptions struct {
	// QuietLogs keeps log lines off the terminal (full-screen commands).
	QuietLogs bool
	// RequireIdentity fails early when no register number is configured.
	RequireIdentity bool
}

// SetupCLIContext performs the standard CLI setup: load and validate config,
// build the logger, resolve the API token and create the card office client.
// Callers must Close the returned context.
func SetupCLIContext(cmd *cobra.Command, opts SetupOptions) (*CLIContext, error) {
	pr := ui.StdPrinter{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}

	cfg, err := LoadConfig(cmd, pr)
	if err != nil {
		return nil, err
	}
	if opts.RequireIdentity && cfg.Student.RegisterNumber == "" {
		return nil, apperr.New("cli.Setup", apperr.InvalidInput, "no register number: set student.register_number in cardtrack.yaml or pass --register")
	}

	log, closer, err := NewLogger(cmd, opts.QuietLogs)
	if err != nil {
		return nil, err
	}
	log = log.With("session_id", logger.NewSessionID(), "command", cmd.Name())
	ctx := logger.WithContext(cmd.Context(), log)

	token, err := secrets.Token(ctx, cfg.Auth)
	if err != nil {
		closeQuietly(closer)
		return nil, err
	}
	if token == "" {
		log.Debug("auth_token_missing", "token_env", cfg.Auth.TokenEnv)
	}

	client, err := api.New(api.Options{
		BaseURL:   cfg.Server.BaseURL,
		Token:     token,
		Timeout:   cfg.Server.Timeout,
		UserAgent: buildinfo.UserAgent(),
		Logger:    log,
	})
	if err != nil {
		closeQuietly(closer)
		return nil, err
	}

	return &CLIContext{
		Ctx:     ctx,
		Config:  cfg,
		Printer: pr,
		Logger:  log,
		Client:  client,
		closer:  closer,
	}, nil
}

// Close flushes the optional log file sink.
func (c *CLIContext) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// RegisterNumber returns the configured student identity.
func (c *CLIContext) RegisterNumber() string { return c.Config.Student.RegisterNumber }

// NewLogger builds a logger from the persistent --log-* flags.
func NewLogger(cmd *cobra.Command, quiet bool) (logger.Logger, io.Closer, error) {
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")
	file, _ := cmd.Flags().GetString("log-file")
	noColor, _ := cmd.Flags().GetBool("no-color")
	l, closer, err := logger.New(logger.Options{
		Out:     cmd.ErrOrStderr(),
		Level:   level,
		Format:  format,
		NoColor: noColor,
		LogFile: strings.TrimSpace(file),
		Quiet:   quiet,
	})
	if err != nil {
		return nil, nil, apperr.Wrap("cli.NewLogger", apperr.InvalidInput, err, "open log file %s", file)
	}
	return l, closer, nil
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
