package common

import (
	"strings"

	"github.com/gcstr/cardtrack/internal/apperr"
	"github.com/gcstr/cardtrack/internal/config"
	"github.com/gcstr/cardtrack/internal/ui"
	"github.com/spf13/cobra"
)

// LoadConfig loads the configuration named by --config, applies the --server
// and --register overrides, warns about unset ${VAR} references and validates
// the result. Without --config a missing cardtrack.yaml is not an error: flags
// alone may carry everything needed.
func LoadConfig(cmd *cobra.Command, pr ui.Printer) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	path = strings.TrimSpace(path)

	cfg, missing, err := config.Load(path)
	switch {
	case err == nil:
		for _, name := range missing {
			pr.Warn("environment variable %s is not set; replacing with empty string", name)
		}
	case path == "" && apperr.IsKind(err, apperr.NotFound):
		cfg = config.Default()
	default:
		return config.Config{}, err
	}

	ApplyOverrides(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// ApplyOverrides copies explicitly set flags over the file values.
func ApplyOverrides(cmd *cobra.Command, cfg *config.Config) {
	if f := cmd.Flags().Lookup("server"); f != nil && f.Changed {
		cfg.Server.BaseURL = strings.TrimRight(strings.TrimSpace(f.Value.String()), "/")
	}
	if f := cmd.Flags().Lookup("register"); f != nil && f.Changed {
		cfg.Student.RegisterNumber = strings.TrimSpace(f.Value.String())
	}
}
