package common

import "github.com/spf13/cobra"

// RegisterGlobalFlags installs the persistent flags every subcommand reads.
func RegisterGlobalFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringP("config", "c", "", "Path to configuration file or directory (defaults to cardtrack.yaml or cardtrack.yml in current directory)")
	pf.StringP("register", "r", "", "Student register number (overrides student.register_number)")
	pf.String("server", "", "Card office base URL (overrides server.base_url)")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-format", "auto", "Log format: auto, pretty, json")
	pf.String("log-file", "", "Also write JSON logs to this file")
	pf.Bool("no-color", false, "Disable colored log output")
}
