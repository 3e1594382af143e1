// internal/cli/show.go
package redqueen

import (
	"github.com/mwiater/redqueen/internal/appconfig"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show resolved settings",
}

// showConfigCmd prints the effective configuration after flags and
// REDQUEEN_* variables were applied.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config()
		appconfig.ShowConfig(cmd.OutOrStdout(), cfg.ConfigPath, currentConfig, appconfig.Config{})
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.AddCommand(showConfigCmd)
}
