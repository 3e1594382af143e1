// internal/cli/list.go
package redqueen

import (
	"github.com/spf13/cobra"
)

// listCmd represents the 'list' command group.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Group commands for listing suites, runs and commands",
	Long:  `The 'list' command groups subcommands that print the registered benchmark suites, the runs kept in the store and the command tree.`,
}

func init() {
	rootCmd.AddCommand(listCmd)
}
