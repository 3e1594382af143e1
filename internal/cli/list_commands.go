// internal/cli/list_commands.go
package redqueen

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// commandsCmd implements 'list commands'.
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List all commands and subcommands in two columns",
	Long:  `List every command path with its short description, indented by depth.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runListCommands(cmd.OutOrStdout(), rootCmd)
	},
}

func init() {
	listCmd.AddCommand(commandsCmd)
}

type commandLine struct {
	path  string
	short string
}

func runListCommands(out io.Writer, root *cobra.Command) {
	lines := collectCommandData(root, "", 0)

	width := 0
	for _, l := range lines {
		width = max(width, len(l.path))
	}

	fmt.Fprintln(out, "Commands and Subcommands:")
	for _, l := range lines {
		fmt.Fprintf(out, "  %-*s  %s\n", width, l.path, l.short)
	}
}

// collectCommandData flattens the command tree depth first. Hidden, help and
// completion commands are left out.
func collectCommandData(cmd *cobra.Command, parent string, depth int) []commandLine {
	switch {
	case cmd.Hidden, cmd.Name() == "help", cmd.Name() == "completion":
		return nil
	}

	path := strings.TrimSpace(parent + " " + cmd.Name())
	lines := []commandLine{{path: strings.Repeat("  ", depth) + path, short: cmd.Short}}
	for _, sub := range cmd.Commands() {
		lines = append(lines, collectCommandData(sub, path, depth+1)...)
	}
	return lines
}
