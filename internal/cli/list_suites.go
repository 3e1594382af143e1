// internal/cli/list_suites.go
package redqueen

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/redqueen/internal/suite"
	"github.com/spf13/cobra"
)

// suitesCmd implements 'list suites'.
var suitesCmd = &cobra.Command{
	Use:   "suites",
	Short: "List benchmark suites, their tools and variants",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		listSuites(cmd.OutOrStdout(), suite.Suites())
	},
}

func init() {
	listCmd.AddCommand(suitesCmd)
}

func listSuites(out io.Writer, suites []suite.Suite) {
	nodeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	toolStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	for _, s := range suites {
		fmt.Fprintf(out, "%s  %s\n", nodeStyle.Render(s.Name), s.Description)
		for _, b := range s.Benches {
			module := b.Module
			if module == "" {
				module = "standard library"
			}
			fmt.Fprintf(out, "  %s [%s] (%s)\n", toolStyle.Render(b.Tool), strings.Join(b.Variants, ", "), module)
		}
	}
}
