// internal/cli/inspect.go
package redqueen

import (
	"fmt"
	"io"

	"github.com/k0kubun/pp"
	"github.com/mwiater/redqueen/internal/fixture"
	"github.com/mwiater/redqueen/internal/report"
	"github.com/mwiater/redqueen/internal/results"
	"github.com/spf13/cobra"
)

// inspectCmd pretty-prints one result file.
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Validate and pretty-print a result file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := results.ReadFile(args[0])
		if err != nil {
			return err
		}
		inspectRecord(cmd.OutOrStdout(), rec)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func inspectRecord(out io.Writer, rec fixture.Export) {
	_, _ = pp.Fprintln(out, rec)

	timing := report.Summarize(rec.Stats.Timings)
	fmt.Fprintf(out, "rounds=%d median=%s min=%s max=%s\n",
		timing.N, formatDuration(timing.Median), formatDuration(timing.Min), formatDuration(timing.Max))
}
