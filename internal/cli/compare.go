// internal/cli/compare.go
package redqueen

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mwiater/redqueen/internal/fixture"
	"github.com/mwiater/redqueen/internal/report"
	"github.com/mwiater/redqueen/internal/results"
	"github.com/mwiater/redqueen/internal/store"
	"github.com/spf13/cobra"
)

type compareOptions struct {
	metric     string
	resultsDir string
	storePath  string
	runID      string
}

var compareOpts compareOptions

// compareCmd compares two tool configurations instance by instance.
var compareCmd = &cobra.Command{
	Use:   "compare <baseline> <candidate>",
	Short: "Compare two tools per benchmark instance",
	Long: `Compare the candidate against the baseline on every instance both were
measured on. Tools are given as tool[@version][/algorithm]; the newest
recorded version is used when none is given. Results come from the results
directory, or from the store when --store is set.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadCompareRecords(compareOpts)
		if err != nil {
			return err
		}
		cmps := report.Compare(report.Group(records), report.ParseSelector(args[0]), report.ParseSelector(args[1]), compareOpts.metric)
		if len(cmps) == 0 {
			return fmt.Errorf("no instances measured for both %s and %s", args[0], args[1])
		}
		printComparisons(cmd.OutOrStdout(), cmps)
		return nil
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareOpts.metric, "metric", report.TimeMetric, "metric to compare")
	compareCmd.Flags().StringVar(&compareOpts.resultsDir, "results", "", "directory of result files (default from config)")
	compareCmd.Flags().StringVar(&compareOpts.storePath, "store", "", "read records from this SQLite store instead")
	compareCmd.Flags().StringVar(&compareOpts.runID, "run", "", "restrict store records to one run id")

	rootCmd.AddCommand(compareCmd)
}

func loadCompareRecords(opts compareOptions) ([]fixture.Export, error) {
	if opts.storePath == "" {
		return results.Load(firstNonEmpty(opts.resultsDir, config().ResultsPath()))
	}
	st, err := store.NewSQLiteStore(opts.storePath)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.List(store.Filter{RunID: opts.runID})
}

// printComparisons prints one line per instance. For timings a faster
// candidate is green and a slower one red; other metrics are not colored.
func printComparisons(out io.Writer, cmps []report.Comparison) {
	better := color.New(color.FgGreen).SprintFunc()
	worse := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	current := ""
	for _, c := range cmps {
		if c.Benchmark != current {
			current = c.Benchmark
			fmt.Fprintf(out, "%s (%s, %s)\n", bold(c.Benchmark), c.GoVersion, valueOr(c.Hardware, "unknown hardware"))
		}

		delta := c.Delta
		if c.Metric == report.TimeMetric {
			switch {
			case strings.HasPrefix(delta, "-"):
				delta = better(delta)
			case strings.HasPrefix(delta, "+"):
				delta = worse(delta)
			}
		}
		fmt.Fprintf(out, "  %-28s %12s -> %-12s x%-8.3f %s (p=%.3f n=%d+%d)\n",
			c.Instance,
			formatMetric(c.Metric, c.Baseline.Median),
			formatMetric(c.Metric, c.Candidate.Median),
			c.Ratio, delta, c.P, c.Baseline.N, c.Candidate.N)
	}
}

func formatMetric(metric string, v float64) string {
	if metric == report.TimeMetric {
		return formatDuration(v)
	}
	return fmt.Sprintf("%.4g", v)
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
