// internal/cli/run.go
package redqueen

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var runOpts runOptions

// runCmd measures the selected suites and records the results.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run benchmark suites and record the results",
	Long: `Run the selected benchmark suites (all suites by default). Every
benchmark is measured by the adaptive fixture, written as a JSON result file
and, when a store is configured, saved to SQLite under a fresh run id.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOpts
		opts.tui = opts.tui && opts.remote == "" && isatty.IsTerminal(os.Stdout.Fd())
		return runBenchmarks(cmd.Context(), config(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&runOpts.suites, "suite", nil, "suites to run (default: configured suites, else all)")
	runCmd.Flags().StringSliceVar(&runOpts.tools, "tool", nil, "restrict the run to these tools")
	runCmd.Flags().IntSliceVar(&runOpts.sizes, "size", nil, "generated input sizes in bytes")
	runCmd.Flags().StringVar(&runOpts.inputDir, "input-dir", "", "benchmark every file of this directory instead of generated inputs")
	runCmd.Flags().StringVar(&runOpts.resultsDir, "results", "", "directory for result files (default from config)")
	runCmd.Flags().StringVar(&runOpts.storePath, "store", "", "SQLite store to record the run in (default from config)")
	runCmd.Flags().DurationVar(&runOpts.minTime, "min-time", 0, "shortest accepted calibration batch (default from config)")
	runCmd.Flags().DurationVar(&runOpts.maxTime, "max-time", 0, "measurement budget per benchmark (default from config)")
	runCmd.Flags().BoolVar(&runOpts.noDisableGC, "no-disable-gc", false, "keep the garbage collector enabled while timing")
	runCmd.Flags().StringVar(&runOpts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")
	runCmd.Flags().StringVar(&runOpts.trace, "trace", "", "trace exporter: stdout or none")
	runCmd.Flags().StringVar(&runOpts.remote, "remote", "", "run on the agent at this URL instead of locally")
	runCmd.Flags().BoolVar(&runOpts.tui, "tui", true, "show a progress spinner when attached to a terminal")

	rootCmd.AddCommand(runCmd)
}

type runOptions struct {
	suites      []string
	tools       []string
	sizes       []int
	inputDir    string
	resultsDir  string
	storePath   string
	minTime     time.Duration
	maxTime     time.Duration
	noDisableGC bool
	metricsAddr string
	trace       string
	remote      string
	tui         bool
}
