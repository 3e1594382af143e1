// internal/cli/report.go
package redqueen

import (
	"github.com/mwiater/redqueen/internal/report"
	"github.com/spf13/cobra"
)

type reportOptions struct {
	resultsDir   string
	htmlPath     string
	analysisPath string
	reference    string
}

var reportOpts reportOptions

// reportCmd turns the result files into analysis JSON + HTML.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the HTML report from recorded results",
	Long: `Read every result file, group the series per suite, Go version, tool,
version, algorithm, hardware and instance, and emit a self-contained HTML
report. With --reference every configuration is also expressed relative to
that tool.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config()
		opts := report.Options{
			ResultsDir:   firstNonEmpty(reportOpts.resultsDir, cfg.ResultsPath()),
			HTMLPath:     firstNonEmpty(reportOpts.htmlPath, cfg.ReportFilePath()),
			AnalysisPath: reportOpts.analysisPath,
			Reference:    firstNonEmpty(reportOpts.reference, cfg.ReportReference),
		}
		return report.Build(opts, cmd.OutOrStdout())
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportOpts.resultsDir, "results", "", "directory of result files (default from config)")
	reportCmd.Flags().StringVar(&reportOpts.htmlPath, "html-output", "", "destination HTML report path (default from config)")
	reportCmd.Flags().StringVar(&reportOpts.analysisPath, "analysis-output", "", "optional path to write the analysis JSON")
	reportCmd.Flags().StringVar(&reportOpts.reference, "reference", "", "reference tool as tool[@version][/algorithm]")

	rootCmd.AddCommand(reportCmd)
}
