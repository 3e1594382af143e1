package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mwiater/redqueen/internal/results"
)

// Options captures the inputs for generating the analysis and report.
type Options struct {
	ResultsDir   string
	HTMLPath     string
	AnalysisPath string
	Reference    string
}

// Build loads every result file, writes the optional analysis JSON and the
// HTML report.
func Build(opts Options, out io.Writer) error {
	records, err := results.Load(opts.ResultsDir)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no results found in %s", opts.ResultsDir)
	}

	analysis := Analyze(records, ParseSelector(opts.Reference))

	if opts.AnalysisPath != "" {
		if err := writeJSON(opts.AnalysisPath, analysis); err != nil {
			return err
		}
		fmt.Fprintf(out, "Analysis JSON written to %s\n", opts.AnalysisPath)
	}

	html, err := Generate(analysis)
	if err != nil {
		return fmt.Errorf("failed generating HTML report: %w", err)
	}

	if opts.HTMLPath == "" {
		opts.HTMLPath = "redqueenData/reports/report.html"
	}
	if err := os.MkdirAll(filepath.Dir(opts.HTMLPath), 0o755); err != nil {
		return fmt.Errorf("unable to create report directory: %w", err)
	}
	if err := os.WriteFile(opts.HTMLPath, []byte(html), 0o644); err != nil {
		return fmt.Errorf("unable to write HTML report %s: %w", opts.HTMLPath, err)
	}

	fmt.Fprintf(out, "Report written to %s\n", opts.HTMLPath)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
