package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg *Config, fallback Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	if cfg == nil {
		cfg = &fallback
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Debug:           %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Log File:        %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Log Level:       %s\n", cfg.LogLevelName())
	fmt.Fprintf(out, "  Results Dir:     %s\n", cfg.ResultsPath())
	fmt.Fprintf(out, "  Store Path:      %s\n", valueOrDash(cfg.StorePath))
	fmt.Fprintf(out, "  Report Path:     %s\n", cfg.ReportFilePath())
	fmt.Fprintf(out, "  Metrics Addr:    %s\n", valueOrDash(cfg.MetricsAddr))
	fmt.Fprintf(out, "  Trace Exporter:  %s\n", valueOrDash(cfg.TraceExporter))

	fx, err := cfg.FixtureSettings()
	if err != nil {
		fmt.Fprintf(out, "  Fixture:         invalid (%v)\n", err)
	} else {
		fmt.Fprintf(out, "  Disable GC:      %v\n", fx.DisableGC)
		fmt.Fprintf(out, "  Min Time:        %s\n", fx.MinTime)
		fmt.Fprintf(out, "  Max Time:        %s\n", fx.MaxTime)
		fmt.Fprintf(out, "  Slow Limit:      %s\n", fx.SlowLimit)
		fmt.Fprintf(out, "  Slow Rounds:     %d\n", fx.SlowRounds)
	}

	if len(cfg.Suites) == 0 {
		fmt.Fprintln(out, "  Suites:          (all)")
		return
	}
	fmt.Fprintln(out, "  Suites:")
	for _, s := range cfg.Suites {
		fmt.Fprintf(out, "    - %s tools=%v sizes=%v", s.Name, s.Tools, s.Sizes)
		if s.InputDir != "" {
			fmt.Fprintf(out, " inputDir=%s", s.InputDir)
		}
		fmt.Fprintln(out)
	}
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
