// internal/cli/run_entry.go
package redqueen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mwiater/redqueen/internal/agent"
	"github.com/mwiater/redqueen/internal/appconfig"
	"github.com/mwiater/redqueen/internal/fixture"
	"github.com/mwiater/redqueen/internal/logging"
	"github.com/mwiater/redqueen/internal/results"
	"github.com/mwiater/redqueen/internal/store"
	"github.com/mwiater/redqueen/internal/suite"
	"github.com/mwiater/redqueen/internal/telemetry"
)

var (
	newRunID       = uuid.NewString
	openStore      = func(path string) (recordStore, error) { return store.NewSQLiteStore(path) }
	runProgramFunc = runProgram
)

type recordStore interface {
	Save(runID string, rec fixture.Export) error
	Close() error
}

// runBenchmarks resolves the run settings, measures every selected benchmark
// and prints a summary table.
func runBenchmarks(ctx context.Context, cfg *appconfig.Config, opts runOptions, out, errOut io.Writer) error {
	fxCfg, err := fixtureConfig(cfg, opts)
	if err != nil {
		return err
	}
	selections, err := selectionsFor(cfg, opts)
	if err != nil {
		return err
	}
	if opts.remote != "" {
		for _, sel := range selections {
			if sel.InputDir != "" {
				return fmt.Errorf("suite %s: input directories cannot be measured with --remote", sel.Suite)
			}
		}
	}

	resultsDir := opts.resultsDir
	if resultsDir == "" {
		resultsDir = cfg.ResultsPath()
	}
	storePath := firstNonEmpty(opts.storePath, cfg.StorePath)
	metricsAddr := firstNonEmpty(opts.metricsAddr, cfg.MetricsAddr)
	exporter := firstNonEmpty(opts.trace, cfg.TraceExporter)

	runID := newRunID()
	logging.LogEvent("Starting run %s", runID)

	recorder := &runRecorder{runID: runID, resultsDir: resultsDir}
	if storePath != "" {
		if recorder.st, err = openStore(storePath); err != nil {
			return fmt.Errorf("unable to open store %s: %w", storePath, err)
		}
		defer recorder.st.Close()
	}

	if opts.remote != "" {
		runErr := runRemote(ctx, &agent.Client{BaseURL: opts.remote}, selections, opts, recorder, out)
		recorder.printSummary(out)
		return runErr
	}

	shutdownTracing, err := telemetry.InitTracing(exporter, appVersion, errOut)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logrus.WithError(err).Warn("trace shutdown failed")
		}
	}()

	m := telemetry.NewMetrics()
	if metricsAddr != "" {
		srv := telemetry.StartMetricsServer(metricsAddr, m)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	sink := func(r *fixture.Record) error {
		return recorder.record(r.Export())
	}

	runner := &suite.Runner{
		Options: []fixture.Option{
			fixture.WithConfig(fxCfg),
			fixture.WithObserver(m),
		},
		Log: logrus.StandardLogger(),
		OnFinish: func(job suite.Job, _ *fixture.Record, err error) {
			m.Finished(job.Bench.Tool, err)
		},
	}

	var runErr error
	if opts.tui {
		runErr = runProgramFunc(ctx, runner, selections, sink)
	} else {
		runner.OnStart = func(job suite.Job, index, total int) {
			fmt.Fprintf(out, "[%d/%d] %s\n", index, total, job.ID())
		}
		runErr = runner.Run(ctx, selections, sink)
	}

	recorder.printSummary(out)
	return runErr
}

// runRecorder persists the records of one run and collects the summary rows.
type runRecorder struct {
	runID      string
	resultsDir string
	st         recordStore
	rows       []summaryRow
}

func (r *runRecorder) record(export fixture.Export) error {
	export.RunID = r.runID
	path, err := results.Write(r.resultsDir, export)
	if err != nil {
		return err
	}
	logrus.WithField("path", path).Debug("result written")
	if r.st != nil {
		if err := r.st.Save(r.runID, export); err != nil {
			return fmt.Errorf("unable to store %s: %w", export.ID, err)
		}
	}
	logging.LogResult(export.ID, export.Tool, export.Algorithm, export.Stats.Timings, export.Stats.Quality)
	r.rows = append(r.rows, newSummaryRow(export))
	return nil
}

func (r *runRecorder) printSummary(out io.Writer) {
	if len(r.rows) > 0 {
		fmt.Fprintln(out, renderSummary(r.rows))
	}
	fmt.Fprintf(out, "Run %s: %d benchmarks recorded in %s\n", r.runID, len(r.rows), r.resultsDir)
}

// runRemote sends every selection to the agent and records what it returns.
// Records an agent measured before failing are kept; the remaining selections
// still run unless ctx is done.
func runRemote(ctx context.Context, client *agent.Client, selections []suite.Selection, opts runOptions, recorder *runRecorder, out io.Writer) error {
	var errs []error
	for i, sel := range selections {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		req := agent.BenchRequest{Suite: sel.Suite, Tools: sel.Tools, Sizes: sel.Sizes}
		if opts.maxTime > 0 {
			req.MaxTime = opts.maxTime.String()
		}
		fmt.Fprintf(out, "[%d/%d] %s on %s\n", i+1, len(selections), sel.Suite, client.BaseURL)

		resp, err := client.Run(ctx, req)
		if err != nil {
			logrus.WithError(err).WithField("suite", sel.Suite).Error("remote benchmark failed")
			errs = append(errs, fmt.Errorf("suite %s: %w", sel.Suite, err))
		}
		for _, export := range resp.Records {
			if err := recorder.record(export); err != nil {
				return errors.Join(append(errs, err)...)
			}
		}
	}
	return errors.Join(errs...)
}

// runProgram drives the runner behind a bubbletea progress view.
func runProgram(ctx context.Context, runner *suite.Runner, selections []suite.Selection, sink func(*fixture.Record) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(cancel))
	runner.OnStart = func(job suite.Job, index, total int) {
		p.Send(jobStartedMsg{id: job.ID(), index: index, total: total})
	}
	finish := runner.OnFinish
	runner.OnFinish = func(job suite.Job, rec *fixture.Record, err error) {
		if finish != nil {
			finish(job, rec, err)
		}
		p.Send(jobFinishedMsg{id: job.ID(), err: err})
	}

	errCh := make(chan error, 1)
	go func() {
		err := runner.Run(ctx, selections, sink)
		errCh <- err
		p.Send(runDoneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		return errors.Join(err, <-errCh)
	}
	return <-errCh
}

func fixtureConfig(cfg *appconfig.Config, opts runOptions) (fixture.Config, error) {
	fxCfg, err := cfg.FixtureSettings()
	if err != nil {
		return fixture.Config{}, err
	}
	if opts.minTime > 0 {
		fxCfg.MinTime = opts.minTime
	}
	if opts.maxTime > 0 {
		fxCfg.MaxTime = opts.maxTime
		if fxCfg.SlowLimit < fxCfg.MaxTime {
			fxCfg.SlowLimit = fxCfg.MaxTime
		}
	}
	if opts.noDisableGC {
		fxCfg.DisableGC = false
	}
	if err := fxCfg.Validate(); err != nil {
		return fixture.Config{}, err
	}
	return fxCfg, nil
}

// selectionsFor resolves the suites to run: --suite flags first, then the
// configured suites, else every suite. --tool, --size and --input-dir apply to
// every selected suite; a suite that has none of the requested tools is dropped.
func selectionsFor(cfg *appconfig.Config, opts runOptions) ([]suite.Selection, error) {
	var selections []suite.Selection
	switch {
	case len(opts.suites) > 0:
		for _, name := range opts.suites {
			selections = append(selections, suite.Selection{Suite: name})
		}
	case len(cfg.Suites) > 0:
		for _, s := range cfg.Suites {
			selections = append(selections, suite.Selection{Suite: s.Name, Tools: s.Tools, Sizes: s.Sizes, InputDir: s.InputDir})
		}
	default:
		for _, s := range suite.Suites() {
			selections = append(selections, suite.Selection{Suite: s.Name})
		}
	}

	out := selections[:0]
	for _, sel := range selections {
		s, ok := suite.Lookup(sel.Suite)
		if !ok {
			return nil, fmt.Errorf("%w: %q", suite.ErrUnknownSuite, sel.Suite)
		}
		if len(opts.sizes) > 0 {
			sel.Sizes = opts.sizes
		}
		if opts.inputDir != "" {
			sel.InputDir = opts.inputDir
		}
		if len(opts.tools) > 0 {
			var tools []string
			for _, tool := range opts.tools {
				if slices.Contains(s.Tools(), tool) {
					tools = append(tools, tool)
				}
			}
			if len(tools) == 0 {
				continue
			}
			sel.Tools = tools
		}
		out = append(out, sel)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: none of %v belongs to the selected suites", suite.ErrUnknownTool, opts.tools)
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
