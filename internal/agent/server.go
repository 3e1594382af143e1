// Package agent runs benchmark suites on request over HTTP so a single
// controller can collect results from several machines.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mwiater/redqueen/internal/fixture"
	"github.com/mwiater/redqueen/internal/suite"
	"github.com/mwiater/redqueen/internal/telemetry"
)

const (
	// DefaultTimeout bounds one benchmark request.
	DefaultTimeout = time.Hour
	// DefaultMaxSize is the largest generated input a request may ask for.
	DefaultMaxSize = 64 << 20

	maxRequestBytes = 1 << 20
)

// BenchRequest selects what the agent should measure.
type BenchRequest struct {
	Suite string   `json:"suite"`
	Tools []string `json:"tools,omitempty"`
	Sizes []int    `json:"sizes,omitempty"`
	// MaxTime overrides the per-benchmark budget, in time.ParseDuration syntax.
	MaxTime string `json:"max_time,omitempty"`
}

// BenchResponse carries the records of a completed request.
type BenchResponse struct {
	OK        bool             `json:"ok"`
	RunID     string           `json:"run_id"`
	Hardware  string           `json:"hardware"`
	ElapsedMS int64            `json:"elapsed_ms"`
	Records   []fixture.Export `json:"records"`
}

// ErrResp is returned for rejected or failed requests. Records measured before
// a failure are included.
type ErrResp struct {
	OK        bool             `json:"ok"`
	Error     string           `json:"error"`
	ElapsedMS int64            `json:"elapsed_ms,omitempty"`
	Records   []fixture.Export `json:"records,omitempty"`
}

// SuiteInfo describes a suite in GET /suites.
type SuiteInfo struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Tools       map[string][]string `json:"tools"`
}

// Config holds the agent limits and the measurement defaults.
type Config struct {
	Timeout time.Duration
	MaxSize int
	Fixture fixture.Config
}

// Server answers benchmark requests one at a time.
type Server struct {
	mu       sync.Mutex
	cfg      Config
	metrics  *telemetry.Metrics
	log      logrus.FieldLogger
	newRunID func() string
}

// NewServer returns a server with cfg, filling in default limits. metrics may
// be nil.
func NewServer(cfg Config, metrics *telemetry.Metrics, log logrus.FieldLogger) *Server {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.Fixture == (fixture.Config{}) {
		cfg.Fixture = fixture.DefaultConfig()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{cfg: cfg, metrics: metrics, log: log, newRunID: uuid.NewString}
}

// Handler routes the agent endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /suites", s.handleSuites)
	mux.HandleFunc("POST /benchmark", s.handleBench)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return mux
}

func (s *Server) handleSuites(w http.ResponseWriter, _ *http.Request) {
	var out []SuiteInfo
	for _, st := range suite.Suites() {
		info := SuiteInfo{Name: st.Name, Description: st.Description, Tools: make(map[string][]string)}
		for _, b := range st.Benches {
			info.Tools[b.Tool] = b.Variants
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBench(w http.ResponseWriter, r *http.Request) {
	// Requests are measured one at a time.
	log := s.log.WithField("remote", r.RemoteAddr)
	log.Info("benchmark request")
	s.mu.Lock()
	defer s.mu.Unlock()

	var req BenchRequest
	if err := decodeJSON(w, r, &req, maxRequestBytes); err != nil {
		log.WithError(err).Warn("benchmark decode error")
		writeJSON(w, http.StatusBadRequest, ErrResp{Error: "invalid JSON: " + err.Error()})
		return
	}

	fxCfg, err := s.validate(req)
	if err != nil {
		log.WithError(err).Warn("benchmark validation error")
		writeJSON(w, http.StatusBadRequest, ErrResp{Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
	defer cancel()

	runID := s.newRunID()
	start := time.Now()
	var records []fixture.Export
	runner := &suite.Runner{
		Options: []fixture.Option{fixture.WithConfig(fxCfg)},
		Log:     log,
	}
	if s.metrics != nil {
		runner.Options = append(runner.Options, fixture.WithObserver(s.metrics))
		runner.OnFinish = func(job suite.Job, _ *fixture.Record, err error) {
			s.metrics.Finished(job.Bench.Tool, err)
		}
	}

	log.WithFields(logrus.Fields{"suite": req.Suite, "tools": req.Tools, "sizes": req.Sizes, "run_id": runID}).Info("benchmark start")
	runErr := runner.Run(ctx, []suite.Selection{{Suite: req.Suite, Tools: req.Tools, Sizes: req.Sizes}}, func(rec *fixture.Record) error {
		export := rec.Export()
		export.RunID = runID
		records = append(records, export)
		return nil
	})
	elapsed := time.Since(start).Milliseconds()

	if runErr != nil {
		msg := runErr.Error()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			msg = "benchmark timed out: " + msg
		}
		log.WithError(runErr).WithField("elapsed_ms", elapsed).Error("benchmark run error")
		writeJSON(w, http.StatusInternalServerError, ErrResp{Error: msg, ElapsedMS: elapsed, Records: records})
		return
	}

	log.WithFields(logrus.Fields{"elapsed_ms": elapsed, "records": len(records)}).Info("benchmark complete")
	writeJSON(w, http.StatusOK, BenchResponse{
		OK:        true,
		RunID:     runID,
		Hardware:  suite.Hardware(),
		ElapsedMS: elapsed,
		Records:   records,
	})
}

// validate checks a request against the registered suites and the agent
// limits and returns the fixture config to run it with.
func (s *Server) validate(req BenchRequest) (fixture.Config, error) {
	if req.Suite == "" {
		return fixture.Config{}, errors.New("suite is required")
	}
	if _, ok := suite.Lookup(req.Suite); !ok {
		return fixture.Config{}, fmt.Errorf("%w: %q", suite.ErrUnknownSuite, req.Suite)
	}
	for _, size := range req.Sizes {
		if size < 1 || size > s.cfg.MaxSize {
			return fixture.Config{}, fmt.Errorf("size %d out of range (1..%d)", size, s.cfg.MaxSize)
		}
	}

	cfg := s.cfg.Fixture
	if req.MaxTime != "" {
		d, err := time.ParseDuration(req.MaxTime)
		if err != nil {
			return fixture.Config{}, fmt.Errorf("max_time: %w", err)
		}
		if d > cfg.SlowLimit {
			return fixture.Config{}, fmt.Errorf("max_time %s exceeds the agent limit %s", d, cfg.SlowLimit)
		}
		cfg.MaxTime = d
	}
	if err := cfg.Validate(); err != nil {
		return fixture.Config{}, err
	}
	// Unknown tools are reported before any measurement starts.
	if _, err := suite.Plan([]suite.Selection{{Suite: req.Suite, Tools: req.Tools, Sizes: []int{1}}}); err != nil {
		return fixture.Config{}, err
	}
	return cfg, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any, maxBytes int64) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
