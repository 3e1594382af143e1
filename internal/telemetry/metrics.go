// Package telemetry exposes benchmark progress as Prometheus metrics and
// configures OpenTelemetry tracing.
package telemetry

import (
	"errors"
	"net/http"
	"time"

	"github.com/mwiater/redqueen/internal/fixture"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Metrics represents the collection of benchmark Prometheus metrics. It
// implements fixture.Observer.
type Metrics struct {
	Rounds      *prometheus.CounterVec
	Calls       *prometheus.CounterVec
	CallSeconds *prometheus.HistogramVec
	BatchSize   *prometheus.GaugeVec
	Runs        *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

var _ fixture.Observer = (*Metrics)(nil)

// NewMetrics creates the benchmark metrics and registers them with a fresh
// registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{gatherer: reg}

	m.Rounds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redqueen_rounds_total",
			Help: "Total number of recorded measurement rounds",
		},
		[]string{"tool", "algorithm"},
	)

	m.Calls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redqueen_calls_total",
			Help: "Total number of timed calls",
		},
		[]string{"tool", "algorithm"},
	)

	m.CallSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redqueen_call_seconds",
			Help:    "Per-call duration of benchmarked operations in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-7, 10, 11),
		},
		[]string{"tool", "algorithm"},
	)

	m.BatchSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "redqueen_batch_size",
			Help: "Calls per timed batch chosen by calibration",
		},
		[]string{"tool", "algorithm"},
	)

	m.Runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redqueen_runs_total",
			Help: "Total number of finished benchmarks",
		},
		[]string{"tool", "status"},
	)

	reg.MustRegister(m.Rounds, m.Calls, m.CallSeconds, m.BatchSize, m.Runs)
	return m
}

// Calibrated records the chosen batch size.
func (m *Metrics) Calibrated(r *fixture.Record, c fixture.Calibration) {
	m.BatchSize.WithLabelValues(r.Tool, r.Algorithm).Set(float64(c.NumRuns))
}

// Round records one measurement round.
func (m *Metrics) Round(r *fixture.Record, numRuns int, elapsed time.Duration) {
	m.Rounds.WithLabelValues(r.Tool, r.Algorithm).Inc()
	m.Calls.WithLabelValues(r.Tool, r.Algorithm).Add(float64(numRuns))
	m.CallSeconds.WithLabelValues(r.Tool, r.Algorithm).Observe(elapsed.Seconds() / float64(numRuns))
}

// Finished counts a completed benchmark by outcome.
func (m *Metrics) Finished(tool string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Runs.WithLabelValues(tool, status).Inc()
}

// Handler serves the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// StartMetricsServer exposes /metrics on addr in the background. The returned
// server should be shut down by the caller.
func StartMetricsServer(addr string, m *Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logrus.Infof("Starting metrics server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("metrics server stopped")
		}
	}()
	return srv
}
