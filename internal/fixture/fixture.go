// internal/fixture/fixture.go
package fixture

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/mwiater/redqueen/internal/fixture"

// Gauge extracts quality metrics from the result of one call.
type Gauge[T any] func(result T) (Quality, error)

// Fixture measures one benchmark into its Record.
type Fixture struct {
	record   *Record
	cfg      Config
	clock    Clock
	env      Environment
	observer Observer
	log      logrus.FieldLogger
}

// New creates a fixture for the benchmark id with DefaultConfig, the system
// clock, the runtime environment and the standard logrus logger, then applies
// opts. The resulting config must pass Validate.
func New(id string, opts ...Option) (*Fixture, error) {
	f := &Fixture{
		record:   NewRecord(id),
		cfg:      DefaultConfig(),
		clock:    SystemClock,
		env:      RuntimeEnvironment,
		observer: nopObserver{},
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if err := f.cfg.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Record returns the record the fixture writes to. Identity fields should be
// set before Run.
func (f *Fixture) Record() *Record { return f.record }

// Config returns the measurement config.
func (f *Fixture) Config() Config { return f.cfg }

func (f *Fixture) fields() logrus.Fields {
	return logrus.Fields{
		"id":        f.record.ID,
		"tool":      f.record.Tool,
		"algorithm": f.record.Algorithm,
	}
}

// Run measures op and returns the fixture's record together with the last
// result op produced. Errors from op and gauge are returned unmodified; rounds
// recorded before the failure stay in the record.
//
// ctx only parents the run's trace span. A call that never returns blocks Run
// forever.
func Run[T any](ctx context.Context, f *Fixture, gauge Gauge[T], op func() (T, error)) (*Record, T, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "fixture.Run", trace.WithAttributes(
		attribute.String("benchmark.id", f.record.ID),
		attribute.String("benchmark.tool", f.record.Tool),
		attribute.String("benchmark.algorithm", f.record.Algorithm),
	))
	defer span.End()

	result, err := measure(f, gauge, op)
	span.SetAttributes(attribute.Int("benchmark.rounds", f.record.Rounds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return f.record, result, err
	}
	return f.record, result, nil
}

func measure[T any](f *Fixture, gauge Gauge[T], op func() (T, error)) (T, error) {
	var zero T
	if err := f.cfg.Validate(); err != nil {
		return zero, err
	}
	log := f.log.WithFields(f.fields())
	e := &executor[T]{op: op, clock: f.clock, env: f.env, disableGC: f.cfg.DisableGC}

	trial, result, err := e.callOnce()
	if err != nil {
		return zero, err
	}

	switch {
	case trial >= f.cfg.SlowLimit:
		log.WithField("trial", trial).Debug("trial exceeds slow limit, recording single round")
		if err := recordSingle(f, gauge, trial, result); err != nil {
			return zero, err
		}
		return result, nil

	case trial >= f.cfg.MaxTime:
		log.WithField("trial", trial).Debugf("trial exceeds max time, recording %d single-call rounds", f.cfg.SlowRounds)
		for i := 0; i < f.cfg.SlowRounds; i++ {
			elapsed, r, err := e.callOnce()
			if err != nil {
				return zero, err
			}
			if err := recordSingle(f, gauge, elapsed, r); err != nil {
				return zero, err
			}
			result = r
		}
		return result, nil
	}

	cal, err := calibrate(e, f.cfg, log)
	if err != nil {
		return zero, err
	}
	f.observer.Calibrated(f.record, cal)

	rounds := roundsFor(f.cfg.MaxTime, cal.Duration)
	log.WithFields(logrus.Fields{
		"num_runs": cal.NumRuns,
		"sample":   cal.Duration,
		"rounds":   rounds,
	}).Debug("calibrated")

	for i := 0; i < rounds; i++ {
		elapsed, results, err := e.callBatch(cal.NumRuns)
		if err != nil {
			return zero, err
		}
		perCall := elapsed.Seconds() / float64(cal.NumRuns)
		for _, r := range results {
			q, err := gauge(r)
			if err != nil {
				return zero, err
			}
			if err := f.record.Update(perCall, q); err != nil {
				return zero, err
			}
			result = r
		}
		f.observer.Round(f.record, cal.NumRuns, elapsed)
	}
	return result, nil
}

// recordSingle records one single-call round.
func recordSingle[T any](f *Fixture, gauge Gauge[T], elapsed time.Duration, result T) error {
	q, err := gauge(result)
	if err != nil {
		return err
	}
	if err := f.record.Update(elapsed.Seconds(), q); err != nil {
		return err
	}
	f.observer.Round(f.record, 1, elapsed)
	return nil
}
