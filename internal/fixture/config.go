package fixture

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultMinTime is the shortest batch duration calibration accepts.
	DefaultMinTime = 5 * time.Microsecond
	// DefaultMaxTime is the measurement budget of one benchmark.
	DefaultMaxTime = time.Second
	// DefaultSlowLimit is the trial duration above which the trial is the only round.
	DefaultSlowLimit = 300 * time.Second
	// DefaultSlowRounds is the number of single-call rounds of a slow operation.
	DefaultSlowRounds = 5
)

// Config holds the measurement parameters of a Fixture.
type Config struct {
	DisableGC  bool
	MinTime    time.Duration
	MaxTime    time.Duration
	SlowLimit  time.Duration
	SlowRounds int
}

// DefaultConfig returns the default measurement parameters.
func DefaultConfig() Config {
	return Config{
		DisableGC:  true,
		MinTime:    DefaultMinTime,
		MaxTime:    DefaultMaxTime,
		SlowLimit:  DefaultSlowLimit,
		SlowRounds: DefaultSlowRounds,
	}
}

// Validate reports whether the config can drive a measurement.
func (c Config) Validate() error {
	switch {
	case c.MinTime <= 0:
		return fmt.Errorf("%w: min time must be positive, got %s", ErrInvalidConfig, c.MinTime)
	case c.MaxTime <= 0:
		return fmt.Errorf("%w: max time must be positive, got %s", ErrInvalidConfig, c.MaxTime)
	case c.SlowLimit < c.MaxTime:
		return fmt.Errorf("%w: slow limit %s is below max time %s", ErrInvalidConfig, c.SlowLimit, c.MaxTime)
	case c.SlowRounds < 1:
		return fmt.Errorf("%w: slow rounds must be at least 1, got %d", ErrInvalidConfig, c.SlowRounds)
	}
	return nil
}

// Option configures a Fixture.
type Option func(*Fixture)

// WithConfig replaces the whole measurement config.
func WithConfig(cfg Config) Option {
	return func(f *Fixture) { f.cfg = cfg }
}

// WithMinTime sets the shortest accepted calibration batch.
func WithMinTime(d time.Duration) Option {
	return func(f *Fixture) { f.cfg.MinTime = d }
}

// WithMaxTime sets the measurement budget.
func WithMaxTime(d time.Duration) Option {
	return func(f *Fixture) { f.cfg.MaxTime = d }
}

// WithDisableGC controls whether collection is disabled while timing.
func WithDisableGC(disable bool) Option {
	return func(f *Fixture) { f.cfg.DisableGC = disable }
}

// WithClock replaces the time source.
func WithClock(c Clock) Option {
	return func(f *Fixture) {
		if c != nil {
			f.clock = c
		}
	}
}

// WithEnvironment replaces the process state the executor suppresses.
func WithEnvironment(env Environment) Option {
	return func(f *Fixture) {
		if env != nil {
			f.env = env
		}
	}
}

// WithObserver registers a measurement observer.
func WithObserver(o Observer) Option {
	return func(f *Fixture) {
		if o != nil {
			f.observer = o
		}
	}
}

// WithLogger sets the logger used for calibration and branch decisions.
func WithLogger(log logrus.FieldLogger) Option {
	return func(f *Fixture) {
		if log != nil {
			f.log = log
		}
	}
}
