// internal/fixture/calibrate.go
package fixture

import (
	"math"
	"math/bits"
	"time"

	"github.com/sirupsen/logrus"
)

// Calibration is the outcome of the batch size search.
type Calibration struct {
	// NumRuns is the number of calls per timed batch.
	NumRuns int
	// Duration is the duration of the accepted sample batch.
	Duration time.Duration
}

// calibrate searches for the smallest batch size whose duration reaches
// cfg.MinTime. Every candidate is warmed up for cfg.MaxTime before it is
// sampled.
func calibrate[T any](e *executor[T], cfg Config, log logrus.FieldLogger) (Calibration, error) {
	numRuns := 1
	for {
		if err := warmup(e, numRuns, cfg.MaxTime); err != nil {
			return Calibration{}, err
		}

		sample, _, err := e.callBatch(numRuns)
		if err != nil {
			return Calibration{}, err
		}

		next, done := nextRuns(numRuns, sample, cfg.MinTime)
		if done {
			if sample < cfg.MinTime {
				log.WithFields(logrus.Fields{
					"num_runs": numRuns,
					"sample":   sample,
				}).Debug("calibration stalled below min time, accepting batch size")
			}
			return Calibration{NumRuns: numRuns, Duration: sample}, nil
		}
		log.WithFields(logrus.Fields{
			"num_runs": numRuns,
			"sample":   sample,
			"next":     next,
		}).Trace("calibration sample")
		numRuns = next
	}
}

func warmup[T any](e *executor[T], numRuns int, budget time.Duration) error {
	start := e.clock.Now()
	for e.clock.Now().Sub(start) < budget {
		if _, _, err := e.callBatch(numRuns); err != nil {
			return err
		}
	}
	return nil
}

// nextRuns decides the batch size after a sample of the current one. done is
// true when current is accepted. The result never drops below current and
// saturates at math.MaxInt.
func nextRuns(current int, sample, minTime time.Duration) (next int, done bool) {
	switch {
	case sample >= minTime:
		return current, true
	case current == math.MaxInt:
		return current, true
	case 2*sample >= minTime:
		next = ceilScale(minTime, current, sample)
		if next <= current {
			return current, true
		}
		return next, false
	default:
		if current > math.MaxInt/10 {
			return math.MaxInt, false
		}
		return current * 10, false
	}
}

// ceilScale returns ceil(minTime*n/sample) clamped to math.MaxInt. sample must
// be positive.
func ceilScale(minTime time.Duration, n int, sample time.Duration) int {
	hi, lo := bits.Mul64(uint64(minTime), uint64(n))
	if hi >= uint64(sample) {
		return math.MaxInt
	}
	q, r := bits.Div64(hi, lo, uint64(sample))
	if r != 0 {
		q++
	}
	if q == 0 || q > math.MaxInt {
		return math.MaxInt
	}
	return int(q)
}

// roundsFor returns ceil(budget/calibrated) clamped to math.MaxInt.
func roundsFor(budget, calibrated time.Duration) int {
	if calibrated <= 0 {
		return math.MaxInt
	}
	q := budget / calibrated
	if budget%calibrated != 0 {
		q++
	}
	if int64(q) > math.MaxInt {
		return math.MaxInt
	}
	return int(q)
}
