package fixture

import "time"

// Observer is notified as a Fixture makes progress. Callbacks run outside the
// timed region.
type Observer interface {
	// Calibrated is called once the batch size of a fast operation is known.
	Calibrated(r *Record, c Calibration)
	// Round is called after every recorded round with the number of calls it
	// batched and their combined duration.
	Round(r *Record, numRuns int, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) Calibrated(*Record, Calibration)  {}
func (nopObserver) Round(*Record, int, time.Duration) {}
