package fixture

import "time"

// Clock is the time source used for every measurement. Implementations must
// be monotonic.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the monotonic wall clock.
var SystemClock Clock = systemClock{}
