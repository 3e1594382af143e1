package fixture

import "errors"

var (
	// ErrInvalidConfig is returned when a Config cannot drive a measurement.
	ErrInvalidConfig = errors.New("fixture: invalid config")
	// ErrQualityMismatch is returned when an update reports a metric set that
	// differs from the one recorded by the first update.
	ErrQualityMismatch = errors.New("fixture: quality metrics do not match recorded metrics")
)
