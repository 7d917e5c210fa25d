package mc

import "errors"

var (
	// ErrInvalidSteps indicates a negative burn-in count or a measurement
	// count below one.
	ErrInvalidSteps = errors.New("mc: invalid step count")

	// ErrInvalidBeta indicates a negative or NaN inverse temperature.
	ErrInvalidBeta = errors.New("mc: inverse temperature must be non-negative")
)
