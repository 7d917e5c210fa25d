package sweep

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyLadder indicates a sweep with no temperatures.
	ErrEmptyLadder = errors.New("sweep: empty temperature ladder")

	// ErrInvalidTemperature indicates a non-positive, NaN or infinite
	// temperature.
	ErrInvalidTemperature = errors.New("sweep: temperature must be positive and finite")

	// ErrInvalidLadder indicates a final temperature below the start.
	ErrInvalidLadder = errors.New("sweep: final temperature below start")

	// ErrWorkerFault indicates a worker panicked while sampling.
	ErrWorkerFault = errors.New("sweep: worker fault")

	// ErrSink indicates the result sink rejected a record. Results computed
	// so far are still returned alongside it.
	ErrSink = errors.New("sweep: result sink failed")
)

// SimulationError wraps a worker failure with the temperature it was
// processing.
type SimulationError struct {
	Index       int
	Temperature float64
	Worker      int
	Wrapped     error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("worker %d, T[%d]=%.4f: %v", e.Worker, e.Index, e.Temperature, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
