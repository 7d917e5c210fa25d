package sweep

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Ladder returns steps temperatures linearly spaced from t0 to tf
// inclusive. A single step yields just t0.
func Ladder(t0, tf float64, steps int) ([]float64, error) {
	if steps < 1 {
		return nil, fmt.Errorf("%w: steps %d", ErrEmptyLadder, steps)
	}
	for _, t := range []float64{t0, tf} {
		if err := checkTemperature(t); err != nil {
			return nil, err
		}
	}
	if tf < t0 {
		return nil, fmt.Errorf("%w: t0=%v tf=%v", ErrInvalidLadder, t0, tf)
	}

	if steps == 1 {
		return []float64{t0}, nil
	}
	return floats.Span(make([]float64, steps), t0, tf), nil
}

func checkTemperature(t float64) error {
	if !(t > 0) || math.IsInf(t, 0) {
		return fmt.Errorf("%w, got %v", ErrInvalidTemperature, t)
	}
	return nil
}
