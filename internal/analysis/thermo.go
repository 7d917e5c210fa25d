package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/isingsim/internal/sweep"
)

// OnsagerTc is the exact critical temperature of the infinite square
// lattice, 2/ln(1+√2).
var OnsagerTc = 2 / math.Log(1+math.Sqrt2)

var (
	ErrTooFewPoints = errors.New("analysis: need at least 3 points")
	ErrNotAscending = errors.New("analysis: temperatures must be strictly ascending")
	ErrInvalidSize  = errors.New("analysis: lattice size must be positive")
)

type Point struct {
	T     float64
	Value float64
}

func check(results []sweep.Result, size int) error {
	if size <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidSize, size)
	}
	if len(results) < 3 {
		return fmt.Errorf("%w, got %d", ErrTooFewPoints, len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Temperature <= results[i-1].Temperature {
			return fmt.Errorf("%w at index %d", ErrNotAscending, i)
		}
	}
	return nil
}

// SpecificHeat differentiates mean energy over temperature, central
// differences inside the ladder and one-sided at the ends, normalized per
// spin.
func SpecificHeat(results []sweep.Result, size int) ([]Point, error) {
	if err := check(results, size); err != nil {
		return nil, err
	}

	n := len(results)
	spins := float64(size * size)
	out := make([]Point, n)
	for i := range results {
		lo, hi := i-1, i+1
		if lo < 0 {
			lo = 0
		}
		if hi >= n {
			hi = n - 1
		}
		dU := results[hi].Energy - results[lo].Energy
		dT := results[hi].Temperature - results[lo].Temperature
		out[i] = Point{T: results[i].Temperature, Value: dU / dT / spins}
	}
	return out, nil
}

// Susceptibility uses <M²> = M_rms², ignoring <|M|>², which is the usual
// finite-size estimator above Tc.
func Susceptibility(results []sweep.Result, size int) ([]Point, error) {
	if err := check(results, size); err != nil {
		return nil, err
	}

	spins := float64(size * size)
	out := make([]Point, len(results))
	for i, r := range results {
		m2 := r.MagnetizationRMS * r.MagnetizationRMS
		out[i] = Point{T: r.Temperature, Value: m2 / (spins * r.Temperature)}
	}
	return out, nil
}

func peak(points []Point) Point {
	vals := make([]float64, len(points))
	for i, p := range points {
		vals[i] = p.Value
	}
	return points[floats.MaxIdx(vals)]
}

// Summary estimates Tc as the temperature of the specific heat maximum.
type Summary struct {
	Tc        float64
	PeakHeat  float64
	Deviation float64 // (Tc - OnsagerTc) / OnsagerTc

	// Temperature of the susceptibility maximum.
	ChiPeakT float64

	// Per spin at the lowest and highest ladder temperature.
	GroundEnergy        float64
	GroundMagnetization float64
	HotEnergy           float64
	HotMagnetization    float64
}

func Summarize(results []sweep.Result, size int) (Summary, error) {
	heat, err := SpecificHeat(results, size)
	if err != nil {
		return Summary{}, err
	}

	chi, err := Susceptibility(results, size)
	if err != nil {
		return Summary{}, err
	}

	p := peak(heat)
	spins := float64(size * size)
	first, last := results[0], results[len(results)-1]
	return Summary{
		Tc:                  p.T,
		PeakHeat:            p.Value,
		Deviation:           (p.T - OnsagerTc) / OnsagerTc,
		ChiPeakT:            peak(chi).T,
		GroundEnergy:        first.Energy / spins,
		GroundMagnetization: first.MagnetizationRMS / spins,
		HotEnergy:           last.Energy / spins,
		HotMagnetization:    last.MagnetizationRMS / spins,
	}, nil
}
