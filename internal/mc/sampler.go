package mc

import (
	"fmt"
	"math"
)

// Observables are the time-averaged results of one measurement phase.
type Observables struct {
	Energy           float64
	MagnetizationRMS float64
}

func validateBeta(beta float64) error {
	if beta < 0 || math.IsNaN(beta) {
		return fmt.Errorf("%w, got %v", ErrInvalidBeta, beta)
	}
	return nil
}

// Evolve runs steps moves and discards their deltas.
func (s *Sampler) Evolve(steps int, beta float64) error {
	if steps < 0 {
		return fmt.Errorf("%w: evolve steps %d", ErrInvalidSteps, steps)
	}
	if err := validateBeta(beta); err != nil {
		return err
	}

	p := FlipProbability(beta)
	for i := 0; i < steps; i++ {
		s.step(p)
	}
	return nil
}

// TimeAverage runs steps moves, tracking energy and magnetization
// incrementally from one full recomputation, and returns the mean energy
// and the root mean square magnetization.
func (s *Sampler) TimeAverage(steps int, beta float64) (Observables, error) {
	if steps < 1 {
		return Observables{}, fmt.Errorf("%w: average steps %d", ErrInvalidSteps, steps)
	}
	if err := validateBeta(beta); err != nil {
		return Observables{}, err
	}

	p := FlipProbability(beta)
	u := s.lat.Energy()
	m := s.lat.Magnetization()

	var uTotal, m2Total int64
	for i := 0; i < steps; i++ {
		dE, dM := s.step(p)
		u += dE
		m += dM

		uTotal += int64(u)
		m2Total += int64(m) * int64(m)
	}

	n := float64(steps)
	return Observables{
		Energy:           float64(uTotal) / n,
		MagnetizationRMS: math.Sqrt(float64(m2Total) / n),
	}, nil
}

// EnsembleAverage lets the lattice equilibrate for evolveSteps moves, then
// averages over averageSteps moves.
func (s *Sampler) EnsembleAverage(beta float64, evolveSteps, averageSteps int) (Observables, error) {
	if err := s.Evolve(evolveSteps, beta); err != nil {
		return Observables{}, err
	}
	return s.TimeAverage(averageSteps, beta)
}
