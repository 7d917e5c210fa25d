package mc

import (
	"math"

	"github.com/san-kum/isingsim/internal/lattice"
)

// Sampler runs Monte Carlo moves on one lattice. The worklist buffer is
// reused across moves.
type Sampler struct {
	lat   *lattice.Lattice
	queue []int
}

func NewSampler(lat *lattice.Lattice) *Sampler {
	return &Sampler{
		lat:   lat,
		queue: make([]int, 0, 4*lat.Sites()),
	}
}

func (s *Sampler) Lattice() *lattice.Lattice { return s.lat }

// FlipProbability is the chance an aligned neighbor joins the cluster,
// 1 - exp(-2β), kept inside [0, 1].
func FlipProbability(beta float64) float64 {
	if beta <= 0 || math.IsNaN(beta) {
		return 0
	}
	p := -math.Expm1(-2 * beta)
	if p > 1 {
		return 1
	}
	return p
}

// Step performs one cluster-flip move and returns the energy and
// magnetization change it caused.
func (s *Sampler) Step(beta float64) (dE, dM int) {
	return s.step(FlipProbability(beta))
}

func (s *Sampler) step(p float64) (dE, dM int) {
	lat := s.lat

	i := lat.RandomSite()
	dE = lat.DeltaE(i)
	sign := lat.Flip(i)
	dM = -2 * sign

	nb := lat.Neighbors(i)
	s.queue = append(s.queue[:0], nb[:]...)

	for head := 0; head < len(s.queue); head++ {
		c := s.queue[head]
		if lat.At(c) != sign || lat.Float64() >= p {
			continue
		}

		dE += lat.DeltaE(c)
		dM -= 2 * sign
		lat.Flip(c)

		nb = lat.Neighbors(c)
		s.queue = append(s.queue, nb[:]...)
	}

	return dE, dM
}
