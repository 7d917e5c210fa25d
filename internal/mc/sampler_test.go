package mc_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/mc"
)

func newSampler(size int, seed int64) *mc.Sampler {
	lat, err := lattice.New(size, seed)
	Expect(err).NotTo(HaveOccurred())
	return mc.NewSampler(lat)
}

func countFlipped(before []int, lat *lattice.Lattice) int {
	n := 0
	for i, s := range before {
		if lat.At(i) != s {
			n++
		}
	}
	return n
}

func snapshot(lat *lattice.Lattice) []int {
	spins := make([]int, lat.Sites())
	for i := range spins {
		spins[i] = lat.At(i)
	}
	return spins
}

var _ = Describe("FlipProbability", func() {
	It("is zero at infinite temperature", func() {
		Expect(mc.FlipProbability(0)).To(Equal(0.0))
	})

	It("approaches one at low temperature", func() {
		Expect(mc.FlipProbability(20)).To(BeNumerically("~", 1, 1e-12))
		Expect(mc.FlipProbability(math.Inf(1))).To(Equal(1.0))
	})

	It("matches 1 - exp(-2β)", func() {
		for _, beta := range []float64{0.1, 0.44, 1, 2.5} {
			Expect(mc.FlipProbability(beta)).To(BeNumerically("~", 1-math.Exp(-2*beta), 1e-12))
		}
	})

	It("never leaves [0, 1]", func() {
		for _, beta := range []float64{-1, math.NaN(), 1e-300, 1e300} {
			p := mc.FlipProbability(beta)
			Expect(p).To(BeNumerically(">=", 0))
			Expect(p).To(BeNumerically("<=", 1))
		}
	})
})

var _ = Describe("Sampler.Step", func() {
	It("keeps incremental deltas consistent with full recomputation", func() {
		for _, beta := range []float64{0, 0.2, 0.44, 1, 3} {
			s := newSampler(8, 11)
			lat := s.Lattice()
			for i := 0; i < 500; i++ {
				e0, m0 := lat.Energy(), lat.Magnetization()
				dE, dM := s.Step(beta)
				Expect(lat.Energy()).To(Equal(e0+dE), "beta=%v step=%d", beta, i)
				Expect(lat.Magnetization()).To(Equal(m0+dM), "beta=%v step=%d", beta, i)
			}
		}
	})

	It("flips exactly the seed site when β = 0", func() {
		s := newSampler(6, 3)
		lat := s.Lattice()
		for i := 0; i < 1000; i++ {
			before := snapshot(lat)
			_, dM := s.Step(0)
			Expect(countFlipped(before, lat)).To(Equal(1))
			Expect(dM).To(SatisfyAny(Equal(2), Equal(-2)))
		}
	})

	It("flips the whole aligned lattice when the flip probability is one", func() {
		s := newSampler(5, 9)
		lat := s.Lattice()

		dE, dM := s.Step(math.Inf(1))
		Expect(dE).To(Equal(0))
		Expect(dM).To(Equal(-2 * 25))
		Expect(lat.Magnetization()).To(Equal(-25))
	})

	It("grows large clusters at low temperature", func() {
		s := newSampler(16, 21)
		large := 0
		for i := 0; i < 200; i++ {
			_, dM := s.Step(5)
			if abs(dM)/2 > 16*16/2 {
				large++
			}
		}
		Expect(large).To(BeNumerically(">", 150))
	})

	It("gives a neighbor queued twice two independent chances", func() {
		// On a 2×2 lattice the seed's +x/-x and +y/-y neighbors coincide,
		// so each of the two neighbors is queued twice. With p = 1/2 a
		// lone seed flip needs four rejections: (1/2)^4 = 1/16.
		beta := math.Ln2 / 2
		Expect(mc.FlipProbability(beta)).To(BeNumerically("~", 0.5, 1e-12))

		const trials = 20000
		single := 0
		for i := 0; i < trials; i++ {
			s := newSampler(2, int64(i+1))
			_, dM := s.Step(beta)
			if abs(dM) == 2 {
				single++
			}
		}

		frac := float64(single) / trials
		Expect(frac).To(BeNumerically("~", 1.0/16, 0.015))
	})
})

var _ = Describe("Sampler averages", func() {
	It("rejects invalid step counts", func() {
		s := newSampler(4, 1)
		Expect(s.Evolve(-1, 1)).To(MatchError(mc.ErrInvalidSteps))
		_, err := s.TimeAverage(0, 1)
		Expect(err).To(MatchError(mc.ErrInvalidSteps))
		_, err = s.EnsembleAverage(1, 10, 0)
		Expect(err).To(MatchError(mc.ErrInvalidSteps))
	})

	It("rejects a negative inverse temperature", func() {
		s := newSampler(4, 1)
		Expect(s.Evolve(1, -0.5)).To(MatchError(mc.ErrInvalidBeta))
		_, err := s.TimeAverage(1, math.NaN())
		Expect(err).To(MatchError(mc.ErrInvalidBeta))
	})

	It("allows an empty burn-in", func() {
		s := newSampler(4, 1)
		Expect(s.Evolve(0, 1)).To(Succeed())
		Expect(s.Lattice().Magnetization()).To(Equal(16))
	})

	It("reports the ground state exactly when every move flips the lattice", func() {
		s := newSampler(4, 5)
		obs, err := s.TimeAverage(7, math.Inf(1))
		Expect(err).NotTo(HaveOccurred())
		Expect(obs.Energy).To(Equal(-32.0))
		Expect(obs.MagnetizationRMS).To(Equal(16.0))
	})

	It("stays inside the physical range", func() {
		for _, t := range []float64{0.5, 2.269, 5} {
			s := newSampler(4, 17)
			obs, err := s.EnsembleAverage(1/t, 200, 50)
			Expect(err).NotTo(HaveOccurred())
			Expect(obs.Energy).To(BeNumerically(">=", -32))
			Expect(obs.Energy).To(BeNumerically("<=", 32))
			Expect(obs.MagnetizationRMS).To(BeNumerically(">=", 0))
			Expect(obs.MagnetizationRMS).To(BeNumerically("<=", 16))
		}
	})

	It("orders low and high temperature phases", func() {
		cold := newSampler(16, 2)
		hot := newSampler(16, 2)

		c, err := cold.EnsembleAverage(1/1.0, 500, 200)
		Expect(err).NotTo(HaveOccurred())
		h, err := hot.EnsembleAverage(1/5.0, 500, 200)
		Expect(err).NotTo(HaveOccurred())

		Expect(c.Energy).To(BeNumerically("<", h.Energy))
		Expect(c.MagnetizationRMS).To(BeNumerically(">", h.MagnetizationRMS))
	})
})

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
