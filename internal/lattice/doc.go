// Package lattice provides the square spin lattice used by the Monte Carlo
// core.
//
// A [Lattice] stores size×size spins in row-major order, each +1 or -1, and
// four precomputed neighbor tables implementing periodic boundaries:
//
//	lat, _ := lattice.New(64, seed)
//	i := lat.RandomSite()
//	dE := lat.DeltaE(i)
//	s := lat.Flip(i)
//
// # Thread Safety
//
// A Lattice and its random source are NOT safe for concurrent use. Each
// worker owns exactly one Lattice for its whole lifetime.
package lattice
