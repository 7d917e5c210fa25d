// Package mc implements the correlated cluster-flip Monte Carlo move and the
// ensemble sampling built on it.
//
//   - [Sampler.Step]: one cluster-flip move returning (dE, dM)
//   - [Sampler.Evolve]: burn-in, deltas discarded
//   - [Sampler.TimeAverage]: mean energy and RMS magnetization
//   - [Sampler.EnsembleAverage]: Evolve then TimeAverage
//
// # Example
//
//	lat, _ := lattice.New(64, seed)
//	s := mc.NewSampler(lat)
//	obs, err := s.EnsembleAverage(1/t, 1000, 100)
//
// The move flips a random seed site and offers the flip to every neighbor
// still aligned with the seed's original sign, each with probability
// 1 - exp(-2β). Pending neighbors are not deduplicated: a site queued twice
// gets two independent chances until one of them flips it.
//
// # Thread Safety
//
// A Sampler mutates its lattice and is NOT safe for concurrent use.
package mc
