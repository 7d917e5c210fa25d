// Package sweep runs one ensemble average per temperature of a ladder on a
// bounded worker pool and delivers the results in ladder order.
//
// Each worker owns one lattice and one random source for its whole life and
// reuses them for every temperature it pulls from the shared queue. Workers
// finish out of order; a single consumer buffers completions by ladder
// index and flushes contiguous runs to the [Sink].
//
//	temps, _ := sweep.Ladder(0.1, 5, 400)
//	s, _ := sweep.New(sweep.Options{Size: 64, EvolveSteps: 1000, AverageSteps: 100})
//	results, err := s.Run(ctx, temps, sink)
//
// A fault in any worker aborts the whole sweep.
package sweep
