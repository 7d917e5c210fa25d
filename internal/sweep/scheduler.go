package sweep

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/mc"
)

const (
	DefaultEvolveSteps  = 1000
	DefaultAverageSteps = 100
)

type Options struct {
	Size         int
	EvolveSteps  int
	AverageSteps int
	// Workers <= 0 selects DefaultWorkers.
	Workers int
	Seed    int64
	Logger  *logrus.Logger
}

// DefaultWorkers leaves one CPU for the consumer.
func DefaultWorkers() int {
	if n := runtime.NumCPU() - 1; n > 1 {
		return n
	}
	return 1
}

type job struct {
	index int
	t     float64
}

type Scheduler struct {
	opts      Options
	log       *logrus.Logger
	observers []Observer

	// ensemble computes one ladder point; replaced in tests.
	ensemble func(s *mc.Sampler, beta float64) (mc.Observables, error)
}

// New validates opts before any worker exists.
func New(opts Options) (*Scheduler, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("%w, got %d", lattice.ErrInvalidSize, opts.Size)
	}
	if opts.EvolveSteps < 0 {
		return nil, fmt.Errorf("%w: evolve steps %d", mc.ErrInvalidSteps, opts.EvolveSteps)
	}
	if opts.AverageSteps < 1 {
		return nil, fmt.Errorf("%w: average steps %d", mc.ErrInvalidSteps, opts.AverageSteps)
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers()
	}

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Scheduler{opts: opts, log: log}
	s.ensemble = func(sp *mc.Sampler, beta float64) (mc.Observables, error) {
		return sp.EnsembleAverage(beta, s.opts.EvolveSteps, s.opts.AverageSteps)
	}
	return s, nil
}

func (s *Scheduler) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Workers is the pool size used for a ladder of n temperatures.
func (s *Scheduler) Workers(n int) int {
	if s.opts.Workers > n {
		return n
	}
	return s.opts.Workers
}

// Run computes every temperature and writes the results to sink in ladder
// order. sink may be nil. On a sink failure the sweep still completes and
// all results are returned together with an error wrapping ErrSink. On a
// worker failure no results are returned.
func (s *Scheduler) Run(ctx context.Context, temps []float64, sink Sink) ([]Result, error) {
	if len(temps) == 0 {
		return nil, ErrEmptyLadder
	}
	for i, t := range temps {
		if err := checkTemperature(t); err != nil {
			return nil, fmt.Errorf("T[%d]: %w", i, err)
		}
	}

	jobs := make(chan job, len(temps))
	for i, t := range temps {
		jobs <- job{index: i, t: t}
	}
	close(jobs)

	workers := s.Workers(len(temps))
	out := make(chan Result, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		id := w
		g.Go(func() error {
			return s.work(gctx, id, jobs, out)
		})
	}

	var runErr error
	go func() {
		runErr = g.Wait()
		close(out)
	}()

	s.log.WithFields(logrus.Fields{
		"temperatures": len(temps),
		"workers":      workers,
		"size":         s.opts.Size,
	}).Info("sweep started")

	ordered, sinkErr := s.collect(out, len(temps), sink)

	if runErr != nil {
		return nil, runErr
	}
	if len(ordered) != len(temps) {
		return nil, fmt.Errorf("sweep: collected %d of %d results", len(ordered), len(temps))
	}
	return ordered, sinkErr
}

// collect drains out, buffering early arrivals until every lower index has
// been flushed.
func (s *Scheduler) collect(out <-chan Result, total int, sink Sink) ([]Result, error) {
	ordered := make([]Result, 0, total)
	pending := make(map[int]Result)
	next, done := 0, 0
	var sinkErr error

	for r := range out {
		done++
		s.logProgress(r, done, total)
		for _, o := range s.observers {
			o.OnResult(r, done, total)
		}

		pending[r.Index] = r
		for {
			nr, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			ordered = append(ordered, nr)
			next++

			if sink == nil || sinkErr != nil {
				continue
			}
			if err := sink.Write(nr); err != nil {
				sinkErr = fmt.Errorf("%w at T[%d]=%v: %w", ErrSink, nr.Index, nr.Temperature, err)
				s.log.WithError(err).Error("result sink failed, continuing sweep")
			}
		}
	}

	return ordered, sinkErr
}

func (s *Scheduler) logProgress(r Result, done, total int) {
	entry := s.log.WithFields(logrus.Fields{
		"worker":  r.Worker,
		"done":    done,
		"total":   total,
		"elapsed": r.Elapsed.Round(time.Millisecond),
	})
	if math.Mod(r.Temperature, 0.1) < 0.01 {
		entry.Infof("T: %g", r.Temperature)
		return
	}
	entry.Debugf("T: %g", r.Temperature)
}

func (s *Scheduler) work(ctx context.Context, id int, jobs <-chan job, out chan<- Result) error {
	lat, err := lattice.New(s.opts.Size, DeriveSeed(s.opts.Seed, uint64(id)))
	if err != nil {
		return err
	}
	sampler := mc.NewSampler(lat)

	s.log.WithField("worker", id).Debug("worker started")
	defer s.log.WithField("worker", id).Debug("worker stopped")

	for j := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}

		r, err := s.measure(sampler, id, j)
		if err != nil {
			return err
		}

		select {
		case out <- r:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *Scheduler) measure(sampler *mc.Sampler, worker int, j job) (r Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &SimulationError{
				Index:       j.index,
				Temperature: j.t,
				Worker:      worker,
				Wrapped:     fmt.Errorf("%w: %v", ErrWorkerFault, p),
			}
		}
	}()

	start := time.Now()
	obs, err := s.ensemble(sampler, 1/j.t)
	if err != nil {
		return Result{}, &SimulationError{Index: j.index, Temperature: j.t, Worker: worker, Wrapped: err}
	}

	return Result{
		Index:            j.index,
		Temperature:      j.t,
		Energy:           obs.Energy,
		MagnetizationRMS: obs.MagnetizationRMS,
		Worker:           worker,
		Elapsed:          time.Since(start),
	}, nil
}
