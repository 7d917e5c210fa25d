package sweep

import "time"

// Result is one ladder point: the temperature and its ensemble averages.
type Result struct {
	Index            int
	Temperature      float64
	Energy           float64
	MagnetizationRMS float64

	Worker  int
	Elapsed time.Duration
}

// Sink receives results strictly in ladder order, each exactly once.
type Sink interface {
	Write(r Result) error
}

type SinkFunc func(r Result) error

func (f SinkFunc) Write(r Result) error { return f(r) }

// Observer is notified of every completion in arrival order, which need not
// match ladder order. done counts completions so far, including r.
type Observer interface {
	OnResult(r Result, done, total int)
}

type ObserverFunc func(r Result, done, total int)

func (f ObserverFunc) OnResult(r Result, done, total int) { f(r, done, total) }
