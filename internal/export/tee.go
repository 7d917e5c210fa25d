package export

import (
	"errors"

	"github.com/san-kum/isingsim/internal/sweep"
)

type teeSink []sweep.Sink

// Tee fans each result out to every sink; one failing sink does not stop
// the others.
func Tee(sinks ...sweep.Sink) sweep.Sink {
	return teeSink(sinks)
}

func (t teeSink) Write(r sweep.Result) error {
	var errs []error
	for _, s := range t {
		if err := s.Write(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
