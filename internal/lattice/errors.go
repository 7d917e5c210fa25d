package lattice

import "errors"

// ErrInvalidSize indicates a non-positive lattice side length.
var ErrInvalidSize = errors.New("lattice: size must be positive")
