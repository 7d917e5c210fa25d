package lattice

import (
	"fmt"
	"math/rand"
)

// Lattice is a size×size Ising lattice with periodic boundaries.
type Lattice struct {
	size  int
	spins []int

	// Neighbor tables indexed by linear site: +x, -x, +y, -y.
	plusX  []int
	minusX []int
	plusY  []int
	minusY []int

	rng *rand.Rand
}

// New allocates a lattice with every spin +1 and its own random source.
func New(size int, seed int64) (*Lattice, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidSize, size)
	}

	n := size * size
	l := &Lattice{
		size:   size,
		spins:  make([]int, n),
		plusX:  make([]int, n),
		minusX: make([]int, n),
		plusY:  make([]int, n),
		minusY: make([]int, n),
		rng:    rand.New(rand.NewSource(seed)),
	}

	for row := 0; row < size; row++ {
		up := (row + 1) % size
		down := (row - 1 + size) % size
		for col := 0; col < size; col++ {
			right := (col + 1) % size
			left := (col - 1 + size) % size

			i := l.Index(row, col)
			l.spins[i] = 1
			l.plusX[i] = l.Index(row, right)
			l.minusX[i] = l.Index(row, left)
			l.plusY[i] = l.Index(up, col)
			l.minusY[i] = l.Index(down, col)
		}
	}

	return l, nil
}

func (l *Lattice) Size() int  { return l.size }
func (l *Lattice) Sites() int { return len(l.spins) }

// Index maps (row, col) to a linear site index.
func (l *Lattice) Index(row, col int) int { return row*l.size + col }

func (l *Lattice) At(i int) int { return l.spins[i] }

// Flip negates the spin at i and returns its previous value.
func (l *Lattice) Flip(i int) int {
	s := l.spins[i]
	l.spins[i] = -s
	return s
}

// Neighbors returns the four periodic neighbors of i in the order
// +x, -x, +y, -y.
func (l *Lattice) Neighbors(i int) [4]int {
	return [4]int{l.plusX[i], l.minusX[i], l.plusY[i], l.minusY[i]}
}

func (l *Lattice) sumNeighbors(i int) int {
	return l.spins[l.plusX[i]] + l.spins[l.minusX[i]] +
		l.spins[l.plusY[i]] + l.spins[l.minusY[i]]
}

// DeltaE is the energy change flipping site i would cause under
// H = -Σ s_i s_j over nearest-neighbor edges.
func (l *Lattice) DeltaE(i int) int {
	return 2 * l.spins[i] * l.sumNeighbors(i)
}

// Energy recomputes the total energy, counting each edge once through the
// plus neighbors only.
func (l *Lattice) Energy() int {
	total := 0
	for i, s := range l.spins {
		total -= s * (l.spins[l.plusX[i]] + l.spins[l.plusY[i]])
	}
	return total
}

func (l *Lattice) Magnetization() int {
	total := 0
	for _, s := range l.spins {
		total += s
	}
	return total
}

// RandomSite draws a site uniformly from [0, size²) by scaling a uniform
// float draw.
func (l *Lattice) RandomSite() int {
	i := int(l.rng.Float64() * float64(len(l.spins)))
	if i >= len(l.spins) {
		i = len(l.spins) - 1
	}
	return i
}

// Float64 draws from the lattice's private source in [0, 1).
func (l *Lattice) Float64() float64 { return l.rng.Float64() }
