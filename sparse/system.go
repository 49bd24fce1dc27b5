package sparse

import (
	"errors"
	"fmt"
)

var (
	// ErrSingular is returned when a direct factorization fails or the
	// factor is too ill-conditioned to trust.
	ErrSingular = errors.New("sparse: singular matrix")
	// ErrNotConverged is returned when an iterative solve exhausts its
	// iteration budget above the requested tolerance.
	ErrNotConverged = errors.New("sparse: iterative solver did not converge")
	// ErrIndefinite is returned when the reduced matrix is not symmetric
	// positive definite.
	ErrIndefinite = errors.New("sparse: matrix is not symmetric positive definite")
)

// System is the linear system A x = b for one or more right hand sides b
// sharing the same matrix. Pinned unknowns become identity rows.
type System struct {
	n      int
	a      *Builder
	rhs    [][]float64
	pinned []bool
}

// NewSystem returns an empty n by n system with nrhs right hand sides.
func NewSystem(n, nrhs int) *System {
	if n < 0 || nrhs < 1 {
		panic("sparse: bad system dimensions")
	}
	s := &System{
		n:      n,
		a:      NewBuilder(n),
		rhs:    make([][]float64, nrhs),
		pinned: make([]bool, n),
	}
	for k := range s.rhs {
		s.rhs[k] = make([]float64, n)
	}
	return s
}

// Len returns the number of unknowns.
func (s *System) Len() int { return s.n }

// Add accumulates v into A_ij. Entries on pinned rows are ignored.
func (s *System) Add(i, j int, v float64) {
	if s.pinned[i] {
		return
	}
	s.a.Add(i, j, v)
}

// SetRHS sets row i of every right hand side. len(values) must match
// the number of right hand sides.
func (s *System) SetRHS(i int, values ...float64) {
	if len(values) != len(s.rhs) {
		panic(fmt.Sprintf("sparse: got %d rhs values, want %d", len(values), len(s.rhs)))
	}
	for k, v := range values {
		s.rhs[k][i] = v
	}
}

// Pin turns row i into the identity constraint x_i = values[k] for each
// right hand side k.
func (s *System) Pin(i int, values ...float64) {
	s.SetRHS(i, values...)
	s.pinned[i] = true
	s.a.ClearRow(i)
	s.a.Add(i, i, 1)
}

// Pinned reports whether row i is an identity constraint.
func (s *System) Pinned(i int) bool { return s.pinned[i] }

// Matrix returns the assembled n by n matrix including identity rows.
func (s *System) Matrix() *CSR { return s.a.CSR() }

// RHS returns a copy of right hand side k.
func (s *System) RHS(k int) []float64 {
	return append([]float64(nil), s.rhs[k]...)
}

// reduced is the system restricted to free unknowns with the pinned
// columns moved to the right hand side.
type reduced struct {
	free  []int // free[local] = global index.
	local []int // local[global] = local index or -1 when pinned.
	a     *CSR
	b     [][]float64
}

func (s *System) reduce() reduced {
	r := reduced{local: make([]int, s.n)}
	for i := 0; i < s.n; i++ {
		if s.pinned[i] {
			r.local[i] = -1
			continue
		}
		r.local[i] = len(r.free)
		r.free = append(r.free, i)
	}
	full := s.a.CSR()
	nf := len(r.free)
	bld := NewBuilder(nf)
	r.b = make([][]float64, len(s.rhs))
	for k := range r.b {
		r.b[k] = make([]float64, nf)
		for li, gi := range r.free {
			r.b[k][li] = s.rhs[k][gi]
		}
	}
	for li, gi := range r.free {
		full.Row(gi, func(gj int, v float64) {
			if lj := r.local[gj]; lj >= 0 {
				bld.Add(li, lj, v)
				return
			}
			for k := range r.b {
				r.b[k][li] -= v * s.rhs[k][gj]
			}
		})
	}
	r.a = bld.CSR()
	return r
}

// expand writes the local solution xf into a full length vector holding
// pinned values for rhs k.
func (s *System) expand(r reduced, k int, xf []float64) []float64 {
	x := make([]float64, s.n)
	for i := 0; i < s.n; i++ {
		if s.pinned[i] {
			x[i] = s.rhs[k][i]
		}
	}
	for li, gi := range r.free {
		x[gi] = xf[li]
	}
	return x
}
