// Package sparse assembles and solves the sparse linear systems built from
// mesh connectivity: Laplacian smoothing and harmonic parameterization.
//
// A System is assembled entry by entry, rows may be pinned to fixed values
// (identity constraints), and then solved either iteratively with conjugate
// gradients or directly with a banded Cholesky factorization after
// reverse Cuthill-McKee reordering. Both solvers require the matrix to be
// symmetric positive definite once pinned unknowns are eliminated.
package sparse

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

var _ mat.Matrix = (*CSR)(nil)

// CSR is an immutable compressed sparse row matrix.
type CSR struct {
	rows, cols int
	indptr     []int
	ind        []int
	data       []float64
}

// Dims returns the number of rows and columns of the matrix.
func (m *CSR) Dims() (r, c int) { return m.rows, m.cols }

// At returns the element at row i, column j.
func (m *CSR) At(i, j int) float64 {
	if uint(i) >= uint(m.rows) || uint(j) >= uint(m.cols) {
		panic(fmt.Sprintf("sparse: index (%d,%d) out of range for %dx%d matrix", i, j, m.rows, m.cols))
	}
	cols := m.ind[m.indptr[i]:m.indptr[i+1]]
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return m.data[m.indptr[i]+k]
	}
	return 0
}

// T returns the transpose of the matrix.
func (m *CSR) T() mat.Matrix { return mat.Transpose{Matrix: m} }

// NNZ returns the number of stored entries.
func (m *CSR) NNZ() int { return len(m.data) }

// Row calls fn for each stored entry of row i in column order.
func (m *CSR) Row(i int, fn func(j int, v float64)) {
	for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
		fn(m.ind[k], m.data[k])
	}
}

// MulVecTo stores m*x in dst.
func (m *CSR) MulVecTo(dst, x []float64) {
	if len(x) != m.cols || len(dst) != m.rows {
		panic("sparse: dimension mismatch")
	}
	for i := 0; i < m.rows; i++ {
		var sum float64
		for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
			sum += m.data[k] * x[m.ind[k]]
		}
		dst[i] = sum
	}
}

// Diagonal returns the main diagonal.
func (m *CSR) Diagonal() []float64 {
	n := m.rows
	if m.cols < n {
		n = m.cols
	}
	d := make([]float64, n)
	for i := range d {
		d[i] = m.At(i, i)
	}
	return d
}

// IsSymmetric reports whether |A_ij - A_ji| <= tol for every stored entry.
func (m *CSR) IsSymmetric(tol float64) bool {
	if m.rows != m.cols {
		return false
	}
	for i := 0; i < m.rows; i++ {
		for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
			j := m.ind[k]
			d := m.data[k] - m.At(j, i)
			if d > tol || d < -tol {
				return false
			}
		}
	}
	return true
}

// Builder accumulates entries of a square matrix before compression.
// Repeated Add calls on the same entry sum.
type Builder struct {
	n    int
	rows []map[int]float64
}

// NewBuilder returns a Builder for an n by n matrix.
func NewBuilder(n int) *Builder {
	return &Builder{n: n, rows: make([]map[int]float64, n)}
}

// Add accumulates v into entry (i, j).
func (b *Builder) Add(i, j int, v float64) {
	if uint(i) >= uint(b.n) || uint(j) >= uint(b.n) {
		panic(fmt.Sprintf("sparse: index (%d,%d) out of range for %dx%d matrix", i, j, b.n, b.n))
	}
	if b.rows[i] == nil {
		b.rows[i] = make(map[int]float64, 8)
	}
	b.rows[i][j] += v
}

// ClearRow removes every entry of row i.
func (b *Builder) ClearRow(i int) {
	b.rows[i] = nil
}

// CSR compresses the accumulated entries. Explicit zeros are kept so the
// sparsity pattern reflects connectivity.
func (b *Builder) CSR() *CSR {
	m := &CSR{rows: b.n, cols: b.n, indptr: make([]int, b.n+1)}
	for i, row := range b.rows {
		m.indptr[i+1] = m.indptr[i] + len(row)
	}
	m.ind = make([]int, 0, m.indptr[b.n])
	m.data = make([]float64, 0, m.indptr[b.n])
	for _, row := range b.rows {
		start := len(m.ind)
		for j := range row {
			m.ind = append(m.ind, j)
		}
		cols := m.ind[start:]
		sort.Ints(cols)
		for _, j := range cols {
			m.data = append(m.data, row[j])
		}
	}
	return m
}
