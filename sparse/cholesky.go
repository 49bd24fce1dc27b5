package sparse

import (
	"errors"
	"fmt"

	"github.com/soypat/ddg"
	"gonum.org/v1/gonum/mat"
)

// symmetryTol is the absolute asymmetry tolerated before a direct solve.
const symmetryTol = 1e-9

// SolveCholesky solves every right hand side with a single banded Cholesky
// factorization of the reduced matrix. The unknowns are reordered with RCM
// first to keep the band narrow. It returns full length solutions, one per
// right hand side, or an error wrapping ErrSingular or ErrIndefinite.
func (s *System) SolveCholesky() ([][]float64, error) {
	r := s.reduce()
	nf := len(r.free)
	out := make([][]float64, len(s.rhs))
	if nf == 0 {
		for k := range out {
			out[k] = s.expand(r, k, nil)
		}
		return out, nil
	}
	if !r.a.IsSymmetric(symmetryTol) {
		return nil, ErrIndefinite
	}
	perm := RCM(r.a)
	pos := make([]int, nf)
	for newIdx, old := range perm {
		pos[old] = newIdx
	}
	k := Bandwidth(r.a, perm)
	band := mat.NewSymBandDense(nf, k, make([]float64, nf*(k+1)))
	for i := 0; i < nf; i++ {
		r.a.Row(i, func(j int, v float64) {
			pi, pj := pos[i], pos[j]
			if pi <= pj {
				band.SetSymBand(pi, pj, v)
			}
		})
	}
	var chol mat.BandCholesky
	if ok := chol.Factorize(band); !ok {
		return nil, fmt.Errorf("band cholesky of %d unknowns: %w", nf, ErrSingular)
	}
	ddg.Logger().Debug("band cholesky", "unknowns", nf, "bandwidth", k)
	b := mat.NewVecDense(nf, nil)
	var x mat.VecDense
	xf := make([]float64, nf)
	for rk := range out {
		for li := 0; li < nf; li++ {
			b.SetVec(pos[li], r.b[rk][li])
		}
		if err := chol.SolveVecTo(&x, b); err != nil {
			var cond mat.Condition
			if errors.As(err, &cond) {
				return nil, fmt.Errorf("condition number %g: %w", float64(cond), ErrSingular)
			}
			return nil, err
		}
		for li := 0; li < nf; li++ {
			xf[li] = x.AtVec(pos[li])
		}
		out[rk] = s.expand(r, rk, xf)
	}
	return out, nil
}
