package sparse

import (
	"fmt"
	"math"

	"github.com/soypat/ddg"
	"gonum.org/v1/gonum/floats"
)

// CGSettings controls the conjugate gradient solver. Zero values select
// defaults.
type CGSettings struct {
	// Tolerance is the relative residual ||b - Ax|| / ||b|| at which the
	// solve stops. Default 1e-10.
	Tolerance float64
	// MaxIterations bounds the number of iterations. Default 10*n, at least 100.
	MaxIterations int
}

func (c CGSettings) withDefaults(n int) CGSettings {
	if c.Tolerance <= 0 {
		c.Tolerance = 1e-10
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = 10 * n
		if c.MaxIterations < 100 {
			c.MaxIterations = 100
		}
	}
	return c
}

// Result is the outcome of solving for one right hand side.
type Result struct {
	// X is the full length solution including pinned values. It is nil when
	// Err is not nil.
	X          []float64
	Iterations int
	Residual   float64
	Err        error
}

// SolveCG solves every right hand side independently with Jacobi
// preconditioned conjugate gradients. guess, if not nil, holds a full length
// initial guess per right hand side. A failure on one right hand side does
// not affect the others.
func (s *System) SolveCG(guess [][]float64, settings CGSettings) []Result {
	r := s.reduce()
	nf := len(r.free)
	settings = settings.withDefaults(nf)
	results := make([]Result, len(s.rhs))
	if nf == 0 {
		for k := range results {
			results[k].X = s.expand(r, k, nil)
		}
		return results
	}
	inv := r.a.Diagonal()
	for i, d := range inv {
		if d <= 0 || math.IsNaN(d) {
			for k := range results {
				results[k].Err = fmt.Errorf("free row %d has diagonal %g: %w", r.free[i], d, ErrIndefinite)
			}
			return results
		}
		inv[i] = 1 / d
	}
	for k := range results {
		x0 := make([]float64, nf)
		if guess != nil && guess[k] != nil {
			for li, gi := range r.free {
				x0[li] = guess[k][gi]
			}
		}
		res := pcg(r.a, inv, r.b[k], x0, settings)
		if res.Err == nil {
			res.X = s.expand(r, k, x0)
		}
		ddg.Logger().Debug("conjugate gradient", "rhs", k, "unknowns", nf, "iterations", res.Iterations, "residual", res.Residual, "err", res.Err)
		results[k] = res
	}
	return results
}

// pcg solves a x = b in place on x with diagonal preconditioner inv.
func pcg(a *CSR, inv, b, x []float64, settings CGSettings) Result {
	n := len(b)
	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		for i := range x {
			x[i] = 0
		}
		return Result{}
	}
	res := make([]float64, n)
	a.MulVecTo(res, x)
	floats.SubTo(res, b, res)
	z := make([]float64, n)
	floats.MulTo(z, inv, res)
	p := append([]float64(nil), z...)
	ap := make([]float64, n)
	rz := floats.Dot(res, z)
	target := settings.Tolerance * bnorm
	for it := 0; it < settings.MaxIterations; it++ {
		rnorm := floats.Norm(res, 2)
		if rnorm <= target {
			return Result{Iterations: it, Residual: rnorm / bnorm}
		}
		a.MulVecTo(ap, p)
		pap := floats.Dot(p, ap)
		if pap <= 0 || math.IsNaN(pap) {
			return Result{Iterations: it, Residual: rnorm / bnorm, Err: ErrIndefinite}
		}
		alpha := rz / pap
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(res, -alpha, ap)
		floats.MulTo(z, inv, res)
		rzNext := floats.Dot(res, z)
		beta := rzNext / rz
		rz = rzNext
		floats.AddScaledTo(p, z, beta, p)
	}
	rnorm := floats.Norm(res, 2)
	if rnorm <= target {
		return Result{Iterations: settings.MaxIterations, Residual: rnorm / bnorm}
	}
	return Result{
		Iterations: settings.MaxIterations,
		Residual:   rnorm / bnorm,
		Err:        fmt.Errorf("relative residual %g after %d iterations: %w", rnorm/bnorm, settings.MaxIterations, ErrNotConverged),
	}
}
