// Package smooth relaxes a triangle mesh towards a minimal surface with the
// Laplacian family of operators. Boundary vertices never move.
//
// The iterative methods take explicit Jacobi steps: every new position is
// computed from the previous iterate before any is written. The sparse
// global method instead solves the harmonic system for all interior
// positions at once.
package smooth

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/soypat/ddg"
	"github.com/soypat/ddg/curvature"
	"github.com/soypat/ddg/mesh"
	"github.com/soypat/ddg/sparse"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNoBoundary is returned by the global solve on a closed mesh.
var ErrNoBoundary = errors.New("smooth: mesh has no boundary to pin")

// IterationMethod selects the smoothing operator.
type IterationMethod int

const (
	// UniformLaplacian moves each vertex towards the average of its neighbors.
	UniformLaplacian IterationMethod = iota
	// CotangentWeights moves each vertex towards the cotangent weighted
	// average of its neighbors.
	CotangentWeights
	// CotangentWithArea takes a mean curvature flow step normalized by the
	// vertex's mixed area.
	CotangentWithArea
	// SparseGlobalSolve solves for the discrete minimal surface spanning the
	// boundary in a single linear solve per axis.
	SparseGlobalSolve
)

func (m IterationMethod) String() string {
	switch m {
	case UniformLaplacian:
		return "uniform"
	case CotangentWeights:
		return "cotangent"
	case CotangentWithArea:
		return "cotangent-area"
	case SparseGlobalSolve:
		return "sparse"
	}
	return fmt.Sprintf("IterationMethod(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m IterationMethod) MarshalText() ([]byte, error) {
	if m < UniformLaplacian || m > SparseGlobalSolve {
		return nil, fmt.Errorf("invalid iteration method %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *IterationMethod) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "uniform", "uniform-laplacian":
		*m = UniformLaplacian
	case "cotangent", "cot":
		*m = CotangentWeights
	case "cotangent-area", "cotangent-with-area", "cot-area":
		*m = CotangentWithArea
	case "sparse", "global", "sparse-global":
		*m = SparseGlobalSolve
	default:
		return fmt.Errorf("unknown iteration method %q", text)
	}
	return nil
}

// Options configures Relax.
type Options struct {
	Method IterationMethod
	// Iterations is the number of explicit steps. Ignored by SparseGlobalSolve.
	Iterations int
	// Lambda is the step size of the iterative methods, usually in (0,1].
	Lambda float64
	// Curvature is recomputed into the mesh after smoothing.
	Curvature ddg.CurvatureKind
	// Solver tunes the conjugate gradient solve of SparseGlobalSolve.
	Solver sparse.CGSettings
}

// DefaultOptions returns the options used by the command line tool when
// nothing else is configured.
func DefaultOptions() Options {
	return Options{
		Method:     CotangentWeights,
		Iterations: 10,
		Lambda:     0.5,
		Curvature:  ddg.Mean,
	}
}

func (o Options) validate() error {
	switch {
	case o.Method < UniformLaplacian || o.Method > SparseGlobalSolve:
		return fmt.Errorf("smooth: invalid method %d", int(o.Method))
	case o.Method == SparseGlobalSolve:
		return nil
	case o.Iterations < 0:
		return fmt.Errorf("smooth: negative iteration count %d", o.Iterations)
	case !(o.Lambda > 0) || math.IsInf(o.Lambda, 0):
		return fmt.Errorf("smooth: step size must be positive and finite, got %g", o.Lambda)
	}
	return nil
}

// Relax smooths the interior vertices of m in place, then recomputes vertex
// normals and curvature. On invalid options m is left untouched. The global
// solve reports per-axis failures joined in the returned error and leaves a
// failed axis unmodified.
func Relax(m *mesh.Mesh, opts Options) error {
	if len(m.Vertices) == 0 {
		return nil
	}
	if err := opts.validate(); err != nil {
		return err
	}
	var err error
	if opts.Method == SparseGlobalSolve {
		err = globalSolve(m, opts.Solver)
		if errors.Is(err, ErrNoBoundary) {
			return err
		}
	} else {
		s := stepper{m: m, opts: opts, next: make([]r3.Vec, len(m.Vertices))}
		for it := 0; it < opts.Iterations; it++ {
			s.step()
		}
		ddg.Logger().Debug("relaxed", "method", opts.Method, "iterations", opts.Iterations, "lambda", opts.Lambda, "fallbacks", s.fallbacks)
	}
	m.ComputeNormals()
	curvature.Estimate(m, opts.Curvature)
	return err
}

type stepper struct {
	m    *mesh.Mesh
	opts Options
	next []r3.Vec
	// fallbacks counts vertex updates that could not use the requested
	// weighting and used a simpler one.
	fallbacks int
}

func (s *stepper) step() {
	m := s.m
	for v := range m.Vertices {
		p := m.Vertices[v].Pos
		if m.Vertices[v].Boundary {
			s.next[v] = p
			continue
		}
		var delta r3.Vec
		switch s.opts.Method {
		case UniformLaplacian:
			delta = s.uniform(v)
		case CotangentWeights:
			delta = s.cotangent(v)
		case CotangentWithArea:
			delta = s.cotangentArea(v)
		}
		s.next[v] = r3.Add(p, r3.Scale(s.opts.Lambda, delta))
	}
	for v := range m.Vertices {
		m.Vertices[v].Pos = s.next[v]
	}
}

// uniform returns the vector from v to the average of its neighbors.
func (s *stepper) uniform(v int) r3.Vec {
	m := s.m
	out := m.Outgoing(v)
	if len(out) == 0 {
		return r3.Vec{}
	}
	var sum r3.Vec
	for _, h := range out {
		sum = r3.Add(sum, m.Vertices[m.Dest(h)].Pos)
	}
	return r3.Sub(r3.Scale(1/float64(len(out)), sum), m.Vertices[v].Pos)
}

// weightedSum returns sum w_ij (p_j - p_i) and sum w_ij over the one-ring
// of v with non-negative cotangent weights.
func (s *stepper) weightedSum(v int) (sum r3.Vec, total float64) {
	m := s.m
	p := m.Vertices[v].Pos
	for _, h := range m.Outgoing(v) {
		w := edgeWeight(m, h)
		total += w
		sum = r3.Add(sum, r3.Scale(w, r3.Sub(m.Vertices[m.Dest(h)].Pos, p)))
	}
	return sum, total
}

func (s *stepper) cotangent(v int) r3.Vec {
	sum, total := s.weightedSum(v)
	if total <= ddg.Epsilon {
		s.fallbacks++
		return s.uniform(v)
	}
	return r3.Scale(1/total, sum)
}

func (s *stepper) cotangentArea(v int) r3.Vec {
	sum, total := s.weightedSum(v)
	area := s.m.MixedArea(v)
	if area <= ddg.Epsilon || s.opts.Lambda*total/(4*area) > 1 {
		s.fallbacks++
		return s.cotangent(v)
	}
	return r3.Scale(1/(4*area), sum)
}

// edgeWeight is the cotangent weight of the edge of h clamped to be
// non-negative.
func edgeWeight(m *mesh.Mesh, h int) float64 {
	return math.Max(0, m.CotWeight(h))
}

// globalSolve pins boundary vertices and solves the cotangent Laplace
// system L p = 0 for every coordinate axis.
func globalSolve(m *mesh.Mesh, settings sparse.CGSettings) error {
	n := len(m.Vertices)
	hasBoundary := false
	for v := range m.Vertices {
		if m.Vertices[v].Boundary {
			hasBoundary = true
			break
		}
	}
	if !hasBoundary {
		return ErrNoBoundary
	}
	uniform := false
	for v := range m.Vertices {
		if m.Vertices[v].Boundary {
			continue
		}
		var total float64
		for _, h := range m.Outgoing(v) {
			total += edgeWeight(m, h)
		}
		if total <= ddg.Epsilon {
			uniform = true
			break
		}
	}
	if uniform {
		ddg.Logger().Warn("degenerate cotangent row, using uniform weights for global solve")
	}
	sys := sparse.NewSystem(n, 3)
	guess := [][]float64{make([]float64, n), make([]float64, n), make([]float64, n)}
	for v := range m.Vertices {
		p := m.Vertices[v].Pos
		guess[0][v], guess[1][v], guess[2][v] = p.X, p.Y, p.Z
		if m.Vertices[v].Boundary {
			sys.Pin(v, p.X, p.Y, p.Z)
			continue
		}
		var total float64
		for _, h := range m.Outgoing(v) {
			w := 1.0
			if !uniform {
				w = edgeWeight(m, h)
			}
			total += w
			sys.Add(v, m.Dest(h), -w)
		}
		sys.Add(v, v, total)
	}
	results := sys.SolveCG(guess, settings)
	var errs []error
	for axis, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("axis %c: %w", "xyz"[axis], res.Err))
			continue
		}
		for v := range m.Vertices {
			if m.Vertices[v].Boundary {
				continue
			}
			switch axis {
			case 0:
				m.Vertices[v].Pos.X = res.X[v]
			case 1:
				m.Vertices[v].Pos.Y = res.X[v]
			case 2:
				m.Vertices[v].Pos.Z = res.X[v]
			}
		}
	}
	return errors.Join(errs...)
}
