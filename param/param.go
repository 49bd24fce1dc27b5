// Package param computes a harmonic disk parameterization of a triangle
// mesh: the single boundary loop is mapped onto a circle or a square and
// the interior follows from a cotangent Laplace solve. Results are written
// to each vertex's UV in [0,1]².
package param

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/soypat/ddg"
	"github.com/soypat/ddg/internal/d2"
	"github.com/soypat/ddg/mesh"
	"github.com/soypat/ddg/sparse"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrBoundaryTopology is returned when the mesh does not have exactly one
// boundary loop.
var ErrBoundaryTopology = errors.New("param: mesh must have exactly one boundary loop")

// BoundaryShape is the planar curve the boundary loop is mapped onto.
type BoundaryShape int

const (
	// Rectangle maps the boundary onto the unit square, splitting the loop
	// into four runs of near-equal vertex count.
	Rectangle BoundaryShape = iota
	// Circle maps the boundary onto a circle by arc length.
	Circle
)

func (s BoundaryShape) String() string {
	switch s {
	case Rectangle:
		return "rectangle"
	case Circle:
		return "circle"
	}
	return fmt.Sprintf("BoundaryShape(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s BoundaryShape) MarshalText() ([]byte, error) {
	if s != Rectangle && s != Circle {
		return nil, fmt.Errorf("invalid boundary shape %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *BoundaryShape) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "rectangle", "square", "rect":
		*s = Rectangle
	case "circle", "disk":
		*s = Circle
	default:
		return fmt.Errorf("unknown boundary shape %q", text)
	}
	return nil
}

// BoundaryLoop returns the vertices of the mesh's boundary in cyclic order
// with the interior on the left. It fails with ErrBoundaryTopology on a
// closed mesh or one with several boundary loops.
func BoundaryLoop(m *mesh.Mesh) ([]int, error) {
	bnd := m.BoundaryHalfEdges()
	if len(bnd) == 0 {
		return nil, fmt.Errorf("closed mesh: %w", ErrBoundaryTopology)
	}
	g := simple.NewUndirectedGraph()
	for _, h := range bnd {
		a, b := m.HalfEdges[h].Origin, m.Dest(h)
		g.SetEdge(g.NewEdge(simple.Node(a), simple.Node(b)))
	}
	if loops := len(topo.ConnectedComponents(g)); loops != 1 {
		return nil, fmt.Errorf("found %d boundary loops: %w", loops, ErrBoundaryTopology)
	}
	loop := make([]int, 0, len(bnd))
	start := bnd[0]
	h := start
	for range bnd {
		loop = append(loop, m.HalfEdges[h].Origin)
		h = m.Vertices[m.Dest(h)].HalfEdge
		if h == start {
			return loop, nil
		}
	}
	return nil, fmt.Errorf("boundary walk did not close after %d edges: %w", len(bnd), ErrBoundaryTopology)
}

// MapBoundary returns planar positions for the loop's vertices on the given
// shape. Circle positions lie on the unit circle; rectangle positions lie on
// the edges of the unit square [0,1]² with corners at the exact square corners.
func MapBoundary(m *mesh.Mesh, loop []int, shape BoundaryShape) ([]r2.Vec, error) {
	switch shape {
	case Circle:
		if len(loop) < 3 {
			return nil, fmt.Errorf("circle boundary needs 3 vertices, got %d", len(loop))
		}
		arc, total := arcLengths(m, loop, 0, len(loop))
		uv := make([]r2.Vec, len(loop))
		for i := range loop {
			t := float64(i) / float64(len(loop))
			if total > ddg.Epsilon {
				t = arc[i] / total
			}
			uv[i] = d2.Pol{R: 1, Theta: ddg.Tau * t}.PolarToCartesian()
		}
		return uv, nil
	case Rectangle:
		return mapSquare(m, loop)
	}
	return nil, fmt.Errorf("invalid boundary shape %d", int(shape))
}

func mapSquare(m *mesh.Mesh, loop []int) ([]r2.Vec, error) {
	n := len(loop)
	if n < 4 {
		return nil, fmt.Errorf("rectangle boundary needs 4 vertices, got %d", n)
	}
	corners := d2.Box{Max: r2.Vec{X: 1, Y: 1}}.Vertices()
	var split [5]int
	for k := 0; k < 4; k++ {
		split[k] = int(math.Round(float64(k*n) / 4))
	}
	split[4] = n
	uv := make([]r2.Vec, n)
	for k := 0; k < 4; k++ {
		from, to := corners[k], corners[(k+1)%4]
		lo, hi := split[k], split[k+1]
		arc, total := arcLengths(m, loop, lo, hi)
		count := hi - lo
		for i := lo; i < hi; i++ {
			t := float64(i-lo) / float64(count)
			if total > ddg.Epsilon {
				t = arc[i-lo] / total
			}
			uv[i] = r2.Add(from, r2.Scale(t, r2.Sub(to, from)))
		}
	}
	return uv, nil
}

// arcLengths returns the cumulative 3D arc length at loop[lo:hi] measured
// from loop[lo], and the length from loop[lo] to loop[hi%len(loop)].
func arcLengths(m *mesh.Mesh, loop []int, lo, hi int) (arc []float64, total float64) {
	arc = make([]float64, hi-lo)
	for i := lo; i < hi; i++ {
		arc[i-lo] = total
		p := m.Vertices[loop[i]].Pos
		q := m.Vertices[loop[(i+1)%len(loop)]].Pos
		total += r3.Norm(r3.Sub(q, p))
	}
	return arc, total
}

// Parameterize maps the boundary loop of m onto shape, solves the cotangent
// Laplace equation for the interior vertices and writes the result, scaled
// uniformly into [0,1]², to every vertex's UV. On error no UV is written.
func Parameterize(m *mesh.Mesh, shape BoundaryShape) error {
	loop, err := BoundaryLoop(m)
	if err != nil {
		return err
	}
	bnd, err := MapBoundary(m, loop, shape)
	if err != nil {
		return err
	}
	if chi := m.EulerCharacteristic(); chi != 1 {
		ddg.Logger().Warn("parameterizing mesh that is not a topological disk", "euler", chi)
	}
	n := len(m.Vertices)
	sys := sparse.NewSystem(n, 2)
	for i, v := range loop {
		sys.Pin(v, bnd[i].X, bnd[i].Y)
	}
	for v := range m.Vertices {
		if sys.Pinned(v) {
			continue
		}
		var total float64
		for _, h := range m.Outgoing(v) {
			w := m.CotWeight(h)
			total += w
			sys.Add(v, m.Dest(h), -w)
		}
		sys.Add(v, v, total)
	}
	sol, err := sys.SolveCholesky()
	if err != nil {
		return fmt.Errorf("param: %s boundary: %w", shape, err)
	}
	uv := make([]r2.Vec, n)
	bb := d2.Box{Min: r2.Vec{X: math.Inf(1), Y: math.Inf(1)}, Max: r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}}
	for v := range uv {
		uv[v] = r2.Vec{X: sol[0][v], Y: sol[1][v]}
		if math.IsNaN(uv[v].X) || math.IsNaN(uv[v].Y) {
			return fmt.Errorf("param: vertex %d solved to NaN: %w", v, sparse.ErrSingular)
		}
		bb = bb.Include(uv[v])
	}
	size := bb.Size()
	scale := math.Max(size.X, size.Y)
	if scale <= ddg.Epsilon {
		return fmt.Errorf("param: parameterization collapsed to a point: %w", sparse.ErrSingular)
	}
	offset := r2.Scale(0.5, r2.Vec{X: 1 - size.X/scale, Y: 1 - size.Y/scale})
	for v := range uv {
		p := r2.Add(r2.Scale(1/scale, r2.Sub(uv[v], bb.Min)), offset)
		m.Vertices[v].UV = r2.Vec{X: clamp01(p.X), Y: clamp01(p.Y)}
	}
	ddg.Logger().Debug("parameterized", "shape", shape, "vertices", n, "boundary", len(loop))
	return nil
}

// clamp01 removes rounding excursions just outside the unit interval.
func clamp01(x float64) float64 {
	return math.Min(1, math.Max(0, x))
}
