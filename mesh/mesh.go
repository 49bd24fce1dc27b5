// Package mesh implements the half-edge triangle mesh shared by the curvature,
// smoothing and parameterization subsystems.
//
// Vertices, half-edges and faces live in flat slices and reference each other
// by index. Connectivity is fixed at construction; processing steps only
// rewrite per-vertex attributes (position, normal, curvature, UV).
package mesh

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// None marks a missing index, e.g. the opposite of a boundary half-edge.
const None = -1

// Vertex is a mesh vertex and its per-vertex attributes.
type Vertex struct {
	Pos    r3.Vec
	Normal r3.Vec
	// Curvature is the normalized curvature scalar written by the curvature estimator.
	Curvature float64
	// UV is the texture coordinate written by the parameterization solver.
	UV       r2.Vec
	Boundary bool
	// HalfEdge is an outgoing half-edge. For boundary vertices it is the
	// outgoing boundary half-edge so a counter-clockwise walk covers the whole fan.
	HalfEdge int
}

// HalfEdge is one directed side of a face.
type HalfEdge struct {
	Origin   int
	Next     int
	Prev     int
	Opposite int // None on the boundary.
	Face     int
}

// Face is a triangle referencing one of its three half-edges.
type Face struct {
	HalfEdge int
	Normal   r3.Vec
}

// Mesh is a manifold triangle mesh in half-edge form.
type Mesh struct {
	Vertices  []Vertex
	HalfEdges []HalfEdge
	Faces     []Face
}

var (
	// ErrNonManifold is returned when faces cannot be assembled into a
	// consistently oriented manifold surface.
	ErrNonManifold = errors.New("non-manifold mesh")
	// ErrIsolatedVertex is returned when a vertex belongs to no face.
	ErrIsolatedVertex = errors.New("isolated vertex")
)

// New builds a half-edge mesh from vertex positions and counter-clockwise
// triangles indexing into positions. Normals are computed before returning.
func New(positions []r3.Vec, faces [][3]int) (*Mesh, error) {
	m := &Mesh{
		Vertices:  make([]Vertex, len(positions)),
		HalfEdges: make([]HalfEdge, 0, 3*len(faces)),
		Faces:     make([]Face, len(faces)),
	}
	for i := range m.Vertices {
		m.Vertices[i] = Vertex{Pos: positions[i], HalfEdge: None}
	}
	type dirEdge struct{ from, to int }
	edges := make(map[dirEdge]int, 3*len(faces))
	for fi, f := range faces {
		for j := range f {
			if f[j] < 0 || f[j] >= len(positions) {
				return nil, fmt.Errorf("face %d references vertex %d out of range [0, %d)", fi, f[j], len(positions))
			}
		}
		if f[0] == f[1] || f[1] == f[2] || f[2] == f[0] {
			return nil, fmt.Errorf("face %d has repeated vertex: %v", fi, f)
		}
		h0 := len(m.HalfEdges)
		m.Faces[fi] = Face{HalfEdge: h0}
		for j := 0; j < 3; j++ {
			h := h0 + j
			m.HalfEdges = append(m.HalfEdges, HalfEdge{
				Origin:   f[j],
				Next:     h0 + (j+1)%3,
				Prev:     h0 + (j+2)%3,
				Opposite: None,
				Face:     fi,
			})
			k := dirEdge{from: f[j], to: f[(j+1)%3]}
			if prev, ok := edges[k]; ok {
				return nil, fmt.Errorf("%w: directed edge %d->%d shared by faces %d and %d", ErrNonManifold, k.from, k.to, m.HalfEdges[prev].Face, fi)
			}
			edges[k] = h
			if m.Vertices[f[j]].HalfEdge == None {
				m.Vertices[f[j]].HalfEdge = h
			}
		}
	}
	for k, h := range edges {
		if opp, ok := edges[dirEdge{from: k.to, to: k.from}]; ok {
			m.HalfEdges[h].Opposite = opp
		}
	}
	// Boundary vertices start their fan at the outgoing boundary half-edge.
	boundaryOut := make([]int, len(positions))
	for h := range m.HalfEdges {
		if m.HalfEdges[h].Opposite != None {
			continue
		}
		v := m.HalfEdges[h].Origin
		boundaryOut[v]++
		m.Vertices[v].Boundary = true
		m.Vertices[v].HalfEdge = h
	}
	outDegree := make([]int, len(positions))
	for h := range m.HalfEdges {
		outDegree[m.HalfEdges[h].Origin]++
	}
	for v := range m.Vertices {
		if m.Vertices[v].HalfEdge == None {
			return nil, fmt.Errorf("%w: vertex %d", ErrIsolatedVertex, v)
		}
		if boundaryOut[v] > 1 {
			return nil, fmt.Errorf("%w: vertex %d joins %d boundary fans", ErrNonManifold, v, boundaryOut[v])
		}
		if got := len(m.Outgoing(v)); got != outDegree[v] {
			return nil, fmt.Errorf("%w: vertex %d fan covers %d of %d half-edges", ErrNonManifold, v, got, outDegree[v])
		}
	}
	m.ComputeNormals()
	return m, nil
}

// Dest returns the vertex half-edge h points to.
func (m *Mesh) Dest(h int) int {
	return m.HalfEdges[m.HalfEdges[h].Next].Origin
}

// FaceVertices returns the three vertex indices of face f in winding order.
func (m *Mesh) FaceVertices(f int) [3]int {
	h := m.Faces[f].HalfEdge
	he := m.HalfEdges[h]
	return [3]int{he.Origin, m.HalfEdges[he.Next].Origin, m.HalfEdges[he.Prev].Origin}
}

// Outgoing returns the outgoing half-edges of v in counter-clockwise order.
// For boundary vertices the first element is the outgoing boundary half-edge.
func (m *Mesh) Outgoing(v int) []int {
	start := m.Vertices[v].HalfEdge
	out := make([]int, 0, 8)
	h := start
	// Bounded by the total half-edge count so corrupt connectivity cannot loop forever.
	for range m.HalfEdges {
		out = append(out, h)
		h = m.HalfEdges[m.HalfEdges[h].Prev].Opposite
		if h == None || h == start {
			break
		}
	}
	return out
}

// Neighbors returns the one-ring of v in counter-clockwise order. Boundary
// vertices include the origin of the incoming boundary half-edge last.
func (m *Mesh) Neighbors(v int) []int {
	out := m.Outgoing(v)
	nb := make([]int, 0, len(out)+1)
	for _, h := range out {
		nb = append(nb, m.Dest(h))
	}
	if m.Vertices[v].Boundary {
		last := out[len(out)-1]
		nb = append(nb, m.HalfEdges[m.HalfEdges[last].Prev].Origin)
	}
	return nb
}

// Valence returns the number of edges incident to v.
func (m *Mesh) Valence(v int) int {
	n := len(m.Outgoing(v))
	if m.Vertices[v].Boundary {
		n++
	}
	return n
}

// NumEdges returns the number of undirected edges.
func (m *Mesh) NumEdges() int {
	n := 0
	for h := range m.HalfEdges {
		if opp := m.HalfEdges[h].Opposite; opp == None || h < opp {
			n++
		}
	}
	return n
}

// EulerCharacteristic returns V - E + F. A topological disk has characteristic 1.
func (m *Mesh) EulerCharacteristic() int {
	return len(m.Vertices) - m.NumEdges() + len(m.Faces)
}

// BoundaryHalfEdges returns every half-edge without an opposite.
func (m *Mesh) BoundaryHalfEdges() []int {
	var bnd []int
	for h := range m.HalfEdges {
		if m.HalfEdges[h].Opposite == None {
			bnd = append(bnd, h)
		}
	}
	return bnd
}

// IsClosed reports whether the mesh has no boundary.
func (m *Mesh) IsClosed() bool {
	for h := range m.HalfEdges {
		if m.HalfEdges[h].Opposite == None {
			return false
		}
	}
	return true
}

// Positions returns a copy of all vertex positions.
func (m *Mesh) Positions() []r3.Vec {
	pos := make([]r3.Vec, len(m.Vertices))
	for i := range m.Vertices {
		pos[i] = m.Vertices[i].Pos
	}
	return pos
}

// Clone returns a deep copy of the mesh, used to keep the original mesh
// alongside a processed one.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Vertices:  make([]Vertex, len(m.Vertices)),
		HalfEdges: make([]HalfEdge, len(m.HalfEdges)),
		Faces:     make([]Face, len(m.Faces)),
	}
	copy(c.Vertices, m.Vertices)
	copy(c.HalfEdges, m.HalfEdges)
	copy(c.Faces, m.Faces)
	return c
}

// RestorePositions copies positions from orig, which must share m's
// connectivity, and recomputes normals.
func (m *Mesh) RestorePositions(orig *Mesh) error {
	if len(orig.Vertices) != len(m.Vertices) || len(orig.Faces) != len(m.Faces) {
		return fmt.Errorf("snapshot has %d vertices and %d faces, mesh has %d and %d",
			len(orig.Vertices), len(orig.Faces), len(m.Vertices), len(m.Faces))
	}
	for i := range m.Vertices {
		m.Vertices[i].Pos = orig.Vertices[i].Pos
	}
	m.ComputeNormals()
	return nil
}
