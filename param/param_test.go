package param_test

import (
	"math"
	"testing"

	"github.com/soypat/ddg/form"
	"github.com/soypat/ddg/internal/d2"
	"github.com/soypat/ddg/mesh"
	"github.com/soypat/ddg/param"
	"github.com/soypat/ddg/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func assertUnitUV(t *testing.T, m *mesh.Mesh) {
	t.Helper()
	for v, vert := range m.Vertices {
		assert.True(t, vert.UV.X >= 0 && vert.UV.X <= 1 && vert.UV.Y >= 0 && vert.UV.Y <= 1,
			"vertex %d uv %v outside unit square", v, vert.UV)
	}
}

func TestCircleBoundary(t *testing.T) {
	m, err := form.Disk(6, 36, nil)
	require.NoError(t, err)
	require.NoError(t, param.Parameterize(m, param.Circle))
	assertUnitUV(t, m)
	center := r2.Vec{X: 0.5, Y: 0.5}
	for v, vert := range m.Vertices {
		d := r2.Norm(r2.Sub(vert.UV, center))
		if vert.Boundary {
			assert.InDelta(t, 0.5, d, 1e-9, "boundary vertex %d", v)
		} else {
			assert.Less(t, d, 0.5, "interior vertex %d", v)
		}
	}
}

func TestCircleBoundaryOddRim(t *testing.T) {
	m, err := form.Fan(7, 1)
	require.NoError(t, err)
	require.NoError(t, param.Parameterize(m, param.Circle))
	assertUnitUV(t, m)
	// The center vertex solves to the circle's center by symmetry.
	center := m.Vertices[0].UV
	radius := r2.Norm(r2.Sub(m.Vertices[1].UV, center))
	assert.GreaterOrEqual(t, radius, 0.5-1e-9)
	for v := 2; v < len(m.Vertices); v++ {
		d := r2.Norm(r2.Sub(m.Vertices[v].UV, center))
		assert.InDelta(t, radius, d, 1e-9, "rim vertex %d", v)
	}
}

func TestRectangleBoundary(t *testing.T) {
	m, err := form.Disk(5, 30, nil)
	require.NoError(t, err)
	require.NoError(t, param.Parameterize(m, param.Rectangle))
	assertUnitUV(t, m)
	corners := 0
	for v, vert := range m.Vertices {
		if !vert.Boundary {
			continue
		}
		u := vert.UV
		edge := math.Min(math.Min(u.X, 1-u.X), math.Min(u.Y, 1-u.Y))
		assert.InDelta(t, 0, edge, 1e-9, "boundary vertex %d at %v", v, u)
		for _, c := range (d2.Box{Max: r2.Vec{X: 1, Y: 1}}).Vertices() {
			if d2.EqualWithin(u, c, 1e-12) {
				corners++
			}
		}
	}
	assert.Equal(t, 4, corners)
}

func TestSquareFanCenter(t *testing.T) {
	m, err := form.Fan(4, 1)
	require.NoError(t, err)
	require.NoError(t, param.Parameterize(m, param.Rectangle))
	assert.InDelta(t, 0.5, m.Vertices[0].UV.X, 1e-9)
	assert.InDelta(t, 0.5, m.Vertices[0].UV.Y, 1e-9)
}

func TestBoundaryLoopOrder(t *testing.T) {
	m, err := form.Grid(5, 3, 5, 3, nil)
	require.NoError(t, err)
	loop, err := param.BoundaryLoop(m)
	require.NoError(t, err)
	require.Len(t, loop, 2*(5+3))
	ring := make([]r2.Vec, len(loop))
	seen := make(map[int]bool)
	for i, v := range loop {
		assert.True(t, m.Vertices[v].Boundary)
		seen[v] = true
		p := m.Vertices[v].Pos
		ring[i] = r2.Vec{X: p.X, Y: p.Y}
	}
	assert.Len(t, seen, len(loop))
	// Interior on the left means the loop winds counter-clockwise.
	assert.InDelta(t, 15, d2.SignedArea(ring), 1e-9)
}

func TestAnnulusFails(t *testing.T) {
	m, err := form.Annulus(0.5, 1, 3, 24)
	require.NoError(t, err)
	marker := r2.Vec{X: -7, Y: 3}
	for v := range m.Vertices {
		m.Vertices[v].UV = marker
	}
	err = param.Parameterize(m, param.Circle)
	assert.ErrorIs(t, err, param.ErrBoundaryTopology)
	for _, vert := range m.Vertices {
		assert.Equal(t, marker, vert.UV)
	}
}

// diskWithShell returns a disk plus a disjoint closed sphere, whose interior
// rows are not connected to any pinned vertex.
func diskWithShell(t *testing.T) *mesh.Mesh {
	t.Helper()
	disk, err := form.Disk(3, 12, nil)
	require.NoError(t, err)
	shell, err := form.Icosphere(0, 1)
	require.NoError(t, err)
	pos := disk.Positions()
	var faces [][3]int
	for f := range disk.Faces {
		faces = append(faces, disk.FaceVertices(f))
	}
	off := len(pos)
	for _, p := range shell.Positions() {
		pos = append(pos, r3.Add(p, r3.Vec{X: 5}))
	}
	for f := range shell.Faces {
		v := shell.FaceVertices(f)
		faces = append(faces, [3]int{v[0] + off, v[1] + off, v[2] + off})
	}
	m, err := mesh.New(pos, faces)
	require.NoError(t, err)
	return m
}

func TestSingularSystemLeavesUV(t *testing.T) {
	m := diskWithShell(t)
	marker := r2.Vec{X: -7, Y: 3}
	for v := range m.Vertices {
		m.Vertices[v].UV = marker
	}
	err := param.Parameterize(m, param.Circle)
	assert.ErrorIs(t, err, sparse.ErrSingular)
	for v, vert := range m.Vertices {
		assert.Equal(t, marker, vert.UV, "vertex %d", v)
	}
}

func TestClosedMeshFails(t *testing.T) {
	m, err := form.Icosphere(1, 1)
	require.NoError(t, err)
	_, err = param.BoundaryLoop(m)
	assert.ErrorIs(t, err, param.ErrBoundaryTopology)
}

func TestRectangleNeedsFourVertices(t *testing.T) {
	m, err := form.Fan(3, 1)
	require.NoError(t, err)
	err = param.Parameterize(m, param.Rectangle)
	require.Error(t, err)
	assert.Equal(t, r2.Vec{}, m.Vertices[0].UV)
	require.NoError(t, param.Parameterize(m, param.Circle))
}

func TestBoundaryShapeText(t *testing.T) {
	var s param.BoundaryShape
	require.NoError(t, s.UnmarshalText([]byte("square")))
	assert.Equal(t, param.Rectangle, s)
	require.NoError(t, s.UnmarshalText([]byte("Circle")))
	assert.Equal(t, param.Circle, s)
	b, err := s.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "circle", string(b))
	assert.Error(t, s.UnmarshalText([]byte("ellipse")))
}
