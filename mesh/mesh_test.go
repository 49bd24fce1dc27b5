package mesh_test

import (
	"math"
	"testing"

	"github.com/soypat/ddg/form"
	"github.com/soypat/ddg/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func unitSquare(t *testing.T) *mesh.Mesh {
	t.Helper()
	m, err := mesh.New([]r3.Vec{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
	}, [][3]int{{0, 1, 2}, {0, 2, 3}})
	require.NoError(t, err)
	return m
}

func TestNewSquare(t *testing.T) {
	m := unitSquare(t)
	assert.Len(t, m.HalfEdges, 6)
	assert.Equal(t, 5, m.NumEdges())
	assert.Equal(t, 1, m.EulerCharacteristic())
	assert.Len(t, m.BoundaryHalfEdges(), 4)
	assert.False(t, m.IsClosed())
	for v := range m.Vertices {
		assert.True(t, m.Vertices[v].Boundary)
		h := m.Vertices[v].HalfEdge
		assert.Equal(t, mesh.None, m.HalfEdges[h].Opposite, "boundary vertex %d starts at its boundary half-edge", v)
		assert.InDelta(t, 1, m.Vertices[v].Normal.Z, 1e-12)
	}
	assert.Equal(t, 3, m.Valence(0))
	assert.Equal(t, 2, m.Valence(1))
	assert.InDelta(t, 1, m.Area(), 1e-12)
	assert.InDelta(t, (4+math.Sqrt2)/5, m.MeanEdgeLength(), 1e-12)
	b := m.Bounds()
	assert.Equal(t, r3.Vec{}, b.Min)
	assert.Equal(t, r3.Vec{X: 1, Y: 1}, b.Max)
}

func TestCotWeight(t *testing.T) {
	m := unitSquare(t)
	// Half-edge 0 is 0->1, opposite the 45° corner at vertex 2.
	assert.InDelta(t, 1, m.CotWeight(0), 1e-12)
	// Half-edge 2 is the 2->0 diagonal, opposite two right angles.
	require.NotEqual(t, mesh.None, m.HalfEdges[2].Opposite)
	assert.InDelta(t, 0, m.CotWeight(2), 1e-12)
	assert.InDelta(t, math.Pi/2, m.CornerAngle(1), 1e-12)
	assert.InDelta(t, math.Pi/2, m.AngleSum(0), 1e-12)
}

func TestFanOneRing(t *testing.T) {
	m, err := form.Fan(6, 1)
	require.NoError(t, err)
	assert.False(t, m.Vertices[0].Boundary)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, m.Neighbors(0))
	assert.Equal(t, 6, m.Valence(0))
	assert.InDelta(t, 2*math.Pi, m.AngleSum(0), 1e-12)
	// Six equilateral triangles, each contributing a third of its area.
	assert.InDelta(t, math.Sqrt(3)/2, m.MixedArea(0), 1e-12)

	// Rim vertex 1 sees the next rim vertex, the center, then the previous rim vertex.
	assert.Equal(t, []int{2, 0, 6}, m.Neighbors(1))
	assert.Equal(t, 3, m.Valence(1))
	assert.InDelta(t, 2*math.Pi/3, m.AngleSum(1), 1e-12)
}

func TestMixedAreaPartitions(t *testing.T) {
	// Mixed areas tile the surface exactly, obtuse triangles included.
	m, err := form.Disk(4, 20, func(x, y float64) float64 { return 0.3 * x * y })
	require.NoError(t, err)
	var sum float64
	for v := range m.Vertices {
		sum += m.MixedArea(v)
	}
	assert.InDelta(t, m.Area(), sum, 1e-9)
}

func TestClosedMesh(t *testing.T) {
	m, err := form.Icosphere(0, 1)
	require.NoError(t, err)
	assert.Len(t, m.Vertices, 12)
	assert.Equal(t, 30, m.NumEdges())
	assert.Len(t, m.Faces, 20)
	assert.Equal(t, 2, m.EulerCharacteristic())
	assert.True(t, m.IsClosed())
	assert.Empty(t, m.BoundaryHalfEdges())
	for v := range m.Vertices {
		assert.Equal(t, 5, m.Valence(v))
		// Normals of a sphere centered at the origin point outward.
		assert.Greater(t, r3.Dot(m.Vertices[v].Normal, m.Vertices[v].Pos), 0.99)
	}
}

func TestNewErrors(t *testing.T) {
	pos := []r3.Vec{{X: 0}, {X: 1}, {Y: 1}, {X: 1, Y: 1}}
	_, err := mesh.New(pos, [][3]int{{0, 1, 2}, {0, 1, 3}})
	assert.ErrorIs(t, err, mesh.ErrNonManifold, "inconsistent orientation")
	_, err = mesh.New(pos, [][3]int{{0, 1, 2}})
	assert.ErrorIs(t, err, mesh.ErrIsolatedVertex)
	_, err = mesh.New(pos, [][3]int{{0, 1, 4}})
	assert.Error(t, err)
	_, err = mesh.New(pos, [][3]int{{0, 1, 1}})
	assert.Error(t, err)
	// Two fans touching at a single vertex.
	bowtie := []r3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {X: -1}, {X: -1, Y: -1}}
	_, err = mesh.New(bowtie, [][3]int{{0, 1, 2}, {0, 3, 4}})
	assert.ErrorIs(t, err, mesh.ErrNonManifold)
}

func TestFromTriangles(t *testing.T) {
	const jitter = 1e-9
	soup := [][3]r3.Vec{
		{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}},
		{{X: jitter, Y: 0}, {X: 1, Y: 1 + jitter}, {X: 0, Y: 1}},
		// Collapses once welded.
		{{X: 0, Y: 0}, {X: jitter}, {X: 1, Y: 0}},
	}
	m, err := mesh.FromTriangles(soup, 1e-6)
	require.NoError(t, err)
	assert.Len(t, m.Vertices, 4)
	assert.Len(t, m.Faces, 2)
	assert.Equal(t, 1, m.EulerCharacteristic())
	tris := m.Triangles()
	require.Len(t, tris, 2)
	assert.Equal(t, soup[0], tris[0])

	_, err = mesh.FromTriangles(nil, 0)
	assert.Error(t, err)
	_, err = mesh.FromTriangles(soup[:2], 10)
	assert.Error(t, err, "tolerance larger than the triangles")
}

func TestCloneRestore(t *testing.T) {
	m, err := form.Grid(3, 3, 1, 1, nil)
	require.NoError(t, err)
	orig := m.Clone()
	for v := range m.Vertices {
		m.Vertices[v].Pos.Z = 1 + m.Vertices[v].Pos.X
	}
	assert.Zero(t, orig.Vertices[5].Pos.Z, "clone does not share storage")
	require.NoError(t, m.RestorePositions(orig))
	assert.Equal(t, orig.Positions(), m.Positions())
	assert.InDelta(t, 1, m.Vertices[5].Normal.Z, 1e-12)

	small := unitSquare(t)
	assert.Error(t, m.RestorePositions(small))
}
