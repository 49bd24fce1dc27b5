package cvt_test

import (
	"image"
	"math"
	"math/rand"
	"testing"

	"github.com/soypat/ddg/cvt"
	"github.com/soypat/ddg/internal/d2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

const tol = 1e-9

func newEngine(t *testing.T, n int, seed int64) *cvt.Engine {
	t.Helper()
	e := cvt.NewEngine(cvt.WithRand(rand.New(rand.NewSource(seed))))
	require.NoError(t, e.GenerateRandomPoints(n))
	return e
}

// insideConvex reports whether p lies inside the convex ring, either winding.
func insideConvex(ring []r2.Vec, p r2.Vec) bool {
	sign := 0.0
	for i := range ring {
		o := d2.Orient(ring[i], ring[(i+1)%len(ring)], p)
		if math.Abs(o) <= tol {
			continue
		}
		if sign == 0 {
			sign = math.Copysign(1, o)
		} else if math.Copysign(1, o) != sign {
			return false
		}
	}
	return true
}

func assertPartition(t *testing.T, e *cvt.Engine) {
	t.Helper()
	dom := e.Domain()
	size := dom.Size()
	var total float64
	for i, cell := range e.Cells() {
		if cell == nil {
			continue
		}
		require.GreaterOrEqual(t, len(cell), 3, "cell %d", i)
		for _, v := range cell {
			assert.True(t, v.X >= dom.Min.X-tol && v.X <= dom.Max.X+tol && v.Y >= dom.Min.Y-tol && v.Y <= dom.Max.Y+tol,
				"cell %d vertex %v outside domain", i, v)
		}
		total += math.Abs(d2.SignedArea(cell))
	}
	assert.InDelta(t, size.X*size.Y, total, 1e-9)
}

func TestFourteenCells(t *testing.T) {
	e := newEngine(t, 10, 7)
	pts := e.Points()
	require.Len(t, pts, 14)
	assert.Equal(t, []r2.Vec(cvt.DefaultDomain.Vertices()), pts[:cvt.NumCorners])
	e.ComputeVoronoi()
	cells := e.Cells()
	require.Len(t, cells, 14)
	for i, cell := range cells {
		require.GreaterOrEqual(t, len(cell), 3, "cell %d", i)
		assert.True(t, insideConvex(cell, pts[i]), "site %d outside its cell", i)
	}
	assertPartition(t, e)
}

func TestCornersOnly(t *testing.T) {
	e := cvt.NewEngine()
	cells := e.Cells()
	require.Len(t, cells, 4)
	for i, cell := range cells {
		assert.InDelta(t, 1, math.Abs(d2.SignedArea(cell)), tol, "quadrant %d", i)
	}
	assert.Len(t, e.DelaunayEdges(), 5)
}

func TestVoronoiIdempotent(t *testing.T) {
	e := newEngine(t, 25, 3)
	e.ComputeVoronoi()
	first := e.Cells()
	e.ComputeVoronoi()
	assert.Equal(t, first, e.Cells())
}

func TestNearestSiteOwnsCell(t *testing.T) {
	e := newEngine(t, 40, 11)
	cells := e.Cells()
	rng := rand.New(rand.NewSource(99))
	for k := 0; k < 500; k++ {
		p := e.Domain().Random(rng)
		s := e.NearestSite(p)
		assert.True(t, insideConvex(cells[s], p), "sample %v not in cell of nearest site %d", p, s)
	}
}

func TestDelaunayEdgeCount(t *testing.T) {
	e := newEngine(t, 30, 5)
	// Planar triangulation of a convex region: V - E + T = 1.
	v := len(e.Points())
	tris := len(e.Triangles())
	assert.Equal(t, v+tris-1, len(e.DelaunayEdges()))
	for _, tri := range e.Triangles() {
		pts := e.Points()
		assert.Greater(t, d2.Orient(pts[tri[0]], pts[tri[1]], pts[tri[2]]), 0.0)
	}
}

func TestSameSeedSameTessellation(t *testing.T) {
	a := newEngine(t, 20, 1)
	b := newEngine(t, 20, 1)
	assert.Equal(t, a.Triangles(), b.Triangles())
	assert.Equal(t, a.Cells(), b.Cells())
	for it := 0; it < 10; it++ {
		require.NoError(t, a.LloydRelax())
		require.NoError(t, b.LloydRelax())
	}
	assert.Equal(t, a.Points(), b.Points())
	assert.Equal(t, a.DelaunayEdges(), b.DelaunayEdges())
}

func TestLloydDoesNotDiverge(t *testing.T) {
	e := newEngine(t, 50, 13)
	corners := e.Points()[:cvt.NumCorners]
	energy := e.Energy()
	residual := e.Residual()
	for it := 0; it < 15; it++ {
		require.NoError(t, e.LloydRelax())
		next := e.Energy()
		assert.LessOrEqual(t, next, energy+1e-12, "iteration %d", it)
		energy = next
	}
	assert.Less(t, e.Residual(), residual/2, "sites approach their centroids")
	pts := e.Points()
	assert.Equal(t, corners, pts[:cvt.NumCorners])
	for i, p := range pts {
		assert.True(t, e.Domain().Contains(p), "site %d left the domain", i)
	}
	assertPartition(t, e)
}

func TestAddPoint(t *testing.T) {
	e := newEngine(t, 5, 17)
	err := e.AddPoint(r2.Vec{X: 2, Y: 0})
	assert.ErrorIs(t, err, cvt.ErrOutsideDomain)
	assert.Len(t, e.Points(), 9)

	// On the domain boundary.
	require.NoError(t, e.AddPoint(r2.Vec{X: 0, Y: -1}))
	require.NoError(t, e.AddPoint(r2.Vec{X: 1, Y: 0.25}))
	assertPartition(t, e)

	// A coincident site is kept in the point set but owns no cell.
	dup := e.Points()[6]
	require.NoError(t, e.AddPoint(dup))
	cells := e.Cells()
	require.Len(t, cells, 12)
	assert.Nil(t, cells[11])
	assert.NotNil(t, cells[6])
	assertPartition(t, e)
	require.NoError(t, e.LloydRelax())
}

func TestImageDomain(t *testing.T) {
	e := newEngine(t, 20, 19)
	before := e.Points()
	require.NoError(t, e.SetViewport(800, 600))
	assert.Equal(t, cvt.DefaultDomain, e.Domain())

	require.NoError(t, e.SetImage(image.NewRGBA(image.Rect(0, 0, 100, 100))))
	want := d2.Box{Min: r2.Vec{X: -0.75, Y: -1}, Max: r2.Vec{X: 0.75, Y: 1}}
	assert.True(t, want.Equals(e.Domain(), 1e-12), "got domain %v", e.Domain())
	pts := e.Points()
	for i, c := range want.Vertices() {
		assert.True(t, d2.EqualWithin(c, pts[i], 1e-12), "corner %d at %v", i, pts[i])
	}
	for i := cvt.NumCorners; i < len(pts); i++ {
		assert.InDelta(t, before[i].X*0.75, pts[i].X, 1e-12)
		assert.InDelta(t, before[i].Y, pts[i].Y, 1e-12)
	}
	assertPartition(t, e)

	// A 3:1 image is wider than the 4:3 viewport and fills its width.
	require.NoError(t, e.SetImage(image.NewRGBA(image.Rect(0, 0, 300, 100))))
	want = d2.Box{Min: r2.Vec{X: -1, Y: -4. / 9}, Max: r2.Vec{X: 1, Y: 4. / 9}}
	assert.True(t, want.Equals(e.Domain(), 1e-12), "got domain %v", e.Domain())

	e.ClearImage()
	assert.True(t, cvt.DefaultDomain.Equals(e.Domain(), 1e-12))
	assertPartition(t, e)

	assert.Error(t, e.SetViewport(0, 10))
	assert.Error(t, e.SetImage(image.NewRGBA(image.Rectangle{})))
}

func TestGenerateRandomPointsNegative(t *testing.T) {
	e := cvt.NewEngine()
	assert.Error(t, e.GenerateRandomPoints(-1))
	assert.Len(t, e.Points(), cvt.NumCorners)
}
