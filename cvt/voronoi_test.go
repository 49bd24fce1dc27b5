package cvt

import (
	"math"
	"testing"

	"github.com/soypat/ddg/internal/d2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestClipTriangle(t *testing.T) {
	box := d2.Box{Min: r2.Vec{X: -1, Y: -1}, Max: r2.Vec{X: 1, Y: 1}}
	// Large triangle covering the lower left quadrant.
	ring := []r2.Vec{{X: 0, Y: -20}, {X: 0, Y: 0}, {X: -20, Y: 0}}
	got := clip(ring, box)
	require.GreaterOrEqual(t, len(got), 4)
	assert.InDelta(t, 1, math.Abs(d2.SignedArea(got)), 1e-12)

	// Fully inside is returned unchanged.
	inner := []r2.Vec{{X: 0, Y: 0}, {X: 0.5, Y: 0}, {X: 0, Y: 0.5}}
	assert.Equal(t, inner, clip(append([]r2.Vec(nil), inner...), box))

	// Fully outside clips away.
	outside := []r2.Vec{{X: 2, Y: 2}, {X: 3, Y: 2}, {X: 2, Y: 3}}
	assert.Nil(t, clip(outside, box))
}

func TestFarPointOutward(t *testing.T) {
	// Hull edge along +X with the triangulation above it.
	p := farPoint(r2.Vec{}, r2.Vec{X: -1, Y: -1}, r2.Vec{X: 1, Y: -1}, 10)
	assert.InDelta(t, 0, p.X, 1e-12)
	assert.InDelta(t, -10, p.Y, 1e-12)
}

func TestFanOrder(t *testing.T) {
	pts := append([]r2.Vec(nil), DefaultDomain.Vertices()...)
	pts = append(pts, r2.Vec{})
	tr := delaunay(pts, 1e-12)
	require.Len(t, tr.tris, 4)
	out, closed := tr.fan(4)
	assert.True(t, closed)
	assert.Len(t, out, 4)
	for i := 1; i < len(out); i++ {
		a := r2.Sub(pts[tr.dest(out[i-1])], pts[4])
		b := r2.Sub(pts[tr.dest(out[i])], pts[4])
		assert.Greater(t, d2.Cross(a, b), 0.0, "fan not counter-clockwise")
	}
	out, closed = tr.fan(0)
	assert.False(t, closed)
	assert.Equal(t, 1, tr.dest(out[0]), "corner fan must start on the bottom edge")
}
