package d2

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestCircumcenter(t *testing.T) {
	c, ok := Circumcenter(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 2, Y: 0}, r2.Vec{X: 0, Y: 2})
	assert.True(t, ok)
	assert.True(t, EqualWithin(r2.Vec{X: 1, Y: 1}, c, 1e-15))
	_, ok = Circumcenter(r2.Vec{}, r2.Vec{X: 1, Y: 1}, r2.Vec{X: 2, Y: 2})
	assert.False(t, ok, "collinear")
}

func TestInCircle(t *testing.T) {
	a, b, c := r2.Vec{X: 1}, r2.Vec{Y: 1}, r2.Vec{X: -1}
	assert.Greater(t, InCircle(a, b, c, r2.Vec{}), 0.0)
	assert.Less(t, InCircle(a, b, c, r2.Vec{X: 2}), 0.0)
	assert.InDelta(t, 0, InCircle(a, b, c, r2.Vec{Y: -1}), 1e-15)
	assert.Greater(t, Orient(a, b, c), 0.0)
}

func TestCentroid(t *testing.T) {
	square := Box{Min: r2.Vec{X: 1, Y: 1}, Max: r2.Vec{X: 3, Y: 2}}.Vertices()
	c, area := Centroid(square, 1e-12)
	assert.InDelta(t, 2, area, 1e-15)
	assert.InDelta(t, 2, SignedArea(square), 1e-15)
	assert.True(t, EqualWithin(r2.Vec{X: 2, Y: 1.5}, c, 1e-14))
	c, area = Centroid([]r2.Vec{{X: 1}, {X: 2}, {X: 3}}, 1e-12)
	assert.Zero(t, area)
	assert.Equal(t, r2.Vec{}, c)
}

func TestBox(t *testing.T) {
	a := NewBox(r2.Vec{X: 1}, r2.Vec{X: 2, Y: 4})
	assert.Equal(t, Box{Min: r2.Vec{X: 0, Y: -2}, Max: r2.Vec{X: 2, Y: 2}}, a)
	assert.InDelta(t, math.Sqrt(20), a.Diagonal(), 1e-15)
	assert.True(t, a.Contains(a.Max))
	assert.False(t, a.Contains(r2.Vec{X: 3}))
	b := Box{Min: r2.Vec{X: 10, Y: 10}, Max: r2.Vec{X: 11, Y: 14}}
	assert.True(t, EqualWithin(b.Center(), a.MapTo(b, a.Center()), 1e-15))
	assert.True(t, EqualWithin(b.Max, a.MapTo(b, a.Max), 1e-15))
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		assert.True(t, a.Contains(a.Random(rng)))
	}
	assert.True(t, a.Include(r2.Vec{X: 5}).Contains(r2.Vec{X: 5}))
}
