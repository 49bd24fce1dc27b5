package d2

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Box is a 2d bounding box.
type Box r2.Box

// NewBox creates a 2d box with a given center and size.
func NewBox(center, size r2.Vec) Box {
	half := r2.Scale(0.5, size)
	return Box{r2.Sub(center, half), r2.Add(center, half)}
}

// Equals test the equality of 2d boxes.
func (a Box) Equals(b Box, tol float64) bool {
	return EqualWithin(a.Min, b.Min, tol) && EqualWithin(a.Max, b.Max, tol)
}

// Include enlarges a 2d box to include a point.
func (a Box) Include(v r2.Vec) Box {
	return Box{MinElem(a.Min, v), MaxElem(a.Max, v)}
}

// Size returns the size of a 2d box.
func (a Box) Size() r2.Vec {
	return r2.Sub(a.Max, a.Min)
}

// Center returns the center of a 2d box.
func (a Box) Center() r2.Vec {
	return r2.Add(a.Min, r2.Scale(0.5, a.Size()))
}

// Contains checks if the 2d box contains the given vector (considering bounds as inside).
func (a Box) Contains(v r2.Vec) bool {
	return a.Min.X <= v.X && a.Min.Y <= v.Y &&
		v.X <= a.Max.X && v.Y <= a.Max.Y
}

// Vertices returns the corners of the box in counter-clockwise order
// starting at the bottom left.
func (a Box) Vertices() Set {
	return Set{
		a.Min,
		{X: a.Max.X, Y: a.Min.Y},
		a.Max,
		{X: a.Min.X, Y: a.Max.Y},
	}
}

// Diagonal returns the length of the box diagonal.
func (a Box) Diagonal() float64 {
	return r2.Norm(a.Size())
}

// MapTo returns p's position in b given p's position relative to a.
// Degenerate axes of a map to the center of b.
func (a Box) MapTo(b Box, p r2.Vec) r2.Vec {
	sa, sb := a.Size(), b.Size()
	out := b.Center()
	if sa.X > 0 {
		out.X = b.Min.X + (p.X-a.Min.X)*sb.X/sa.X
	}
	if sa.Y > 0 {
		out.Y = b.Min.Y + (p.Y-a.Min.Y)*sb.Y/sa.Y
	}
	return out
}

// Random returns a random point within a bounding box.
func (b Box) Random(rng *rand.Rand) r2.Vec {
	return r2.Vec{
		X: randomRange(rng, b.Min.X, b.Max.X),
		Y: randomRange(rng, b.Min.Y, b.Max.Y),
	}
}

// randomRange returns a random float64 [a,b)
func randomRange(rng *rand.Rand, a, b float64) float64 {
	return a + (b-a)*rng.Float64()
}
