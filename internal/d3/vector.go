package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// R3 vector helpers that gonum's r3 package does not provide.

// collinearTol is the relative tolerance under which two edge vectors are
// considered parallel. Angles smaller than this have no usable cotangent.
const collinearTol = 1e-10

func Elem(sides float64) r3.Vec {
	return r3.Vec{
		X: sides,
		Y: sides,
		Z: sides,
	}
}

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

func Max(a r3.Vec) float64 {
	return math.Max(a.Z, math.Max(a.X, a.Y))
}

// Cot returns the cotangent of the angle between a and b. Nearly parallel
// or zero length vectors yield 0.
func Cot(a, b r3.Vec) float64 {
	cr := r3.Norm(r3.Cross(a, b))
	if cr <= collinearTol*r3.Norm(a)*r3.Norm(b) {
		return 0
	}
	return r3.Dot(a, b) / cr
}

// Angle returns the unsigned angle between a and b in [0, pi].
func Angle(a, b r3.Vec) float64 {
	return math.Atan2(r3.Norm(r3.Cross(a, b)), r3.Dot(a, b))
}

// TriangleArea returns the area of triangle abc.
func TriangleArea(a, b, c r3.Vec) float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
}

// TriangleNormal returns the unit normal of the counter-clockwise triangle abc.
// Degenerate triangles return the zero vector.
func TriangleNormal(a, b, c r3.Vec) r3.Vec {
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	l := r3.Norm(n)
	if l == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/l, n)
}
