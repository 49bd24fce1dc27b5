package d2

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Circumcenter returns the center of the circle through a, b and c.
// ok is false when the points are collinear within tolerance.
func Circumcenter(a, b, c r2.Vec) (center r2.Vec, ok bool) {
	ab := r2.Sub(b, a)
	ac := r2.Sub(c, a)
	d := 2 * Cross(ab, ac)
	scale := math.Max(r2.Norm2(ab), r2.Norm2(ac))
	if math.Abs(d) <= 1e-14*scale || scale == 0 {
		return r2.Vec{}, false
	}
	ab2 := r2.Norm2(ab)
	ac2 := r2.Norm2(ac)
	return r2.Vec{
		X: a.X + (ac.Y*ab2-ab.Y*ac2)/d,
		Y: a.Y + (ab.X*ac2-ac.X*ab2)/d,
	}, true
}

// InCircle is positive when d lies strictly inside the circumcircle of the
// counter-clockwise triangle abc, negative outside and zero on the circle.
func InCircle(a, b, c, d r2.Vec) float64 {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y
	ad := adx*adx + ady*ady
	bd := bdx*bdx + bdy*bdy
	cd := cdx*cdx + cdy*cdy
	return adx*(bdy*cd-bd*cdy) -
		ady*(bdx*cd-bd*cdx) +
		ad*(bdx*cdy-bdy*cdx)
}

// SignedArea returns the shoelace area of a closed ring. The ring is not
// required to repeat its first vertex. Counter-clockwise rings are positive.
func SignedArea(ring []r2.Vec) float64 {
	var sum float64
	for i := range ring {
		sum += Cross(ring[i], ring[(i+1)%len(ring)])
	}
	return sum / 2
}

// Centroid returns the area centroid of a closed ring and its signed area.
// The centroid is the origin when |area| <= eps.
func Centroid(ring []r2.Vec, eps float64) (c r2.Vec, area float64) {
	var cx, cy float64
	for i := range ring {
		p, q := ring[i], ring[(i+1)%len(ring)]
		cr := Cross(p, q)
		area += cr
		cx += (p.X + q.X) * cr
		cy += (p.Y + q.Y) * cr
	}
	area /= 2
	if math.Abs(area) <= eps {
		return r2.Vec{}, area
	}
	return r2.Vec{X: cx / (6 * area), Y: cy / (6 * area)}, area
}
