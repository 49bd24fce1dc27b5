package cvt

import (
	"github.com/soypat/ddg/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// farFactor scales the domain diagonal to place the far points that close
// the unbounded cells of hull sites.
const farFactor = 4

// voronoi returns the clipped Voronoi cell of every point of tr, dual to the
// triangulation. Points that were not inserted get a nil cell.
func voronoi(tr *triangulation, domain d2.Box) [][]r2.Vec {
	cc := make([]r2.Vec, len(tr.tris))
	for t, v := range tr.tris {
		a, b, c := tr.points[v[0]], tr.points[v[1]], tr.points[v[2]]
		center, ok := d2.Circumcenter(a, b, c)
		if !ok {
			center = r2.Scale(1./3, r2.Add(a, r2.Add(b, c)))
		}
		cc[t] = center
	}
	far := farFactor * domain.Diagonal()
	cells := make([][]r2.Vec, len(tr.points))
	for s := range tr.points {
		out, closed := tr.fan(s)
		if len(out) == 0 {
			continue
		}
		ring := make([]r2.Vec, 0, len(out)+2)
		if !closed {
			// Ray leaving through the hull edge s->a on the right of the first half-edge.
			first := out[0]
			ring = append(ring, farPoint(cc[first/3], tr.points[s], tr.points[tr.dest(first)], far))
		}
		for _, e := range out {
			ring = append(ring, cc[e/3])
		}
		if !closed {
			// Ray leaving through the hull edge b->s closing the fan.
			last := prev(out[len(out)-1])
			ring = append(ring, farPoint(cc[last/3], tr.points[tr.origin(last)], tr.points[s], far))
		}
		cells[s] = clip(ring, domain)
	}
	return cells
}

// farPoint moves from the circumcenter c a distance dist along the outward
// normal of the hull edge a->b, which has the triangulation on its left.
func farPoint(c, a, b r2.Vec, dist float64) r2.Vec {
	d := r2.Sub(b, a)
	n := r2.Unit(r2.Vec{X: d.Y, Y: -d.X})
	return r2.Add(c, r2.Scale(dist, n))
}

// clip returns the part of the closed ring inside the box using
// Sutherland-Hodgman clipping against each of the box's four sides.
func clip(ring []r2.Vec, box d2.Box) []r2.Vec {
	type side struct {
		inside func(p r2.Vec) bool
		cross  func(p, q r2.Vec) r2.Vec
	}
	atX := func(p, q r2.Vec, x float64) r2.Vec {
		t := (x - p.X) / (q.X - p.X)
		return r2.Vec{X: x, Y: p.Y + t*(q.Y-p.Y)}
	}
	atY := func(p, q r2.Vec, y float64) r2.Vec {
		t := (y - p.Y) / (q.Y - p.Y)
		return r2.Vec{X: p.X + t*(q.X-p.X), Y: y}
	}
	sides := [4]side{
		{func(p r2.Vec) bool { return p.X >= box.Min.X }, func(p, q r2.Vec) r2.Vec { return atX(p, q, box.Min.X) }},
		{func(p r2.Vec) bool { return p.X <= box.Max.X }, func(p, q r2.Vec) r2.Vec { return atX(p, q, box.Max.X) }},
		{func(p r2.Vec) bool { return p.Y >= box.Min.Y }, func(p, q r2.Vec) r2.Vec { return atY(p, q, box.Min.Y) }},
		{func(p r2.Vec) bool { return p.Y <= box.Max.Y }, func(p, q r2.Vec) r2.Vec { return atY(p, q, box.Max.Y) }},
	}
	out := ring
	for _, sd := range sides {
		if len(out) == 0 {
			break
		}
		in := out
		out = make([]r2.Vec, 0, len(in)+4)
		prevPt := in[len(in)-1]
		prevIn := sd.inside(prevPt)
		for _, p := range in {
			pIn := sd.inside(p)
			switch {
			case pIn && prevIn:
				out = append(out, p)
			case pIn && !prevIn:
				out = append(out, sd.cross(prevPt, p), p)
			case !pIn && prevIn:
				out = append(out, sd.cross(prevPt, p))
			}
			prevPt, prevIn = p, pIn
		}
	}
	return dedup(out)
}

// dedup removes consecutive coincident vertices, including the wrap-around.
func dedup(ring []r2.Vec) []r2.Vec {
	const tol = 1e-12
	out := ring[:0]
	for _, p := range ring {
		if len(out) > 0 && d2.EqualWithin(out[len(out)-1], p, tol) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && d2.EqualWithin(out[0], out[len(out)-1], tol) {
		out = out[:len(out)-1]
	}
	if len(out) < 3 {
		return nil
	}
	return out
}
