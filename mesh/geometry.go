package mesh

import (
	"github.com/soypat/ddg/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// ComputeNormals recomputes face normals and angle-weighted vertex normals.
// The weight of a face at a vertex is the face's opening angle at that vertex.
func (m *Mesh) ComputeNormals() {
	for v := range m.Vertices {
		m.Vertices[v].Normal = r3.Vec{}
	}
	for f := range m.Faces {
		tri := m.FaceVertices(f)
		a, b, c := m.Vertices[tri[0]].Pos, m.Vertices[tri[1]].Pos, m.Vertices[tri[2]].Pos
		n := d3.TriangleNormal(a, b, c)
		m.Faces[f].Normal = n
		for j, vi := range tri {
			p := m.Vertices[vi].Pos
			s1 := r3.Sub(m.Vertices[tri[(j+1)%3]].Pos, p)
			s2 := r3.Sub(m.Vertices[tri[(j+2)%3]].Pos, p)
			alpha := d3.Angle(s1, s2)
			m.Vertices[vi].Normal = r3.Add(m.Vertices[vi].Normal, r3.Scale(alpha, n))
		}
	}
	for v := range m.Vertices {
		if l := r3.Norm(m.Vertices[v].Normal); l > 0 {
			m.Vertices[v].Normal = r3.Scale(1/l, m.Vertices[v].Normal)
		}
	}
}

// FaceArea returns the area of face f.
func (m *Mesh) FaceArea(f int) float64 {
	tri := m.FaceVertices(f)
	return d3.TriangleArea(m.Vertices[tri[0]].Pos, m.Vertices[tri[1]].Pos, m.Vertices[tri[2]].Pos)
}

// Area returns the total surface area.
func (m *Mesh) Area() float64 {
	var a float64
	for f := range m.Faces {
		a += m.FaceArea(f)
	}
	return a
}

// OppositeCot returns the cotangent of the angle opposite half-edge h in
// its own face. Degenerate corners yield 0.
func (m *Mesh) OppositeCot(h int) float64 {
	he := m.HalfEdges[h]
	k := m.HalfEdges[he.Prev].Origin
	pk := m.Vertices[k].Pos
	pi := m.Vertices[he.Origin].Pos
	pj := m.Vertices[m.Dest(h)].Pos
	return d3.Cot(r3.Sub(pi, pk), r3.Sub(pj, pk))
}

// CotWeight returns cot(alpha) + cot(beta) for the edge of half-edge h,
// where alpha and beta are the angles opposite the edge in its one or two
// incident faces.
func (m *Mesh) CotWeight(h int) float64 {
	w := m.OppositeCot(h)
	if opp := m.HalfEdges[h].Opposite; opp != None {
		w += m.OppositeCot(opp)
	}
	return w
}

// CornerAngle returns the interior angle of h's face at h's origin.
func (m *Mesh) CornerAngle(h int) float64 {
	he := m.HalfEdges[h]
	p := m.Vertices[he.Origin].Pos
	a := m.Vertices[m.Dest(h)].Pos
	b := m.Vertices[m.HalfEdges[he.Prev].Origin].Pos
	return d3.Angle(r3.Sub(a, p), r3.Sub(b, p))
}

// AngleSum returns the sum of face angles incident to v.
func (m *Mesh) AngleSum(v int) float64 {
	var sum float64
	for _, h := range m.Outgoing(v) {
		sum += m.CornerAngle(h)
	}
	return sum
}

// MixedArea returns the mixed Voronoi area of v: the Voronoi region area for
// non-obtuse incident triangles, half the triangle area when the obtuse
// angle is at v, and a quarter of it otherwise.
func (m *Mesh) MixedArea(v int) float64 {
	var area float64
	p := m.Vertices[v].Pos
	for _, h := range m.Outgoing(v) {
		he := m.HalfEdges[h]
		ai := m.Dest(h)
		bi := m.HalfEdges[he.Prev].Origin
		a, b := m.Vertices[ai].Pos, m.Vertices[bi].Pos
		pa, pb := r3.Sub(a, p), r3.Sub(b, p)
		ap, ab := r3.Sub(p, a), r3.Sub(b, a)
		bp, ba := r3.Sub(p, b), r3.Sub(a, b)
		triArea := 0.5 * r3.Norm(r3.Cross(pa, pb))
		if triArea <= 0 {
			continue
		}
		obtuseP := r3.Dot(pa, pb) < 0
		obtuseA := r3.Dot(ap, ab) < 0
		obtuseB := r3.Dot(bp, ba) < 0
		switch {
		case obtuseP:
			area += triArea / 2
		case obtuseA || obtuseB:
			area += triArea / 4
		default:
			// Voronoi region: |pa|^2 cot(angle at b) + |pb|^2 cot(angle at a), over 8.
			cotA := d3.Cot(ap, ab)
			cotB := d3.Cot(bp, ba)
			area += (r3.Norm2(pa)*cotB + r3.Norm2(pb)*cotA) / 8
		}
	}
	return area
}

// Bounds returns the axis aligned bounding box of all vertex positions.
func (m *Mesh) Bounds() r3.Box {
	bb := d3.EmptyBox()
	for i := range m.Vertices {
		bb = bb.Include(m.Vertices[i].Pos)
	}
	return r3.Box(bb)
}

// MeanEdgeLength returns the average length over all undirected edges.
func (m *Mesh) MeanEdgeLength() float64 {
	var sum float64
	n := 0
	for h := range m.HalfEdges {
		he := m.HalfEdges[h]
		if he.Opposite != None && he.Opposite < h {
			continue
		}
		sum += r3.Norm(r3.Sub(m.Vertices[m.Dest(h)].Pos, m.Vertices[he.Origin].Pos))
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
