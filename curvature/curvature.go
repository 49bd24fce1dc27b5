// Package curvature estimates discrete per-vertex curvature on a half-edge
// mesh using the cotangent formulas of Meyer et al.
//
// Boundary vertices always get curvature 0. Interior vertices with a
// vanishing mixed area also get 0 instead of dividing by a near-zero area.
package curvature

import (
	"math"

	"github.com/soypat/ddg"
	"github.com/soypat/ddg/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Compute returns the raw curvature of every vertex. Boundary vertices are 0.
func Compute(m *mesh.Mesh, kind ddg.CurvatureKind) []float64 {
	raw := make([]float64, len(m.Vertices))
	for v := range m.Vertices {
		if m.Vertices[v].Boundary {
			continue
		}
		raw[v] = vertexCurvature(m, v, kind)
	}
	return raw
}

// Estimate computes curvature of the given kind, rescales interior values
// linearly to [0,1] and stores them in each vertex's Curvature field.
// Boundary vertices are excluded from the min-max scan and stored as 0.
func Estimate(m *mesh.Mesh, kind ddg.CurvatureKind) {
	if len(m.Vertices) == 0 {
		return
	}
	raw := Compute(m, kind)
	lo, hi := math.Inf(1), math.Inf(-1)
	for v := range raw {
		if m.Vertices[v].Boundary {
			continue
		}
		lo = math.Min(lo, raw[v])
		hi = math.Max(hi, raw[v])
	}
	span := hi - lo
	for v := range m.Vertices {
		switch {
		case m.Vertices[v].Boundary:
			m.Vertices[v].Curvature = 0
		case span <= ddg.Epsilon || math.IsInf(span, 0):
			m.Vertices[v].Curvature = 0
		default:
			m.Vertices[v].Curvature = (raw[v] - lo) / span
		}
	}
	ddg.Logger().Debug("curvature estimated", "kind", kind, "min", lo, "max", hi)
}

func vertexCurvature(m *mesh.Mesh, v int, kind ddg.CurvatureKind) float64 {
	area := m.MixedArea(v)
	if area <= ddg.Epsilon {
		return 0
	}
	switch kind {
	case ddg.Gaussian:
		return gaussian(m, v, area)
	case ddg.Mean:
		return mean(m, v, area)
	case ddg.Max:
		return gaussian(m, v, area) + mean(m, v, area)
	}
	panic("invalid curvature kind " + kind.String())
}

// gaussian returns the angle defect of v over its mixed area.
func gaussian(m *mesh.Mesh, v int, area float64) float64 {
	return (ddg.Tau - m.AngleSum(v)) / area
}

// mean returns half the norm of the mean curvature normal.
func mean(m *mesh.Mesh, v int, area float64) float64 {
	return r3.Norm(MeanCurvatureNormal(m, v, area)) / 2
}

// MeanCurvatureNormal returns the discrete mean curvature normal
//
//	H = 1/(2A) * sum_j (cot(alpha_ij) + cot(beta_ij)) * (p_i - p_j)
//
// over the one-ring of v, where A is v's mixed area.
func MeanCurvatureNormal(m *mesh.Mesh, v int, area float64) r3.Vec {
	if area <= ddg.Epsilon {
		return r3.Vec{}
	}
	p := m.Vertices[v].Pos
	var sum r3.Vec
	for _, h := range m.Outgoing(v) {
		w := m.CotWeight(h)
		sum = r3.Add(sum, r3.Scale(w, r3.Sub(p, m.Vertices[m.Dest(h)].Pos)))
	}
	return r3.Scale(1/(2*area), sum)
}
