package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/ddg/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// FromTriangles builds a mesh from a triangle soup such as the contents of
// an STL file. Triangle corners closer than vertexTol are merged into a
// single vertex. If vertexTol is 0 it is inferred as 1/256th of the shortest
// triangle side. Triangles that collapse after welding are dropped.
func FromTriangles(triangles [][3]r3.Vec, vertexTol float64) (*Mesh, error) {
	if len(triangles) == 0 {
		return nil, errors.New("empty triangle slice")
	}
	bb := d3.EmptyBox()
	minDist2 := math.MaxFloat64
	maxDist2 := 0.0
	for i := range triangles {
		for j, vert := range triangles[i] {
			bb = bb.Include(vert)
			side2 := r3.Norm2(r3.Sub(triangles[i][(j+1)%3], vert))
			minDist2 = math.Min(minDist2, side2)
			maxDist2 = math.Max(maxDist2, side2)
		}
	}
	suggested := math.Sqrt(minDist2) / 256
	if vertexTol > math.Sqrt(maxDist2)/2 {
		return nil, fmt.Errorf("vertex tolerance is too large to generate appropiate mesh, suggested tolerance: %g", suggested)
	}
	if vertexTol == 0 {
		vertexTol = suggested
	}
	if vertexTol <= 0 {
		return nil, errors.New("triangles have zero length sides, cannot infer vertex tolerance")
	}
	if div := d3.Max(bb.Size()) / vertexTol; div > math.MaxInt64/2 {
		return nil, errors.New("tolerance too small. overflowed int64")
	}
	// Vertex index cache keyed by position quantized to the tolerance grid.
	cache := make(map[[3]int64]int)
	ri := 1 / vertexTol
	var positions []r3.Vec
	faces := make([][3]int, 0, len(triangles))
	for _, tri := range triangles {
		var face [3]int
		for j, vert := range tri {
			v := r3.Scale(ri, r3.Sub(vert, bb.Min))
			key := [3]int64{int64(math.Round(v.X)), int64(math.Round(v.Y)), int64(math.Round(v.Z))}
			idx, ok := cache[key]
			if !ok {
				idx = len(positions)
				cache[key] = idx
				positions = append(positions, vert)
			}
			face[j] = idx
		}
		if face[0] == face[1] || face[1] == face[2] || face[2] == face[0] {
			continue
		}
		faces = append(faces, face)
	}
	// Drop vertices only referenced by collapsed triangles.
	remap := make([]int, len(positions))
	for i := range remap {
		remap[i] = None
	}
	used := positions[:0:0]
	for fi := range faces {
		for j, v := range faces[fi] {
			if remap[v] == None {
				remap[v] = len(used)
				used = append(used, positions[v])
			}
			faces[fi][j] = remap[v]
		}
	}
	return New(used, faces)
}

// Triangles returns the mesh faces as a triangle soup.
func (m *Mesh) Triangles() [][3]r3.Vec {
	tris := make([][3]r3.Vec, len(m.Faces))
	for f := range m.Faces {
		vi := m.FaceVertices(f)
		tris[f] = [3]r3.Vec{m.Vertices[vi[0]].Pos, m.Vertices[vi[1]].Pos, m.Vertices[vi[2]].Pos}
	}
	return tris
}
