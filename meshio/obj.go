package meshio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/fogleman/fauxgl"
	"github.com/soypat/ddg/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// LoadOBJ loads the triangles of a Wavefront OBJ file, fan triangulating
// polygons, and welds vertices within tol into a mesh.
func LoadOBJ(path string, tol float64) (*mesh.Mesh, error) {
	fm, err := fauxgl.LoadOBJ(path)
	if err != nil {
		return nil, err
	}
	return fromFauxgl(fm, tol)
}

func fromFauxgl(fm *fauxgl.Mesh, tol float64) (*mesh.Mesh, error) {
	tris := make([][3]r3.Vec, len(fm.Triangles))
	for i, t := range fm.Triangles {
		tris[i] = [3]r3.Vec{vecFromFauxgl(t.V1.Position), vecFromFauxgl(t.V2.Position), vecFromFauxgl(t.V3.Position)}
	}
	return mesh.FromTriangles(tris, tol)
}

func vecFromFauxgl(v fauxgl.Vector) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// WriteOBJ writes m as a Wavefront OBJ with one texture coordinate and one
// normal per vertex, so a parameterization survives the round trip.
func WriteOBJ(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d vertices, %d faces\n", len(m.Vertices), len(m.Faces))
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.Pos.X, v.Pos.Y, v.Pos.Z)
	}
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "vt %g %g\n", v.UV.X, v.UV.Y)
	}
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "vn %g %g %g\n", v.Normal.X, v.Normal.Y, v.Normal.Z)
	}
	for f := range m.Faces {
		fv := m.FaceVertices(f)
		a, b, c := fv[0]+1, fv[1]+1, fv[2]+1
		fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
	}
	return bw.Flush()
}
