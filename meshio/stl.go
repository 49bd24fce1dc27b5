// Package meshio reads and writes triangle meshes in STL and OBJ formats.
package meshio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/chewxy/math32"
	"github.com/soypat/ddg"
	"github.com/soypat/ddg/mesh"
	"github.com/soypat/glgl/math/ms3"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	stlHeaderSize   = 84
	stlTriangleSize = 50
)

// WriteSTL writes the faces of m to w in binary STL format.
func WriteSTL(w io.Writer, m *mesh.Mesh) (int, error) {
	tris := m.Triangles()
	model := make([]ms3.Triangle, len(tris))
	for i, t := range tris {
		for k := range t {
			model[i][k] = ms3.Vec{X: float32(t[k].X), Y: float32(t[k].Y), Z: float32(t[k].Z)}
		}
	}
	return writeBinarySTL(w, model)
}

// ReadSTL reads a binary STL and welds its vertices within tol into a mesh.
// Triangles whose stored normal disagrees with their winding are kept and
// reported in the log.
func ReadSTL(r io.Reader, tol float64) (*mesh.Mesh, error) {
	model, err := readBinarySTL(r)
	if err != nil && !errors.Is(err, errNormalMismatch) {
		return nil, err
	}
	tris := make([][3]r3.Vec, len(model))
	for i, t := range model {
		for k := range t {
			tris[i][k] = r3.Vec{X: float64(t[k].X), Y: float64(t[k].Y), Z: float64(t[k].Z)}
		}
	}
	return mesh.FromTriangles(tris, tol)
}

func writeBinarySTL(w io.Writer, model []ms3.Triangle) (int, error) {
	if len(model) == 0 {
		return 0, errors.New("empty triangle slice")
	}
	nt := int64(len(model))
	if nt > math.MaxUint32 {
		return 0, errors.New("amount of triangles in model exceeds STL design limits")
	}
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	if err := binary.Write(bw, binary.LittleEndian, stlHeader{Count: uint32(nt)}); err != nil {
		return cw.n, err
	}
	var d stlTriangle
	for _, triangle := range model {
		d.Normal = arrayFromVec(ms3.Unit(triangle.Normal()))
		d.Vertex1 = arrayFromVec(triangle[0])
		d.Vertex2 = arrayFromVec(triangle[1])
		d.Vertex3 = arrayFromVec(triangle[2])
		if err := binary.Write(bw, binary.LittleEndian, &d); err != nil {
			return cw.n, err
		}
	}
	err := bw.Flush()
	return cw.n, err
}

// stlHeader is the fixed size binary STL header. Blank fields are zero on
// write and skipped on read.
type stlHeader struct {
	_     [80]uint8
	Count uint32
}

// stlTriangle is one little-endian triangle record.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // attribute byte count
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += n
	return n, err
}

func arrayFromVec(v ms3.Vec) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

func bad3F32(f [3]float32) bool {
	for _, v := range f {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return true
		}
	}
	return false
}

var (
	errNormalMismatch = errors.New("stl: stored normal does not match winding")
	errDegenerate     = errors.New("stl: degenerate triangle")
)

func (t stlTriangle) validate() error {
	const normTol = 5e-2
	if bad3F32(t.Normal) {
		return errors.New("inf/NaN STL triangle normal")
	}
	if bad3F32(t.Vertex1) || bad3F32(t.Vertex2) || bad3F32(t.Vertex3) {
		return errors.New("inf/NaN STL triangle vertex")
	}
	tri := t.triangle()
	if tri.IsDegenerate(1e-12) {
		return errDegenerate
	}
	got := ms3.Vec{X: t.Normal[0], Y: t.Normal[1], Z: t.Normal[2]}
	if got == (ms3.Vec{}) {
		// Zero normals are allowed by the format and mean "compute it".
		return nil
	}
	calc := ms3.Unit(tri.Normal())
	if ms3.Norm(ms3.Sub(calc, got)) > normTol {
		return errNormalMismatch
	}
	return nil
}

func (t stlTriangle) triangle() ms3.Triangle {
	return ms3.Triangle{
		{X: t.Vertex1[0], Y: t.Vertex1[1], Z: t.Vertex1[2]},
		{X: t.Vertex2[0], Y: t.Vertex2[1], Z: t.Vertex2[2]},
		{X: t.Vertex3[0], Y: t.Vertex3[1], Z: t.Vertex3[2]},
	}
}

// readBinarySTL reads every triangle of a binary STL. Degenerate triangles
// are dropped. Normal mismatches are counted and reported with
// errNormalMismatch alongside the full triangle list.
func readBinarySTL(r io.Reader) ([]ms3.Triangle, error) {
	br := bufio.NewReader(r)
	var h stlHeader
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, errors.New("encountered EOF while reading STL header")
		}
		return nil, fmt.Errorf("STL header read failed: %w", err)
	}
	count := h.Count
	if count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	var (
		d          stlTriangle
		mismatches int
		degenerate int
	)
	output := make([]ms3.Triangle, 0, min(int(count), 1<<20))
	for i := 0; i < int(count); i++ {
		if err := binary.Read(br, binary.LittleEndian, &d); err != nil {
			return nil, fmt.Errorf("%d/%d STL triangles read: %w", i, count, err)
		}
		switch err := d.validate(); {
		case err == nil:
		case errors.Is(err, errNormalMismatch):
			mismatches++
		case errors.Is(err, errDegenerate):
			degenerate++
			continue
		default:
			return nil, fmt.Errorf("%d/%d STL triangles read: %w", i, count, err)
		}
		output = append(output, d.triangle())
	}
	if degenerate > 0 {
		ddg.Logger().Warn("dropped degenerate STL triangles", "count", degenerate)
	}
	if mismatches > 0 {
		ddg.Logger().Warn("STL normals disagree with winding", "count", mismatches)
		return output, errNormalMismatch
	}
	return output, nil
}
