package meshio

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/ddg/form"
	"github.com/soypat/ddg/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSTLRoundTrip(t *testing.T) {
	m, err := form.Icosphere(2, 1)
	require.NoError(t, err)
	var buf bytes.Buffer
	n, err := WriteSTL(&buf, m)
	require.NoError(t, err)
	assert.Equal(t, stlHeaderSize+stlTriangleSize*len(m.Faces), n)
	assert.Equal(t, n, buf.Len())

	got, err := ReadSTL(&buf, 1e-5)
	require.NoError(t, err)
	require.Len(t, got.Vertices, len(m.Vertices))
	require.Len(t, got.Faces, len(m.Faces))
	assert.True(t, got.IsClosed())
	assert.Equal(t, 2, got.EulerCharacteristic())
	assert.InDelta(t, m.Area(), got.Area(), 1e-5)
}

func TestSTLOpenMesh(t *testing.T) {
	m, err := form.Disk(3, 12, nil)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = WriteSTL(&buf, m)
	require.NoError(t, err)
	got, err := ReadSTL(&buf, 1e-6)
	require.NoError(t, err)
	assert.Equal(t, 1, got.EulerCharacteristic())
	assert.Len(t, got.BoundaryHalfEdges(), 12)
}

func TestSTLErrors(t *testing.T) {
	_, err := WriteSTL(&bytes.Buffer{}, &mesh.Mesh{})
	assert.Error(t, err)

	_, err = ReadSTL(bytes.NewReader(make([]byte, 10)), 0)
	assert.Error(t, err)

	var hdr [stlHeaderSize]byte
	_, err = ReadSTL(bytes.NewReader(hdr[:]), 0)
	assert.Error(t, err, "zero triangles")

	binary.LittleEndian.PutUint32(hdr[80:], 2)
	truncated := append(hdr[:], make([]byte, stlTriangleSize)...)
	_, err = ReadSTL(bytes.NewReader(truncated), 0)
	assert.Error(t, err)
}

func TestSTLRecordLayout(t *testing.T) {
	assert.Equal(t, stlHeaderSize, binary.Size(stlHeader{}))
	assert.Equal(t, stlTriangleSize, binary.Size(stlTriangle{}))
}

func TestSTLBadVertex(t *testing.T) {
	var d stlTriangle
	d.Vertex1 = [3]float32{0, 0, 0}
	d.Vertex2 = [3]float32{1, 0, 0}
	d.Vertex3 = [3]float32{0, float32(math.NaN()), 0}
	assert.Error(t, d.validate())

	d.Vertex3 = [3]float32{0, 1, 0}
	d.Normal = [3]float32{0, 0, 1}
	assert.NoError(t, d.validate())
	// Rounded normals written by other tools are accepted.
	d.Normal = [3]float32{0.01, -0.01, 0.9999}
	assert.NoError(t, d.validate())
	d.Normal = [3]float32{0, 0, -1}
	assert.ErrorIs(t, d.validate(), errNormalMismatch)
	d.Normal = [3]float32{1, 0, 0}
	assert.ErrorIs(t, d.validate(), errNormalMismatch)
}

func TestOBJRoundTrip(t *testing.T) {
	m, err := form.Grid(3, 2, 3, 2, nil)
	require.NoError(t, err)
	for v := range m.Vertices {
		m.Vertices[v].UV.X = m.Vertices[v].Pos.X / 3
		m.Vertices[v].UV.Y = m.Vertices[v].Pos.Y / 2
	}
	var buf bytes.Buffer
	require.NoError(t, WriteOBJ(&buf, m))
	assert.Contains(t, buf.String(), "vt 1 1\n")

	path := filepath.Join(t.TempDir(), "grid.obj")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	got, err := LoadOBJ(path, 1e-9)
	require.NoError(t, err)
	assert.Len(t, got.Vertices, len(m.Vertices))
	assert.Len(t, got.Faces, len(m.Faces))
	assert.InDelta(t, 6, got.Area(), 1e-9)
}
