// Package preview renders headless snapshots of a mesh with the fauxgl
// software rasterizer, colored by curvature or by a checkerboard laid out
// in texture coordinates.
package preview

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/ddg"
	"github.com/soypat/ddg/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// ColorMode selects how the surface is colored.
type ColorMode int

const (
	// Curvature colors each vertex by its normalized curvature.
	Curvature ColorMode = iota
	// Checker draws a checkerboard in UV space to show parameterization distortion.
	Checker
	// Flat uses a single color.
	Flat
)

func (c ColorMode) String() string {
	switch c {
	case Curvature:
		return "curvature"
	case Checker:
		return "checker"
	case Flat:
		return "flat"
	}
	return fmt.Sprintf("ColorMode(%d)", int(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c ColorMode) MarshalText() ([]byte, error) {
	if c < Curvature || c > Flat {
		return nil, fmt.Errorf("invalid color mode %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ColorMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "curvature":
		*c = Curvature
	case "checker", "uv":
		*c = Checker
	case "flat":
		*c = Flat
	default:
		return fmt.Errorf("unknown color mode %q", text)
	}
	return nil
}

// Options configures a snapshot.
type Options struct {
	Width, Height int
	// Supersample renders at this multiple of the output size and then
	// downsamples for antialiasing. Values below 1 mean 1.
	Supersample int
	Mode        ColorMode
	// Eye is the camera position after the mesh is fit into [-1,1]³.
	Eye r3.Vec
	// Checkers is the number of checkerboard squares per UV unit.
	Checkers int
}

// DefaultOptions returns a 3/4 view at 800x600.
func DefaultOptions() Options {
	return Options{
		Width:       800,
		Height:      600,
		Supersample: 2,
		Mode:        Curvature,
		Eye:         r3.Vec{X: 2.5, Y: -3, Z: 2.5},
		Checkers:    10,
	}
}

// Render draws m and returns the image.
func Render(m *mesh.Mesh, opts Options) (image.Image, error) {
	if len(m.Faces) == 0 {
		return nil, errors.New("preview: mesh has no faces")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("preview: invalid size %dx%d", opts.Width, opts.Height)
	}
	scale := max(opts.Supersample, 1)
	const (
		fovy      = 30
		near, far = 1, 20
	)
	var (
		eye    = fauxgl.V(opts.Eye.X, opts.Eye.Y, opts.Eye.Z)
		center = fauxgl.V(0, 0, 0)
		up     = fauxgl.V(0, 0, 1)
		light  = fauxgl.V(-0.75, -1, 0.25).Normalize()
	)
	if eye == center {
		eye = fauxgl.V(2.5, -3, 2.5)
	}
	fm := toFauxgl(m)
	fm.BiUnitCube()

	context := fauxgl.NewContext(opts.Width*scale, opts.Height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(opts.Width) / float64(opts.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, near, far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	switch opts.Mode {
	case Curvature:
		shader.Texture = fauxgl.NewImageTexture(colormapImage(256))
		for _, t := range fm.Triangles {
			for _, v := range []*fauxgl.Vertex{&t.V1, &t.V2, &t.V3} {
				v.Texture = fauxgl.V(v.Texture.Z, 0.5, 0)
			}
		}
	case Checker:
		n := max(opts.Checkers, 1)
		shader.Texture = fauxgl.NewImageTexture(checkerImage(32*n, n))
	case Flat:
		shader.ObjectColor = fauxgl.HexColor("#468966")
	default:
		return nil, fmt.Errorf("preview: invalid color mode %d", int(opts.Mode))
	}
	context.Shader = shader
	context.Cull = fauxgl.CullNone
	context.DrawMesh(fm)
	img := context.Image()
	if scale > 1 {
		img = resize.Resize(uint(opts.Width), uint(opts.Height), img, resize.Bilinear)
	}
	ddg.Logger().Debug("preview rendered", "mode", opts.Mode, "faces", len(m.Faces), "width", opts.Width, "height", opts.Height)
	return img, nil
}

// SavePNG writes img as a PNG file.
func SavePNG(path string, img image.Image) error {
	return fauxgl.SavePNG(path, img)
}

// toFauxgl copies m into a fauxgl mesh. Texture holds (u, v, curvature).
func toFauxgl(m *mesh.Mesh) *fauxgl.Mesh {
	vert := func(i int) fauxgl.Vertex {
		v := m.Vertices[i]
		return fauxgl.Vertex{
			Position: fauxgl.V(v.Pos.X, v.Pos.Y, v.Pos.Z),
			Normal:   fauxgl.V(v.Normal.X, v.Normal.Y, v.Normal.Z),
			Texture:  fauxgl.V(v.UV.X, v.UV.Y, v.Curvature),
		}
	}
	tris := make([]*fauxgl.Triangle, len(m.Faces))
	for f := range m.Faces {
		fv := m.FaceVertices(f)
		tris[f] = fauxgl.NewTriangle(vert(fv[0]), vert(fv[1]), vert(fv[2]))
	}
	return fauxgl.NewTriangleMesh(tris)
}
