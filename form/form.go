// Package form generates primitive triangle meshes: fans, grids, disks,
// annuli and spheres. Faces wind counter-clockwise seen from outside.
package form

import (
	"errors"
	"math"

	"github.com/soypat/ddg/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Fan returns a planar fan in the XY plane: one center vertex at the origin
// (index 0) surrounded by n rim vertices at the given radius.
func Fan(n int, radius float64) (*mesh.Mesh, error) {
	if n < 3 {
		return nil, errors.New("fan needs at least 3 rim vertices")
	}
	if radius <= 0 {
		return nil, errors.New("fan radius must be positive")
	}
	pos := make([]r3.Vec, n+1)
	faces := make([][3]int, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pos[i+1] = r3.Vec{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
		faces[i] = [3]int{0, i + 1, (i+1)%n + 1}
	}
	return mesh.New(pos, faces)
}

// Grid returns a planar nx by ny quad grid split into triangles spanning
// [0,sizeX]x[0,sizeY] on the XY plane. Height, if not nil, sets Z per vertex.
func Grid(nx, ny int, sizeX, sizeY float64, height func(x, y float64) float64) (*mesh.Mesh, error) {
	if nx < 1 || ny < 1 {
		return nil, errors.New("grid needs at least one cell per side")
	}
	idx := func(i, j int) int { return j*(nx+1) + i }
	pos := make([]r3.Vec, (nx+1)*(ny+1))
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			x := sizeX * float64(i) / float64(nx)
			y := sizeY * float64(j) / float64(ny)
			var z float64
			if height != nil {
				z = height(x, y)
			}
			pos[idx(i, j)] = r3.Vec{X: x, Y: y, Z: z}
		}
	}
	faces := make([][3]int, 0, 2*nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a, b, c, d := idx(i, j), idx(i+1, j), idx(i+1, j+1), idx(i, j+1)
			// Alternate the diagonal to avoid a directional bias.
			if (i+j)%2 == 0 {
				faces = append(faces, [3]int{a, b, c}, [3]int{a, c, d})
			} else {
				faces = append(faces, [3]int{a, b, d}, [3]int{b, c, d})
			}
		}
	}
	return mesh.New(pos, faces)
}

// Disk returns a triangulated unit-radius disk with the given number of
// concentric rings and vertices on the outermost ring. Inner rings carry
// proportionally fewer vertices. Height, if not nil, sets Z per vertex.
func Disk(rings, rim int, height func(x, y float64) float64) (*mesh.Mesh, error) {
	if rings < 1 || rim < 6 {
		return nil, errors.New("disk needs at least 1 ring and 6 rim vertices")
	}
	return annulus(0, 1, rings, rim, height)
}

// Annulus returns a flat ring between inner and outer radius. It has two
// boundary loops.
func Annulus(inner, outer float64, rings, rim int) (*mesh.Mesh, error) {
	if inner <= 0 || outer <= inner {
		return nil, errors.New("annulus needs 0 < inner < outer")
	}
	if rings < 1 || rim < 3 {
		return nil, errors.New("annulus needs at least 1 ring and 3 rim vertices")
	}
	return annulus(inner, outer, rings, rim, nil)
}

// annulus stitches rings of vertices between radius r0 and r1. With r0 == 0
// the innermost ring collapses to a single center vertex.
func annulus(r0, r1 float64, rings, rim int, height func(x, y float64) float64) (*mesh.Mesh, error) {
	var pos []r3.Vec
	var ringStart, ringCount []int
	first := 0
	if r0 == 0 {
		pos = append(pos, r3.Vec{})
		ringStart = append(ringStart, 0)
		ringCount = append(ringCount, 1)
		first = 1
	}
	for k := first; k <= rings; k++ {
		t := float64(k) / float64(rings)
		r := r0 + (r1-r0)*t
		n := rim
		if r0 == 0 {
			n = int(math.Max(6, math.Round(float64(rim)*t)))
		}
		ringStart = append(ringStart, len(pos))
		ringCount = append(ringCount, n)
		for i := 0; i < n; i++ {
			theta := 2 * math.Pi * float64(i) / float64(n)
			pos = append(pos, r3.Vec{X: r * math.Cos(theta), Y: r * math.Sin(theta)})
		}
	}
	var faces [][3]int
	for k := 0; k+1 < len(ringStart); k++ {
		faces = stitchRings(faces, pos, ringStart[k], ringCount[k], ringStart[k+1], ringCount[k+1])
	}
	if height != nil {
		for i := range pos {
			pos[i].Z = height(pos[i].X, pos[i].Y)
		}
	}
	return mesh.New(pos, faces)
}

// stitchRings triangulates the strip between an inner ring and an outer ring
// by advancing along whichever ring is angularly behind.
func stitchRings(faces [][3]int, pos []r3.Vec, s0, n0, s1, n1 int) [][3]int {
	if n0 == 1 {
		for i := 0; i < n1; i++ {
			faces = append(faces, [3]int{s0, s1 + i, s1 + (i+1)%n1})
		}
		return faces
	}
	i, j := 0, 0
	for i < n0 || j < n1 {
		a := s0 + i%n0
		b := s1 + j%n1
		// Angular position of the next vertex on each ring, in units of a full turn.
		nextInner := float64(i+1) / float64(n0)
		nextOuter := float64(j+1) / float64(n1)
		if j < n1 && (i >= n0 || nextOuter <= nextInner) {
			faces = append(faces, [3]int{a, b, s1 + (j+1)%n1})
			j++
		} else {
			faces = append(faces, [3]int{a, b, s0 + (i+1)%n0})
			i++
		}
	}
	return faces
}

// Icosphere returns a closed sphere of the given radius built by
// subdividing an icosahedron.
func Icosphere(subdivisions int, radius float64) (*mesh.Mesh, error) {
	if subdivisions < 0 || radius <= 0 {
		return nil, errors.New("icosphere needs non-negative subdivisions and positive radius")
	}
	phi := (1 + math.Sqrt(5)) / 2
	pos := []r3.Vec{
		{X: -1, Y: phi}, {X: 1, Y: phi}, {X: -1, Y: -phi}, {X: 1, Y: -phi},
		{Y: -1, Z: phi}, {Y: 1, Z: phi}, {Y: -1, Z: -phi}, {Y: 1, Z: -phi},
		{X: phi, Z: -1}, {X: phi, Z: 1}, {X: -phi, Z: -1}, {X: -phi, Z: 1},
	}
	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	for s := 0; s < subdivisions; s++ {
		mid := make(map[[2]int]int)
		midpoint := func(a, b int) int {
			key := [2]int{a, b}
			if a > b {
				key = [2]int{b, a}
			}
			if i, ok := mid[key]; ok {
				return i
			}
			i := len(pos)
			pos = append(pos, r3.Scale(0.5, r3.Add(pos[a], pos[b])))
			mid[key] = i
			return i
		}
		next := make([][3]int, 0, 4*len(faces))
		for _, f := range faces {
			ab := midpoint(f[0], f[1])
			bc := midpoint(f[1], f[2])
			ca := midpoint(f[2], f[0])
			next = append(next,
				[3]int{f[0], ab, ca},
				[3]int{f[1], bc, ab},
				[3]int{f[2], ca, bc},
				[3]int{ab, bc, ca},
			)
		}
		faces = next
	}
	for i := range pos {
		pos[i] = r3.Scale(radius, r3.Unit(pos[i]))
	}
	return mesh.New(pos, faces)
}
