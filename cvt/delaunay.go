package cvt

import (
	"math"

	"github.com/soypat/ddg/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// triangulation is a Delaunay triangulation stored as counter-clockwise
// triangles with half-edge adjacency. Half-edge e = 3*t+k runs from
// tris[t][k] to tris[t][(k+1)%3].
type triangulation struct {
	points []r2.Vec
	tris   [][3]int
	// twin is the opposite half-edge, or -1 on the hull.
	twin []int
	// vertEdge is an outgoing half-edge per point, or -1 when the point was
	// not inserted.
	vertEdge []int
}

func next(e int) int { return e - e%3 + (e+1)%3 }
func prev(e int) int { return e - e%3 + (e+2)%3 }

func (tr *triangulation) origin(e int) int { return tr.tris[e/3][e%3] }
func (tr *triangulation) dest(e int) int   { return tr.origin(next(e)) }

// delaunay triangulates points inside the rectangle spanned by the first four
// points, which must be the rectangle's corners in counter-clockwise order.
// Points coincident with an already inserted point within tol are skipped.
func delaunay(points []r2.Vec, tol float64) *triangulation {
	b := builder{
		points: points,
		edges:  make(map[[2]int]int, 6*len(points)),
		tol2:   tol * tol,
	}
	b.addTri(0, 1, 2)
	b.addTri(0, 2, 3)
	inserted := make([]bool, len(points))
	for i := 0; i < 4 && i < len(points); i++ {
		inserted[i] = true
	}
	for i := 4; i < len(points); i++ {
		if b.insert(i) {
			inserted[i] = true
		}
	}
	return b.finish(inserted)
}

type builder struct {
	points []r2.Vec
	tris   [][3]int
	alive  []bool
	// edges maps a directed edge to the alive triangle on its left.
	edges map[[2]int]int
	tol2  float64
}

func (b *builder) addTri(i, j, k int) {
	t := len(b.tris)
	b.tris = append(b.tris, [3]int{i, j, k})
	b.alive = append(b.alive, true)
	b.edges[[2]int{i, j}] = t
	b.edges[[2]int{j, k}] = t
	b.edges[[2]int{k, i}] = t
}

func (b *builder) removeTri(t int) {
	b.alive[t] = false
	v := b.tris[t]
	for k := 0; k < 3; k++ {
		key := [2]int{v[k], v[(k+1)%3]}
		if b.edges[key] == t {
			delete(b.edges, key)
		}
	}
}

// locate returns an alive triangle containing p, on its edges included.
func (b *builder) locate(p r2.Vec) int {
	best, bestOrient := -1, math.Inf(-1)
	for t, ok := range b.alive {
		if !ok {
			continue
		}
		v := b.tris[t]
		worst := math.Inf(1)
		for k := 0; k < 3; k++ {
			worst = math.Min(worst, d2.Orient(b.points[v[k]], b.points[v[(k+1)%3]], p))
		}
		if worst >= 0 {
			return t
		}
		if worst > bestOrient {
			best, bestOrient = t, worst
		}
	}
	return best
}

// insert adds point i with the Bowyer-Watson cavity retriangulation. It
// reports false when i duplicates an existing vertex of the triangulation.
func (b *builder) insert(i int) bool {
	p := b.points[i]
	seed := b.locate(p)
	if seed < 0 {
		return false
	}
	for _, v := range b.tris[seed] {
		if r2.Norm2(r2.Sub(b.points[v], p)) <= b.tol2 {
			return false
		}
	}
	bad := map[int]bool{seed: true}
	cavity := []int{seed}
	stack := []int{seed}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		v := b.tris[t]
		for k := 0; k < 3; k++ {
			nb, ok := b.edges[[2]int{v[(k+1)%3], v[k]}]
			if !ok || bad[nb] {
				continue
			}
			w := b.tris[nb]
			if d2.InCircle(b.points[w[0]], b.points[w[1]], b.points[w[2]], p) > 0 {
				bad[nb] = true
				cavity = append(cavity, nb)
				stack = append(stack, nb)
			}
		}
	}
	type edge struct{ a, c int }
	var rim []edge
	for _, t := range cavity {
		v := b.tris[t]
		for k := 0; k < 3; k++ {
			a, c := v[k], v[(k+1)%3]
			if nb, ok := b.edges[[2]int{c, a}]; ok && bad[nb] {
				continue
			}
			rim = append(rim, edge{a, c})
		}
	}
	for _, t := range cavity {
		b.removeTri(t)
	}
	for _, e := range rim {
		pa, pc := b.points[e.a], b.points[e.c]
		// Points on a cavity edge, such as the domain boundary, produce a
		// flat triangle against that edge.
		if d2.Orient(pa, pc, p) <= 1e-12*r2.Norm2(r2.Sub(pc, pa)) {
			continue
		}
		b.addTri(e.a, e.c, i)
	}
	return true
}

func (b *builder) finish(inserted []bool) *triangulation {
	tr := &triangulation{points: b.points, vertEdge: make([]int, len(b.points))}
	for i := range tr.vertEdge {
		tr.vertEdge[i] = -1
	}
	for t, ok := range b.alive {
		if ok {
			tr.tris = append(tr.tris, b.tris[t])
		}
	}
	tr.twin = make([]int, 3*len(tr.tris))
	he := make(map[[2]int]int, len(tr.twin))
	for e := range tr.twin {
		he[[2]int{tr.origin(e), tr.dest(e)}] = e
	}
	for e := range tr.twin {
		a, c := tr.origin(e), tr.dest(e)
		if o, ok := he[[2]int{c, a}]; ok {
			tr.twin[e] = o
		} else {
			tr.twin[e] = -1
		}
		if inserted[a] && tr.vertEdge[a] < 0 {
			tr.vertEdge[a] = e
		}
	}
	return tr
}

// fan returns the outgoing half-edges of point v in counter-clockwise order
// starting from the clockwise-most one. closed is true for interior points.
func (tr *triangulation) fan(v int) (out []int, closed bool) {
	start := tr.vertEdge[v]
	if start < 0 {
		return nil, false
	}
	e := start
	for range tr.twin {
		t := tr.twin[e]
		if t < 0 {
			break
		}
		e = next(t)
		if e == start {
			closed = true
			break
		}
	}
	first := e
	for range tr.twin {
		out = append(out, e)
		t := tr.twin[prev(e)]
		if t < 0 || t == first {
			break
		}
		e = t
	}
	return out, closed
}

// edges returns every undirected edge once.
func (tr *triangulation) edges() [][2]int {
	var out [][2]int
	for e, t := range tr.twin {
		if t < 0 || e < t {
			out = append(out, [2]int{tr.origin(e), tr.dest(e)})
		}
	}
	return out
}
