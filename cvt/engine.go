// Package cvt builds centroidal Voronoi tessellations of planar point sets
// inside an axis aligned rectangle.
//
// An Engine owns an ordered point set whose first four points are the
// rectangle's corners. Every mutation rebuilds a bounded Delaunay
// triangulation. Voronoi cells are derived as its dual and clipped to the
// rectangle, and Lloyd relaxation moves the free sites to their cell
// centroids.
package cvt

import (
	"errors"
	"fmt"
	"image"
	"math"
	"math/rand"

	"github.com/soypat/ddg"
	"github.com/soypat/ddg/internal/d2"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrOutsideDomain is returned when a site would lie outside the domain.
var ErrOutsideDomain = errors.New("cvt: point outside domain")

// NumCorners is the number of leading points pinned to the domain corners.
const NumCorners = 4

// DefaultDomain is the domain used when no image is loaded.
var DefaultDomain = d2.Box{Min: r2.Vec{X: -1, Y: -1}, Max: r2.Vec{X: 1, Y: 1}}

// Option configures an Engine.
type Option func(*Engine)

// WithDomain sets the initial domain rectangle.
func WithDomain(b d2.Box) Option {
	return func(e *Engine) { e.base = b }
}

// WithRand sets the random source used to generate points.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// Engine maintains a point set, its Delaunay triangulation and clipped
// Voronoi diagram. It is not safe for concurrent use.
type Engine struct {
	// base is the domain when no image is loaded.
	base   d2.Box
	domain d2.Box
	rng    *rand.Rand

	viewW, viewH int
	imgW, imgH   int

	points []r2.Vec
	tri    *triangulation
	cells  [][]r2.Vec
	stale  bool
	tree   *kdtree.Tree
	lookup map[[2]float64]int
}

// NewEngine returns an engine holding only the four corners of its domain.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{base: DefaultDomain}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(1))
	}
	e.domain = e.base
	e.points = append([]r2.Vec(nil), e.domain.Vertices()...)
	e.rebuild()
	return e
}

// Domain returns the current domain rectangle.
func (e *Engine) Domain() d2.Box { return e.domain }

// GenerateRandomPoints replaces the point set with the domain corners
// followed by n points drawn uniformly from the domain.
func (e *Engine) GenerateRandomPoints(n int) error {
	if n < 0 {
		return fmt.Errorf("cvt: negative point count %d", n)
	}
	pts := make([]r2.Vec, 0, NumCorners+n)
	pts = append(pts, e.domain.Vertices()...)
	for i := 0; i < n; i++ {
		pts = append(pts, e.domain.Random(e.rng))
	}
	e.points = pts
	e.rebuild()
	return nil
}

// AddPoint appends a site inside the domain.
func (e *Engine) AddPoint(p r2.Vec) error {
	if !e.domain.Contains(p) {
		return fmt.Errorf("%v not in %v: %w", p, e.domain, ErrOutsideDomain)
	}
	e.points = append(e.points, p)
	e.rebuild()
	return nil
}

func (e *Engine) rebuild() {
	tol := ddg.Epsilon * math.Max(1, e.domain.Diagonal())
	e.tri = delaunay(e.points, tol)
	e.stale = true
	e.tree = nil
	skipped := 0
	for _, he := range e.tri.vertEdge {
		if he < 0 {
			skipped++
		}
	}
	if skipped > 0 {
		ddg.Logger().Warn("coincident sites not triangulated", "count", skipped)
	}
	ddg.Logger().Debug("delaunay rebuilt", "points", len(e.points), "triangles", len(e.tri.tris))
}

// ComputeVoronoi derives the clipped Voronoi diagram from the current
// triangulation. Calling it again without changing the points yields the
// same cells.
func (e *Engine) ComputeVoronoi() {
	e.cells = voronoi(e.tri, e.domain)
	e.stale = false
}

func (e *Engine) ensureVoronoi() {
	if e.stale {
		e.ComputeVoronoi()
	}
}

// LloydRelax moves every non-corner site to the centroid of its Voronoi cell
// and rebuilds the diagram. Sites with empty or zero area cells stay put.
func (e *Engine) LloydRelax() error {
	e.ensureVoronoi()
	eps := ddg.Epsilon * math.Max(1, e.domain.Diagonal())
	next := append([]r2.Vec(nil), e.points...)
	degenerate := 0
	for i := NumCorners; i < len(e.points); i++ {
		cell := e.cells[i]
		if len(cell) < 3 {
			continue
		}
		c, area := d2.Centroid(cell, eps)
		if math.Abs(area) <= eps {
			degenerate++
			continue
		}
		if math.IsNaN(c.X) || math.IsNaN(c.Y) || !e.domain.Contains(c) {
			return fmt.Errorf("site %d centroid %v: %w", i, c, ErrOutsideDomain)
		}
		next[i] = c
	}
	if degenerate > 0 {
		ddg.Logger().Warn("skipped degenerate voronoi cells", "count", degenerate)
	}
	e.points = next
	e.rebuild()
	e.ComputeVoronoi()
	return nil
}

// Energy returns the centroidal Voronoi energy: the sum over sites of the
// second moment of the site's cell about the site. Lloyd relaxation does not
// increase it.
func (e *Engine) Energy() float64 {
	e.ensureVoronoi()
	var total float64
	for i, cell := range e.cells {
		total += secondMoment(cell, e.points[i])
	}
	return total
}

// Residual returns the sum of squared distances between each non-corner
// site and the centroid of its cell. It goes to zero as the tessellation
// becomes centroidal.
func (e *Engine) Residual() float64 {
	e.ensureVoronoi()
	eps := ddg.Epsilon * math.Max(1, e.domain.Diagonal())
	var total float64
	for i := NumCorners; i < len(e.points); i++ {
		if len(e.cells[i]) < 3 {
			continue
		}
		c, area := d2.Centroid(e.cells[i], eps)
		if math.Abs(area) <= eps {
			continue
		}
		total += r2.Norm2(r2.Sub(c, e.points[i]))
	}
	return total
}

// secondMoment integrates |x-s|^2 over the polygon ring by fanning triangles
// from s.
func secondMoment(ring []r2.Vec, s r2.Vec) float64 {
	var sum float64
	for i := range ring {
		a := r2.Sub(ring[i], s)
		b := r2.Sub(ring[(i+1)%len(ring)], s)
		area := d2.Cross(a, b) / 2
		sum += area / 6 * (r2.Norm2(a) + r2.Norm2(b) + r2.Dot(a, b))
	}
	return math.Abs(sum)
}

// Points returns a copy of the point set. The first NumCorners points are
// the domain corners.
func (e *Engine) Points() []r2.Vec {
	return append([]r2.Vec(nil), e.points...)
}

// DelaunayEdges returns every edge of the triangulation once.
func (e *Engine) DelaunayEdges() [][2]r2.Vec {
	idx := e.tri.edges()
	out := make([][2]r2.Vec, len(idx))
	for i, ed := range idx {
		out[i] = [2]r2.Vec{e.points[ed[0]], e.points[ed[1]]}
	}
	return out
}

// Triangles returns the point indices of every Delaunay triangle in
// counter-clockwise order.
func (e *Engine) Triangles() [][3]int {
	return append([][3]int(nil), e.tri.tris...)
}

// Cells returns the clipped Voronoi cell of every site in point order,
// computing the diagram if the point set changed. A coincident site has a
// nil cell.
func (e *Engine) Cells() [][]r2.Vec {
	e.ensureVoronoi()
	out := make([][]r2.Vec, len(e.cells))
	for i, c := range e.cells {
		if c != nil {
			out[i] = append([]r2.Vec(nil), c...)
		}
	}
	return out
}

// NearestSite returns the index of the site closest to p. Coincident sites
// resolve to the lowest index.
func (e *Engine) NearestSite(p r2.Vec) int {
	if e.tree == nil {
		pts := make(kdtree.Points, 0, len(e.points))
		e.lookup = make(map[[2]float64]int, len(e.points))
		for i, q := range e.points {
			key := [2]float64{q.X, q.Y}
			if _, dup := e.lookup[key]; dup {
				continue
			}
			e.lookup[key] = i
			pts = append(pts, kdtree.Point{q.X, q.Y})
		}
		e.tree = kdtree.New(pts, false)
	}
	got, _ := e.tree.Nearest(kdtree.Point{p.X, p.Y})
	q := got.(kdtree.Point)
	return e.lookup[[2]float64{q[0], q[1]}]
}

// SetViewport sets the viewport size in pixels used to place a loaded
// image and recomputes the domain.
func (e *Engine) SetViewport(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("cvt: invalid viewport %dx%d", width, height)
	}
	e.viewW, e.viewH = width, height
	e.setDomain(e.computeDomain())
	return nil
}

// SetImage restricts the domain to the aspect-correct rectangle the image
// occupies when fit inside the viewport.
func (e *Engine) SetImage(img image.Image) error {
	size := img.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return fmt.Errorf("cvt: empty image %v", img.Bounds())
	}
	e.imgW, e.imgH = size.X, size.Y
	e.setDomain(e.computeDomain())
	return nil
}

// ClearImage restores the default domain.
func (e *Engine) ClearImage() {
	e.imgW, e.imgH = 0, 0
	e.setDomain(e.computeDomain())
}

// computeDomain letterboxes the image inside the base rectangle, which
// stands for the whole viewport.
func (e *Engine) computeDomain() d2.Box {
	if e.imgW == 0 || e.imgH == 0 {
		return e.base
	}
	viewAspect := 1.0
	if e.viewW > 0 && e.viewH > 0 {
		viewAspect = float64(e.viewW) / float64(e.viewH)
	}
	imgAspect := float64(e.imgW) / float64(e.imgH)
	size := e.base.Size()
	if imgAspect > viewAspect {
		size.Y *= viewAspect / imgAspect
	} else {
		size.X *= imgAspect / viewAspect
	}
	return d2.NewBox(e.base.Center(), size)
}

// setDomain moves the corners onto the new rectangle and maps every other
// site affinely from the old rectangle into it.
func (e *Engine) setDomain(b d2.Box) {
	old := e.domain
	e.domain = b
	corners := b.Vertices()
	for i := range e.points {
		if i < NumCorners {
			e.points[i] = corners[i]
			continue
		}
		e.points[i] = old.MapTo(b, e.points[i])
	}
	e.rebuild()
	e.ComputeVoronoi()
}
