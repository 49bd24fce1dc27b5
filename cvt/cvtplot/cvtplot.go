// Package cvtplot draws the state of a cvt.Engine: Voronoi cells, Delaunay
// edges and sites, with gonum/plot.
package cvtplot

import (
	"image/color"
	"io"

	"github.com/soypat/ddg/cvt"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Style selects which layers are drawn and their colors.
type Style struct {
	Cells    bool
	Delaunay bool
	Sites    bool

	CellFill  color.Color
	CellLine  color.Color
	EdgeColor color.Color
	SiteColor color.Color
	// SiteRadius is the radius of site glyphs.
	SiteRadius vg.Length
}

// DefaultStyle draws every layer.
func DefaultStyle() Style {
	return Style{
		Cells:      true,
		Delaunay:   true,
		Sites:      true,
		CellFill:   color.RGBA{R: 0xe8, G: 0xf0, B: 0xf8, A: 0xff},
		CellLine:   color.RGBA{R: 0x46, G: 0x89, B: 0x66, A: 0xff},
		EdgeColor:  color.RGBA{R: 0xb6, G: 0x4a, B: 0x2f, A: 0xff},
		SiteColor:  color.Black,
		SiteRadius: vg.Points(2),
	}
}

// Plot returns a plot of the engine's current diagram with equal axis
// scales fixed to the engine's domain.
func Plot(e *cvt.Engine, style Style) (*plot.Plot, error) {
	p := plot.New()
	dom := e.Domain()
	p.X.Min, p.X.Max = dom.Min.X, dom.Max.X
	p.Y.Min, p.Y.Max = dom.Min.Y, dom.Max.Y
	p.HideAxes()
	if style.Cells {
		for _, cell := range e.Cells() {
			if len(cell) < 3 {
				continue
			}
			poly, err := plotter.NewPolygon(xys(cell))
			if err != nil {
				return nil, err
			}
			poly.Color = style.CellFill
			poly.LineStyle.Color = style.CellLine
			poly.LineStyle.Width = vg.Points(0.5)
			p.Add(poly)
		}
	}
	if style.Delaunay {
		for _, ed := range e.DelaunayEdges() {
			l, err := plotter.NewLine(xys(ed[:]))
			if err != nil {
				return nil, err
			}
			l.LineStyle.Color = style.EdgeColor
			l.LineStyle.Width = vg.Points(0.5)
			l.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
			p.Add(l)
		}
	}
	if style.Sites {
		s, err := plotter.NewScatter(xys(e.Points()))
		if err != nil {
			return nil, err
		}
		s.GlyphStyle.Color = style.SiteColor
		s.GlyphStyle.Radius = style.SiteRadius
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
	}
	return p, nil
}

// WriteTo renders the engine's diagram in the given format ("png", "svg",
// "pdf" and the other formats supported by gonum/plot). The plot height
// follows the domain's aspect ratio.
func WriteTo(w io.Writer, e *cvt.Engine, style Style, width vg.Length, format string) error {
	p, err := Plot(e, style)
	if err != nil {
		return err
	}
	size := e.Domain().Size()
	height := width * vg.Length(size.Y/size.X)
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func xys(pts []r2.Vec) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, p := range pts {
		out[i].X, out[i].Y = p.X, p.Y
	}
	return out
}
