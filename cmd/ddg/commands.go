package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/soypat/ddg"
	"github.com/soypat/ddg/curvature"
	"github.com/soypat/ddg/cvt"
	"github.com/soypat/ddg/cvt/cvtplot"
	"github.com/soypat/ddg/form"
	"github.com/soypat/ddg/mesh"
	"github.com/soypat/ddg/meshio"
	"github.com/soypat/ddg/param"
	"github.com/soypat/ddg/preview"
	"github.com/soypat/ddg/smooth"
	"gonum.org/v1/plot/vg"
)

// meshFlags are shared by the commands that operate on a triangle mesh.
type meshFlags struct {
	demo   string
	output string
	png    string
	mode   preview.ColorMode
}

func (mf *meshFlags) register(fs *flag.FlagSet, mode preview.ColorMode) {
	fs.StringVar(&mf.demo, "demo", "", "use a built-in mesh instead of a file: disk, bump, grid, sphere or bolt")
	fs.StringVar(&mf.output, "o", "", "write the result to an .obj or .stl file")
	fs.StringVar(&mf.png, "png", "", "render a preview PNG")
	fs.TextVar(&mf.mode, "color", mode, "preview coloring: curvature, checker or flat")
}

// load reads the mesh named by the first positional argument or builds the
// demo mesh.
func (mf *meshFlags) load(fs *flag.FlagSet, cfg config) (*mesh.Mesh, error) {
	switch {
	case mf.demo != "" && fs.NArg() > 0:
		return nil, errors.New("both -demo and an input file given")
	case mf.demo != "":
		return demoMesh(mf.demo, cfg.Mesh.WeldTolerance)
	case fs.NArg() != 1:
		return nil, fmt.Errorf("%s: expected one input mesh", fs.Name())
	}
	return loadMesh(fs.Arg(0), cfg.Mesh.WeldTolerance)
}

// save writes the outputs requested on the command line.
func (mf *meshFlags) save(m *mesh.Mesh, cfg config) error {
	if mf.output != "" {
		if err := saveMesh(mf.output, m); err != nil {
			return err
		}
	}
	if mf.png != "" {
		opts := cfg.previewOptions()
		opts.Mode = mf.mode
		img, err := preview.Render(m, opts)
		if err != nil {
			return err
		}
		if err := preview.SavePNG(mf.png, img); err != nil {
			return err
		}
	}
	return nil
}

func demoMesh(name string, tol float64) (*mesh.Mesh, error) {
	switch name {
	case "bolt":
		return boltMesh(tol)
	case "disk":
		return form.Disk(8, 48, nil)
	case "bump":
		return form.Disk(8, 48, func(x, y float64) float64 {
			return 0.5 * math.Exp(-4*(x*x+y*y))
		})
	case "sphere":
		return form.Icosphere(3, 1)
	case "grid":
		return form.Grid(16, 16, 2, 2, func(x, y float64) float64 {
			return 0.2 * math.Sin(3*x) * math.Cos(3*y)
		})
	}
	return nil, fmt.Errorf("unknown demo mesh %q", name)
}

func loadMesh(path string, tol float64) (*mesh.Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return meshio.LoadOBJ(path, tol)
	case ".stl":
		fp, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer fp.Close()
		return meshio.ReadSTL(fp, tol)
	}
	return nil, fmt.Errorf("unsupported mesh format %q", path)
}

func saveMesh(path string, m *mesh.Mesh) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".obj" && ext != ".stl" {
		return fmt.Errorf("unsupported mesh format %q", path)
	}
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fp.Close(); err == nil {
			err = cerr
		}
	}()
	if ext == ".stl" {
		_, err = meshio.WriteSTL(fp, m)
		return err
	}
	return meshio.WriteOBJ(fp, m)
}

func runCurvature(cfg config, args []string) error {
	fs := flag.NewFlagSet("curvature", flag.ContinueOnError)
	var mf meshFlags
	mf.register(fs, cfg.Preview.Mode)
	kind := cfg.Curvature.Kind
	fs.TextVar(&kind, "kind", cfg.Curvature.Kind, "curvature: gaussian, mean or max")
	if err := fs.Parse(args); err != nil {
		return err
	}
	m, err := mf.load(fs, cfg)
	if err != nil {
		return err
	}
	raw := curvature.Compute(m, kind)
	curvature.Estimate(m, kind)
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, k := range raw {
		lo = math.Min(lo, k)
		hi = math.Max(hi, k)
	}
	ddg.Logger().Info("curvature", "kind", kind, "vertices", len(m.Vertices), "min", lo, "max", hi)
	return mf.save(m, cfg)
}

func runSmooth(cfg config, args []string) error {
	fs := flag.NewFlagSet("smooth", flag.ContinueOnError)
	var mf meshFlags
	mf.register(fs, cfg.Preview.Mode)
	opts := smooth.DefaultOptions()
	opts.Method = cfg.Smooth.Method
	opts.Curvature = cfg.Curvature.Kind
	if cfg.Smooth.Tolerance > 0 {
		opts.Solver.Tolerance = cfg.Smooth.Tolerance
	}
	fs.TextVar(&opts.Method, "method", cfg.Smooth.Method, "uniform, cotangent, cotangent-area or sparse")
	fs.IntVar(&opts.Iterations, "iter", cfg.Smooth.Iterations, "Jacobi iterations")
	fs.Float64Var(&opts.Lambda, "lambda", cfg.Smooth.Lambda, "step size in (0,1]")
	fs.TextVar(&opts.Curvature, "kind", cfg.Curvature.Kind, "curvature recomputed after smoothing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	m, err := mf.load(fs, cfg)
	if err != nil {
		return err
	}
	before := m.Area()
	if err := smooth.Relax(m, opts); err != nil {
		return err
	}
	ddg.Logger().Info("smoothed", "method", opts.Method, "area_before", before, "area_after", m.Area())
	return mf.save(m, cfg)
}

func runParam(cfg config, args []string) error {
	fs := flag.NewFlagSet("param", flag.ContinueOnError)
	var mf meshFlags
	mf.register(fs, preview.Checker)
	shape := cfg.Param.Shape
	fs.TextVar(&shape, "shape", cfg.Param.Shape, "boundary shape: circle or square")
	if err := fs.Parse(args); err != nil {
		return err
	}
	m, err := mf.load(fs, cfg)
	if err != nil {
		return err
	}
	if err := param.Parameterize(m, shape); err != nil {
		return err
	}
	ddg.Logger().Info("parameterized", "shape", shape, "vertices", len(m.Vertices))
	return mf.save(m, cfg)
}

func runCVT(cfg config, args []string) error {
	fs := flag.NewFlagSet("cvt", flag.ContinueOnError)
	var (
		n       = fs.Int("n", cfg.CVT.Points, "random sites besides the four corners")
		iters   = fs.Int("iter", cfg.CVT.Iterations, "Lloyd iterations")
		seed    = fs.Int64("seed", cfg.CVT.Seed, "random seed")
		output  = fs.String("o", "cvt.png", "output plot, format from extension (png, svg, pdf)")
		imgPath = fs.String("image", "", "fit the domain to this image's aspect ratio")
		width   = fs.Float64("width", cfg.CVT.Width, "plot width in centimeters")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(*output)), ".")
	if format == "" {
		return fmt.Errorf("cvt: output %q has no extension", *output)
	}
	e := cvt.NewEngine(cvt.WithRand(rand.New(rand.NewSource(*seed))))
	if *imgPath != "" {
		img, err := decodeImage(*imgPath)
		if err != nil {
			return err
		}
		if err := e.SetViewport(cfg.Preview.Width, cfg.Preview.Height); err != nil {
			return err
		}
		if err := e.SetImage(img); err != nil {
			return err
		}
	}
	if err := e.GenerateRandomPoints(*n); err != nil {
		return err
	}
	for i := 0; i < *iters; i++ {
		if err := e.LloydRelax(); err != nil {
			return fmt.Errorf("lloyd iteration %d: %w", i, err)
		}
	}
	ddg.Logger().Info("cvt", "sites", len(e.Points()), "iterations", *iters, "energy", e.Energy())
	fp, err := os.Create(*output)
	if err != nil {
		return err
	}
	err = cvtplot.WriteTo(fp, e, cvtplot.DefaultStyle(), vg.Length(*width)*vg.Centimeter, format)
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	return err
}

func decodeImage(path string) (image.Image, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	img, _, err := image.Decode(fp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}
