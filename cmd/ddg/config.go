package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/soypat/ddg"
	"github.com/soypat/ddg/param"
	"github.com/soypat/ddg/preview"
	"github.com/soypat/ddg/smooth"
)

// config is the optional TOML configuration file. Command line flags
// override its values.
type config struct {
	Mesh struct {
		// WeldTolerance merges STL/OBJ vertices closer than this distance.
		WeldTolerance float64 `toml:"weld_tolerance"`
	} `toml:"mesh"`
	Curvature struct {
		Kind ddg.CurvatureKind `toml:"kind"`
	} `toml:"curvature"`
	Smooth struct {
		Method     smooth.IterationMethod `toml:"method"`
		Iterations int                    `toml:"iterations"`
		Lambda     float64                `toml:"lambda"`
		Tolerance  float64                `toml:"tolerance"`
	} `toml:"smooth"`
	Param struct {
		Shape param.BoundaryShape `toml:"shape"`
	} `toml:"param"`
	CVT struct {
		Points     int   `toml:"points"`
		Iterations int   `toml:"iterations"`
		Seed       int64 `toml:"seed"`
		// Width of the plot in centimeters.
		Width float64 `toml:"width"`
	} `toml:"cvt"`
	Preview struct {
		Width       int               `toml:"width"`
		Height      int               `toml:"height"`
		Supersample int               `toml:"supersample"`
		Mode        preview.ColorMode `toml:"mode"`
	} `toml:"preview"`
}

func defaultConfig() config {
	var c config
	c.Mesh.WeldTolerance = 1e-6
	c.Curvature.Kind = ddg.Mean
	so := smooth.DefaultOptions()
	c.Smooth.Method = so.Method
	c.Smooth.Iterations = so.Iterations
	c.Smooth.Lambda = so.Lambda
	c.Param.Shape = param.Circle
	c.CVT.Points = 64
	c.CVT.Iterations = 20
	c.CVT.Seed = 1
	c.CVT.Width = 12
	po := preview.DefaultOptions()
	c.Preview.Width = po.Width
	c.Preview.Height = po.Height
	c.Preview.Supersample = po.Supersample
	c.Preview.Mode = po.Mode
	return c
}

// loadConfig returns the defaults overlaid with the file at path. An empty
// path returns the defaults.
func loadConfig(path string) (config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := toml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func (c config) previewOptions() preview.Options {
	o := preview.DefaultOptions()
	o.Width = c.Preview.Width
	o.Height = c.Preview.Height
	o.Supersample = c.Preview.Supersample
	o.Mode = c.Preview.Mode
	return o
}
