// Package ddg holds the shared pieces of the discrete differential geometry
// engine: the package logger, numerical tolerances and the enumerations that
// select between curvature formulas.
//
// The processing subsystems live in sub-packages:
//
//   - mesh: half-edge triangle mesh store.
//   - curvature: Gaussian, mean and max curvature per vertex.
//   - smooth: Laplacian family smoothing and global minimal surface solve.
//   - param: disk parameterization onto a circle or square.
//   - cvt: Delaunay/Voronoi construction and Lloyd relaxation of planar points.
//
// All operations are synchronous. A mesh or point set is borrowed for the
// duration of a single call and left in a consistent state on return.
package ddg

import (
	"fmt"
	"math"
	"strings"
)

const (
	// Epsilon gates divisions by areas, cross product norms and similar
	// quantities that vanish on degenerate geometry.
	Epsilon = 1e-12
	// Tau is a full turn in radians.
	Tau = 2 * math.Pi
)

// CurvatureKind selects the per-vertex curvature formula.
type CurvatureKind int

const (
	// Mean curvature, half the norm of the cotangent Laplacian of position.
	Mean CurvatureKind = iota
	// Gaussian curvature, angle defect over mixed area.
	Gaussian
	// Max is Gaussian plus mean curvature. It approximates the magnitude of the
	// larger principal curvature and is not an eigen-decomposition.
	Max
)

func (k CurvatureKind) String() string {
	switch k {
	case Mean:
		return "mean"
	case Gaussian:
		return "gaussian"
	case Max:
		return "max"
	}
	return fmt.Sprintf("CurvatureKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k CurvatureKind) MarshalText() ([]byte, error) {
	if k < Mean || k > Max {
		return nil, fmt.Errorf("invalid curvature kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Names are case insensitive.
func (k *CurvatureKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "mean", "h":
		*k = Mean
	case "gaussian", "gauss", "k":
		*k = Gaussian
	case "max":
		*k = Max
	default:
		return fmt.Errorf("unknown curvature kind %q", text)
	}
	return nil
}
