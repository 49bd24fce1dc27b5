package cvtplot_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/soypat/ddg/cvt"
	"github.com/soypat/ddg/cvt/cvtplot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/cmpimg"
	"gonum.org/v1/plot/vg"
)

func render(t *testing.T, seed int64, format string) []byte {
	t.Helper()
	e := cvt.NewEngine(cvt.WithRand(rand.New(rand.NewSource(seed))))
	require.NoError(t, e.GenerateRandomPoints(20))
	require.NoError(t, e.LloydRelax())
	var buf bytes.Buffer
	require.NoError(t, cvtplot.WriteTo(&buf, e, cvtplot.DefaultStyle(), 4*vg.Centimeter, format))
	return buf.Bytes()
}

func TestDeterministicPNG(t *testing.T) {
	a := render(t, 1, "png")
	b := render(t, 1, "png")
	equal, err := cmpimg.EqualApprox("png", a, b, 0)
	require.NoError(t, err)
	assert.True(t, equal)

	c := render(t, 2, "png")
	equal, err = cmpimg.EqualApprox("png", a, c, 0)
	require.NoError(t, err)
	assert.False(t, equal, "different point sets should not draw the same image")
}

func TestSVG(t *testing.T) {
	out := render(t, 3, "svg")
	assert.Contains(t, string(out), "<svg")
}
