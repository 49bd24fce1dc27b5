package preview

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
)

// colormapStops is a perceptually ordered blue to red ramp sampled at
// equally spaced positions in [0,1].
var colormapStops = [...][3]float32{
	{0.230, 0.299, 0.754},
	{0.552, 0.690, 0.996},
	{0.866, 0.866, 0.866},
	{0.958, 0.603, 0.482},
	{0.706, 0.016, 0.150},
}

// Colormap maps t in [0,1] to a color. Values outside are clamped and NaN
// maps to the low end.
func Colormap(t float32) color.RGBA {
	if math32.IsNaN(t) {
		t = 0
	}
	t = math32.Max(0, math32.Min(1, t))
	x := t * float32(len(colormapStops)-1)
	i := int(math32.Floor(x))
	if i >= len(colormapStops)-1 {
		i = len(colormapStops) - 2
	}
	f := x - float32(i)
	a, b := colormapStops[i], colormapStops[i+1]
	var c [3]uint8
	for k := range c {
		v := a[k] + f*(b[k]-a[k])
		c[k] = uint8(math32.Round(255 * v))
	}
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xff}
}

// colormapImage returns a one pixel tall strip of the colormap, used as a
// texture indexed by curvature.
func colormapImage(width int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, 1))
	for x := 0; x < width; x++ {
		img.SetRGBA(x, 0, Colormap(float32(x)/float32(width-1)))
	}
	return img
}

// checkerImage returns a checkerboard with n squares per side.
func checkerImage(size, n int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	light := color.RGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}
	dark := color.RGBA{R: 0x46, G: 0x89, B: 0x66, A: 0xff}
	cell := size / n
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := light
			if (x/cell+y/cell)%2 == 1 {
				c = dark
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
