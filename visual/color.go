package visual

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Surface palette.
var (
	Background = color.RGBA{R: 14, G: 17, B: 23, A: 255}
	TraceColor = color.RGBA{R: 0, G: 215, B: 175, A: 255}
)

// HueColor returns the fully saturated, half-lightness colour of hue h
// degrees. Hues outside [0, 360) wrap.
func HueColor(h float64) color.RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := colorful.Hsl(h, 1, 0.5).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// HeatColor maps an intensity in [0, 1] onto the 240°→0° hue ramp:
// blue for quiet, red for loud.
func HeatColor(v float64) color.RGBA {
	v = math.Max(0, math.Min(1, v))
	return HueColor(240 - v*240)
}
