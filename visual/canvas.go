// Package visual renders analyser snapshots into raster surfaces: an
// oscilloscope waveform, a bucketed linear spectrum and a scrolling
// spectrogram with an optional Mel-warped frequency axis.
package visual

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Point is a position in canvas pixel space.
type Point struct{ X, Y float64 }

// Canvas is a fixed-size RGBA drawing surface.
type Canvas struct {
	img *image.RGBA
	bg  color.RGBA
}

// NewCanvas allocates a w×h surface cleared to bg.
func NewCanvas(w, h int, bg color.RGBA) *Canvas {
	c := &Canvas{img: image.NewRGBA(image.Rect(0, 0, w, h)), bg: bg}
	c.Clear()
	return c
}

func (c *Canvas) Width() int             { return c.img.Rect.Dx() }
func (c *Canvas) Height() int            { return c.img.Rect.Dy() }
func (c *Canvas) Image() *image.RGBA     { return c.img }
func (c *Canvas) At(x, y int) color.RGBA { return c.img.RGBAAt(x, y) }

// Clear fills the whole surface with the background colour.
func (c *Canvas) Clear() {
	draw.Draw(c.img, c.img.Rect, image.NewUniform(c.bg), image.Point{}, draw.Src)
}

// FillRect paints r, clipped to the surface.
func (c *Canvas) FillRect(r image.Rectangle, col color.Color) {
	r = r.Intersect(c.img.Rect)
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

// Stroke draws a connected polyline of the given width.
func (c *Canvas) Stroke(pts []Point, width float64, col color.Color) {
	if len(pts) < 2 {
		return
	}
	w, h := c.Width(), c.Height()
	r := vector.NewRasterizer(w, h)
	half := width / 2
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		// Segment as a quad offset along its normal.
		nx, ny := -dy/l*half, dx/l*half
		r.MoveTo(f32(a.X+nx), f32(a.Y+ny))
		r.LineTo(f32(b.X+nx), f32(b.Y+ny))
		r.LineTo(f32(b.X-nx), f32(b.Y-ny))
		r.LineTo(f32(a.X-nx), f32(a.Y-ny))
		r.ClosePath()
	}
	r.Draw(c.img, c.img.Rect, image.NewUniform(col), image.Point{})
}

// ShiftLeft scrolls the surface n pixels to the left and clears the
// uncovered columns on the right.
func (c *Canvas) ShiftLeft(n int) {
	w := c.Width()
	if n <= 0 {
		return
	}
	if n >= w {
		c.Clear()
		return
	}
	b := c.img.Rect
	draw.Draw(c.img, image.Rect(b.Min.X, b.Min.Y, b.Max.X-n, b.Max.Y), c.img, image.Pt(b.Min.X+n, b.Min.Y), draw.Src)
	c.FillRect(image.Rect(b.Max.X-n, b.Min.Y, b.Max.X, b.Max.Y), c.bg)
}

func f32(v float64) float32 { return float32(v) }
