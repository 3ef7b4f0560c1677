// Package imaging is the non-destructive image editor: one rotation and one
// filter applied on top of an untouched original.
package imaging

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Editor holds the original image and the current edit settings. Every
// Render starts again from the original.
type Editor struct {
	original *image.NRGBA
	filter   Filter
	rotation float64
}

// NewEditor returns an empty editor.
func NewEditor() *Editor {
	return &Editor{}
}

// Load replaces the original and resets the edit settings.
func (e *Editor) Load(img image.Image) {
	b := img.Bounds()
	e.original = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(e.original, e.original.Bounds(), img, b.Min, draw.Src)
	e.Reset()
}

// Loaded reports whether an original is present.
func (e *Editor) Loaded() bool { return e.original != nil }

// Size returns the original's dimensions.
func (e *Editor) Size() (w, h int) {
	if e.original == nil {
		return 0, 0
	}
	return e.original.Rect.Dx(), e.original.Rect.Dy()
}

func (e *Editor) Filter() Filter    { return e.filter }
func (e *Editor) Rotation() float64 { return e.rotation }

// SetFilter selects the filter for subsequent renders.
func (e *Editor) SetFilter(f Filter) {
	if f < 0 || f >= numFilters {
		f = None
	}
	e.filter = f
}

// CycleFilter advances to the next filter and returns it.
func (e *Editor) CycleFilter() Filter {
	e.filter = e.filter.Next()
	return e.filter
}

// SetRotation sets the rotation in degrees, normalised to (-180, 180].
func (e *Editor) SetRotation(deg float64) {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return
	}
	r := math.Mod(deg, 360)
	switch {
	case r <= -180:
		r += 360
	case r > 180:
		r -= 360
	}
	e.rotation = r
}

// Rotate adds delta degrees to the current rotation.
func (e *Editor) Rotate(delta float64) {
	e.SetRotation(e.rotation + delta)
}

// Reset clears the filter and the rotation.
func (e *Editor) Reset() {
	e.filter = None
	e.rotation = 0
}

// Render rotates the original about its centre onto a canvas of the same
// size, then applies the filter. Corners uncovered by the rotation stay
// transparent. It returns nil when nothing is loaded.
func (e *Editor) Render() *image.NRGBA {
	if e.original == nil {
		return nil
	}
	bounds := e.original.Bounds()
	out := image.NewNRGBA(bounds)
	if e.rotation == 0 {
		copy(out.Pix, e.original.Pix)
	} else {
		draw.BiLinear.Transform(out, rotation(e.rotation, bounds), e.original, bounds, draw.Src, nil)
	}
	e.filter.Apply(out)
	return out
}

// rotation maps source to destination coordinates for a clockwise turn of
// deg degrees about the centre of r (y grows downwards).
func rotation(deg float64, r image.Rectangle) f64.Aff3 {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	cx := float64(r.Dx()) / 2
	cy := float64(r.Dy()) / 2
	return f64.Aff3{
		cos, -sin, cx - cos*cx + sin*cy,
		sin, cos, cy - sin*cx - cos*cy,
	}
}
