package imaging

import (
	"fmt"
	"image"
	"math"
	"math/cmplx"
	"slices"

	"github.com/madelynnblue/go-dsp/fft"
)

// Filter is a whole-image pixel operation applied after rotation.
type Filter int

const (
	None Filter = iota
	Grayscale
	Invert
	Sepia
	Median
	Spectrum
	numFilters
)

var filterNames = [...]string{"none", "grayscale", "invert", "sepia", "median", "fft"}

func (f Filter) String() string {
	if f < 0 || f >= numFilters {
		return fmt.Sprintf("Filter(%d)", int(f))
	}
	return filterNames[f]
}

// Next returns the filter after f, wrapping back to None.
func (f Filter) Next() Filter {
	return (f + 1) % numFilters
}

// ParseFilter maps a filter name back to its value.
func ParseFilter(name string) (Filter, error) {
	for i, n := range filterNames {
		if n == name {
			return Filter(i), nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
}

// Apply runs f over img in place.
func (f Filter) Apply(img *image.NRGBA) {
	switch f {
	case Grayscale, Invert, Sepia:
		pointwise(img, f)
	case Median:
		median3(img)
	case Spectrum:
		spectrum(img)
	}
}

func clampByte(v float64) uint8 {
	return uint8(math.RoundToEven(max(0, min(255, v))))
}

func luma(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

func pointwise(img *image.NRGBA, f Filter) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			r, g, bl := row[i], row[i+1], row[i+2]
			rf, gf, bf := float64(r), float64(g), float64(bl)
			switch f {
			case Grayscale:
				v := clampByte(luma(r, g, bl))
				row[i], row[i+1], row[i+2] = v, v, v
			case Invert:
				row[i], row[i+1], row[i+2] = 255-r, 255-g, 255-bl
			case Sepia:
				row[i] = clampByte(0.393*rf + 0.769*gf + 0.189*bf)
				row[i+1] = clampByte(0.349*rf + 0.686*gf + 0.168*bf)
				row[i+2] = clampByte(0.272*rf + 0.534*gf + 0.131*bf)
			}
		}
	}
}

// median3 replaces each interior pixel's colour channels with the median of
// its 3×3 neighbourhood. Border pixels and alpha are left as they were.
func median3(img *image.NRGBA) {
	b := img.Bounds()
	if b.Dx() < 3 || b.Dy() < 3 {
		return
	}
	src := slices.Clone(img.Pix)
	var win [3][9]uint8
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			n := 0
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					o := img.PixOffset(x+kx, y+ky)
					win[0][n], win[1][n], win[2][n] = src[o], src[o+1], src[o+2]
					n++
				}
			}
			o := img.PixOffset(x, y)
			for c := range win {
				slices.Sort(win[c][:])
				img.Pix[o+c] = win[c][4]
			}
		}
	}
}

// spectrum replaces img with the centred log-magnitude of the 2-D Fourier
// transform of its luminance, normalised so the strongest component is white.
func spectrum(img *image.NRGBA) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	lum := make([][]float64, h)
	for y := range h {
		lum[y] = make([]float64, w)
		for x := range w {
			o := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			lum[y][x] = luma(img.Pix[o], img.Pix[o+1], img.Pix[o+2])
		}
	}
	coeffs := fft.FFT2Real(lum)

	peak := 0.0
	for y := range h {
		for x := range w {
			v := math.Log1p(cmplx.Abs(coeffs[y][x]))
			lum[y][x] = v
			peak = max(peak, v)
		}
	}
	for y := range h {
		for x := range w {
			// Shift the zero frequency to the centre.
			v := lum[(y+h-h/2)%h][(x+w-w/2)%w]
			if peak > 0 {
				v = 255 * v / peak
			}
			o := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			g := clampByte(v)
			img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = g, g, g, 255
		}
	}
}
