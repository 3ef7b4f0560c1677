package visual

import (
	"image"
	"math"
)

// Waveform plots time-domain bytes as an oscilloscope trace. A byte value
// of 128 sits on the horizontal midline.
type Waveform struct {
	Canvas    *Canvas
	LineWidth float64
	pts       []Point
}

// NewWaveform creates a waveform renderer drawing on c.
func NewWaveform(c *Canvas) *Waveform {
	return &Waveform{Canvas: c, LineWidth: 2}
}

// Draw clears the surface and strokes one polyline through data.
func (w *Waveform) Draw(data []byte) {
	c := w.Canvas
	c.Clear()
	if len(data) == 0 {
		return
	}
	width, height := float64(c.Width()), float64(c.Height())
	step := width / float64(len(data))

	w.pts = w.pts[:0]
	for i, d := range data {
		v := float64(d) / 128
		w.pts = append(w.pts, Point{X: float64(i) * step, Y: v * height / 2})
	}
	w.pts = append(w.pts, Point{X: width, Y: height / 2})
	c.Stroke(w.pts, w.LineWidth, TraceColor)
}

// DefaultBucketSize is the number of adjacent bins averaged into one bar.
const DefaultBucketSize = 4

// Spectrum draws frequency bins as bars, averaging BucketSize adjacent bins
// per bar and sweeping the hue from 0° (low) to 360° (high).
type Spectrum struct {
	Canvas     *Canvas
	BucketSize int
	buckets    []float64
}

// NewSpectrum creates a spectrum renderer drawing on c.
func NewSpectrum(c *Canvas) *Spectrum {
	return &Spectrum{Canvas: c, BucketSize: DefaultBucketSize}
}

// Buckets averages freq into len(freq)/size buckets. A trailing partial
// bucket is dropped.
func Buckets(freq []byte, size int, dst []float64) []float64 {
	if size < 1 {
		size = 1
	}
	n := len(freq) / size
	dst = dst[:0]
	for b := range n {
		sum := 0
		for _, v := range freq[b*size : (b+1)*size] {
			sum += int(v)
		}
		dst = append(dst, float64(sum)/float64(size))
	}
	return dst
}

// Draw clears the surface and paints one bar per bucket.
func (s *Spectrum) Draw(freq []byte) {
	c := s.Canvas
	c.Clear()
	s.buckets = Buckets(freq, s.BucketSize, s.buckets)
	n := len(s.buckets)
	if n == 0 {
		return
	}
	width, height := c.Width(), c.Height()
	barW := float64(width) / float64(n)
	gap := 0
	if barW >= 3 {
		gap = 1
	}
	for i, v := range s.buckets {
		x0 := int(float64(i) * barW)
		x1 := int(float64(i+1)*barW) - gap
		if x1 <= x0 {
			x1 = x0 + 1
		}
		barH := int(math.Round(v / 255 * float64(height)))
		if barH == 0 {
			continue
		}
		c.FillRect(image.Rect(x0, height-barH, x1, height), HueColor(float64(i)/float64(n)*360))
	}
}

// ColumnStrategy paints one spectrogram column from a frequency snapshot.
type ColumnStrategy interface {
	Paint(c *Canvas, x int, freq []byte, fftSize, sampleRate int)
}

// Spectrogram scrolls its history left by one pixel per tick and paints the
// newest column on the right. The surface is never cleared while drawing.
type Spectrogram struct {
	Canvas *Canvas
}

// NewSpectrogram creates a spectrogram renderer drawing on c.
func NewSpectrogram(c *Canvas) *Spectrogram {
	return &Spectrogram{Canvas: c}
}

// Draw shifts the history and paints the rightmost column with strategy.
func (s *Spectrogram) Draw(freq []byte, strategy ColumnStrategy, fftSize, sampleRate int) {
	s.Canvas.ShiftLeft(1)
	strategy.Paint(s.Canvas, s.Canvas.Width()-1, freq, fftSize, sampleRate)
}

// LinearColumns maps bins linearly onto rows, high frequencies at the top.
// A row covering several bins shows their peak.
type LinearColumns struct{}

func (LinearColumns) Paint(c *Canvas, x int, freq []byte, _, _ int) {
	n := len(freq)
	h := c.Height()
	if n == 0 || h == 0 {
		return
	}
	for y := range h {
		// Row y covers bins whose position (bin/n)*h falls in [h-1-y, h-y).
		lo := (h - 1 - y) * n / h
		hi := max((h-y)*n/h, lo+1)
		peak := byte(0)
		for _, v := range freq[lo:min(hi, n)] {
			peak = max(peak, v)
		}
		c.img.SetRGBA(x, y, HeatColor(float64(peak)/255))
	}
}

// MelColumns groups bins into Mel bands and log-compresses each band's mean
// magnitude before colouring. Bands are recomputed only when the transform
// size or the sample rate changes.
type MelColumns struct {
	NumBands int

	bands      []Band
	fftSize    int
	sampleRate int
}

// NewMelColumns creates a Mel strategy with numBands rows.
func NewMelColumns(numBands int) *MelColumns {
	return &MelColumns{NumBands: numBands}
}

var log256 = math.Log10(256)

// MelValue log-compresses a mean magnitude in [0, 255] to [0, 1].
func MelValue(mean float64) float64 {
	return math.Log10(1+mean) / log256
}

func (m *MelColumns) Paint(c *Canvas, x int, freq []byte, fftSize, sampleRate int) {
	if m.bands == nil || m.fftSize != fftSize || m.sampleRate != sampleRate {
		bands, err := MelBands(m.NumBands, fftSize, sampleRate)
		if err != nil {
			return
		}
		m.bands, m.fftSize, m.sampleRate = bands, fftSize, sampleRate
	}
	h := c.Height()
	nb := len(m.bands)
	for b, band := range m.bands {
		sum, count := 0, 0
		for i := band.Lo; i < band.Hi && i < len(freq); i++ {
			sum += int(freq[i])
			count++
		}
		mean := 0.0
		if count > 0 {
			mean = float64(sum) / float64(count)
		}
		col := HeatColor(MelValue(mean))
		// Band 0 is the bottom row group.
		y0 := h - (b+1)*h/nb
		y1 := h - b*h/nb
		for y := y0; y < y1; y++ {
			c.img.SetRGBA(x, y, col)
		}
	}
}

// Bands returns the cached band layout, nil before the first paint.
func (m *MelColumns) Bands() []Band { return m.bands }
