package player

import (
	"math"
	"math/cmplx"

	"github.com/madelynnblue/go-dsp/fft"
)

const (
	// DefaultFFTSize is the analysis window length in samples.
	DefaultFFTSize = 2048

	smoothing = 0.8
	minDB     = -100.0
	maxDB     = -30.0
)

// Analyser turns the tap's recent samples into byte snapshots: time-domain
// samples centred on 128, and smoothed FFT magnitudes mapped from
// [minDB, maxDB] onto [0, 255].
//
// Snapshots are taken from the host's logical thread only.
type Analyser struct {
	tap     *Tap
	fftSize int
	rate    int
	window  []float64
	samples []float64
	smooth  []float64
}

// NewAnalyser reads from tap with an fftSize-point transform. rate is the
// sample rate of the audio passing through the tap.
func NewAnalyser(tap *Tap, fftSize, rate int) *Analyser {
	a := &Analyser{
		tap:     tap,
		fftSize: fftSize,
		rate:    rate,
		window:  make([]float64, fftSize),
		samples: make([]float64, fftSize),
		smooth:  make([]float64, fftSize/2),
	}
	// Blackman window to reduce spectral leakage.
	for i := range fftSize {
		x := 2 * math.Pi * float64(i) / float64(fftSize)
		a.window[i] = 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
	}
	return a
}

func (a *Analyser) FFTSize() int    { return a.fftSize }
func (a *Analyser) BinCount() int   { return a.fftSize / 2 }
func (a *Analyser) SampleRate() int { return a.rate }

// TimeDomain fills dst with the most recent samples as bytes.
func (a *Analyser) TimeDomain(dst []byte) {
	s := a.samples[:min(len(dst), a.fftSize)]
	a.tap.Snapshot(s)
	for i, v := range s {
		dst[i] = toByte(128 * (1 + v))
	}
}

// Frequency fills dst with bin magnitudes. Each call advances the time
// smoothing by one frame.
func (a *Analyser) Frequency(dst []byte) {
	a.tap.Snapshot(a.samples)
	for i := range a.samples {
		a.samples[i] *= a.window[i]
	}
	spectrum := fft.FFTReal(a.samples)
	n := float64(a.fftSize)
	for k := range a.smooth {
		mag := cmplx.Abs(spectrum[k]) / n
		a.smooth[k] = smoothing*a.smooth[k] + (1-smoothing)*mag
		if k >= len(dst) {
			continue
		}
		if a.smooth[k] <= 0 {
			dst[k] = 0
			continue
		}
		db := 20 * math.Log10(a.smooth[k])
		dst[k] = toByte(255 * (db - minDB) / (maxDB - minDB))
	}
}

// Reset forgets the smoothing history.
func (a *Analyser) Reset() {
	clear(a.smooth)
}

func toByte(v float64) byte {
	return byte(max(0, min(255, math.Floor(v))))
}
