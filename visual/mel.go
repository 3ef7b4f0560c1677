package visual

import (
	"fmt"
	"math"
)

// DefaultMelBands is the number of perceptual bands in the Mel spectrogram.
const DefaultMelBands = 40

// HzToMel converts a frequency to the Mel scale.
func HzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

// MelToHz converts a Mel value back to Hz.
func MelToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

// Band is a half-open range [Lo, Hi) of FFT bin indices.
type Band struct {
	Lo, Hi int
}

// Len returns the number of bins in the band.
func (b Band) Len() int { return b.Hi - b.Lo }

// Bins lists the bin indices covered by the band.
func (b Band) Bins() []int {
	out := make([]int, 0, b.Len())
	for i := b.Lo; i < b.Hi; i++ {
		out = append(out, i)
	}
	return out
}

// MelBands divides the spectrum of an fftSize-point transform at sampleRate
// into numBands perceptually spaced bands. numBands+2 points equally spaced
// in Mel between 0 Hz and Nyquist are mapped back to bin indices; band i
// spans boundary i to boundary i+2 (triangular-window layout, neighbours
// overlap). Every band holds at least one bin and bands are ordered from
// low to high frequency.
func MelBands(numBands, fftSize, sampleRate int) ([]Band, error) {
	if numBands < 1 || fftSize < 2 || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: bands=%d fft=%d rate=%d", ErrMelConfig, numBands, fftSize, sampleRate)
	}
	bins := fftSize / 2
	nyquist := float64(sampleRate) / 2
	melMax := HzToMel(nyquist)

	points := make([]int, numBands+2)
	for i := range points {
		hz := MelToHz(melMax * float64(i) / float64(numBands+1))
		idx := int(math.Floor(float64(fftSize+1) * hz / float64(sampleRate)))
		points[i] = max(0, min(idx, bins-1))
	}

	bands := make([]Band, numBands)
	for i := range bands {
		lo, hi := points[i], points[i+2]
		bands[i] = Band{Lo: lo, Hi: max(hi, lo) + 1}
	}
	return bands, nil
}
