package visual

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestMelRoundTrip(t *testing.T) {
	t.Parallel()

	for _, hz := range []float64{0, 20, 440, 1000, 8000, 22050} {
		if got := MelToHz(HzToMel(hz)); math.Abs(got-hz) > 1e-6 {
			t.Errorf("MelToHz(HzToMel(%v)) = %v", hz, got)
		}
	}
	if got := HzToMel(1000); math.Abs(got-1000) > 0.5 {
		t.Errorf("HzToMel(1000) = %v, want ~1000", got)
	}
}

func TestMelBands_Coverage(t *testing.T) {
	t.Parallel()

	fftSizes := []int{256, 512, 1024, 2048, 4096, 8192}
	rates := []int{8000, 16000, 22050, 44100, 48000, 96000}

	for _, fftSize := range fftSizes {
		for _, rate := range rates {
			t.Run(fmt.Sprintf("%d@%d", fftSize, rate), func(t *testing.T) {
				t.Parallel()

				bands, err := MelBands(DefaultMelBands, fftSize, rate)
				if err != nil {
					t.Fatalf("MelBands() error = %v", err)
				}
				if len(bands) != DefaultMelBands {
					t.Fatalf("len(bands) = %d, want %d", len(bands), DefaultMelBands)
				}
				for i, b := range bands {
					if b.Len() < 1 {
						t.Errorf("band %d is empty: %+v", i, b)
					}
					if b.Lo < 0 || b.Hi > fftSize/2 {
						t.Errorf("band %d out of range: %+v", i, b)
					}
					if i > 0 {
						prev := bands[i-1]
						if b.Lo < prev.Lo || b.Hi < prev.Hi {
							t.Errorf("band %d %+v precedes band %d %+v", i, b, i-1, prev)
						}
					}
				}
			})
		}
	}
}

func TestMelBands_Bins(t *testing.T) {
	t.Parallel()

	b := Band{Lo: 3, Hi: 6}
	got := b.Bins()
	want := []int{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("Bins() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Bins() = %v, want %v", got, want)
		}
	}
}

func TestMelBands_HighBandsAreWider(t *testing.T) {
	t.Parallel()

	bands, err := MelBands(DefaultMelBands, 2048, 44100)
	if err != nil {
		t.Fatal(err)
	}
	if first, last := bands[0].Len(), bands[len(bands)-1].Len(); last <= first {
		t.Errorf("top band has %d bins, bottom band %d; want wider top", last, first)
	}
}

func TestMelBands_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                 string
		bands, fftSize, rate int
	}{
		{"no bands", 0, 2048, 44100},
		{"tiny fft", 40, 1, 44100},
		{"zero rate", 40, 2048, 0},
	}
	for _, tt := range tests {
		if _, err := MelBands(tt.bands, tt.fftSize, tt.rate); !errors.Is(err, ErrMelConfig) {
			t.Errorf("%s: error = %v, want ErrMelConfig", tt.name, err)
		}
	}
}

func TestMelValue(t *testing.T) {
	t.Parallel()

	if got := MelValue(0); got != 0 {
		t.Errorf("MelValue(0) = %v", got)
	}
	if got := MelValue(255); math.Abs(got-1) > 1e-12 {
		t.Errorf("MelValue(255) = %v, want 1", got)
	}
	if MelValue(15) <= 15.0/255 {
		t.Error("MelValue does not lift quiet content")
	}
}
