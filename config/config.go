// Package config holds the command-line configuration.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"
)

// Config is everything the program reads from its flags.
type Config struct {
	SampleRate int
	FFTSize    int
	MelBands   int
	Width      int
	Height     int
	FPS        int
	SeekStep   float64
	Volume     float64
	Mel        bool
	ExportDir  string
	LogLevel   string
	LogFile    string

	// Files are the positional arguments.
	Files []string
}

// Default returns the configuration used when no flags are given.
func Default() Config {
	return Config{
		SampleRate: 44100,
		FFTSize:    2048,
		MelBands:   40,
		Width:      800,
		Height:     150,
		FPS:        30,
		SeekStep:   5,
		Volume:     0.8,
		ExportDir:  ".",
		LogLevel:   "info",
	}
}

// Parse reads args (without the program name) into a validated Config.
func Parse(name string, args []string, output io.Writer) (Config, error) {
	cfg := Default()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "usage: %s [flags] <audio-or-image> [more files...]\n", name)
		fs.PrintDefaults()
	}

	fs.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "output sample rate in Hz")
	fs.IntVar(&cfg.FFTSize, "fft-size", cfg.FFTSize, "analyser FFT size (power of two)")
	fs.IntVar(&cfg.MelBands, "mel-bands", cfg.MelBands, "number of Mel bands in the spectrogram")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "visualization surface width in pixels")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "visualization surface height in pixels")
	fs.IntVar(&cfg.FPS, "fps", cfg.FPS, "frames per second while playing")
	fs.Float64Var(&cfg.SeekStep, "seek-step", cfg.SeekStep, "seconds moved by one seek key")
	fs.Float64Var(&cfg.Volume, "volume", cfg.Volume, "initial volume (0-1)")
	fs.BoolVar(&cfg.Mel, "mel", cfg.Mel, "start with the Mel-warped spectrogram")
	fs.StringVar(&cfg.ExportDir, "export-dir", cfg.ExportDir, "directory for exported PNGs")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to this file (discarded when empty)")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	cfg.Files = fs.Args()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// FrameInterval is the delay between animation frames.
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("sample-rate %d out of range [8000, 192000]", c.SampleRate))
	}
	if c.FFTSize < 32 || c.FFTSize > 32768 || c.FFTSize&(c.FFTSize-1) != 0 {
		errs = append(errs, fmt.Errorf("fft-size %d must be a power of two in [32, 32768]", c.FFTSize))
	}
	if c.MelBands <= 0 {
		errs = append(errs, fmt.Errorf("mel-bands %d must be positive", c.MelBands))
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("surface %dx%d must be positive", c.Width, c.Height))
	}
	if c.FPS <= 0 || c.FPS > 120 {
		errs = append(errs, fmt.Errorf("fps %d out of range [1, 120]", c.FPS))
	}
	if !(c.SeekStep > 0) {
		errs = append(errs, fmt.Errorf("seek-step %v must be positive", c.SeekStep))
	}
	if !(c.Volume >= 0 && c.Volume <= 1) {
		errs = append(errs, fmt.Errorf("volume %v out of range [0, 1]", c.Volume))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
