package ui

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

type surface struct {
	name string
	img  image.Image
}

// surfaces lists what an export writes: the three audio surfaces and, when
// an image is loaded, the edited image.
func (m *Model) surfaces() []surface {
	out := []surface{
		{"waveform", m.pipe.Waveform.Canvas.Image()},
		{"spectrum", m.pipe.Spectrum.Canvas.Image()},
		{"spectrogram", m.pipe.Spectrogram.Canvas.Image()},
	}
	if m.preview != nil {
		out = append(out, surface{"image", m.preview})
	}
	return out
}

func (m *Model) export() {
	prefix := slug(m.audioTitle)
	paths, err := exportPNGs(m.cfg.ExportDir, prefix, m.surfaces())
	if err != nil {
		m.fail("export", err)
		return
	}
	m.status = fmt.Sprintf("exported %d png to %s", len(paths), m.cfg.ExportDir)
	m.log.Info("surfaces exported", "dir", m.cfg.ExportDir, "files", len(paths))
}

func exportPNGs(dir, prefix string, surfaces []surface) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(surfaces))
	for _, s := range surfaces {
		p := filepath.Join(dir, prefix+"-"+s.name+".png")
		if err := writePNG(p, s.img); err != nil {
			return paths, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}

// slug turns a title into a file-name-safe prefix.
func slug(title string) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + 'a' - 'A'
		}
		return '-'
	}, title)
	s = strings.Trim(s, "-")
	if s == "" {
		return "mediadeck"
	}
	return s
}
