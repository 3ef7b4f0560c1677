package player

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"mediadeck/transport"
)

// Format names a container recognised by Sniff.
type Format string

const (
	FormatUnknown Format = ""
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatVorbis  Format = "ogg vorbis"
	FormatFLAC    Format = "flac"
)

// Sniff identifies the container from its leading bytes.
func Sniff(raw []byte) Format {
	switch {
	case len(raw) >= 12 && bytes.Equal(raw[:4], []byte("RIFF")) && bytes.Equal(raw[8:12], []byte("WAVE")):
		return FormatWAV
	case bytes.HasPrefix(raw, []byte("OggS")):
		return FormatVorbis
	case bytes.HasPrefix(raw, []byte("fLaC")):
		return FormatFLAC
	case bytes.HasPrefix(raw, []byte("ID3")):
		return FormatMP3
	case len(raw) >= 2 && raw[0] == 0xFF && raw[1]&0xE0 == 0xE0:
		// MPEG frame sync.
		return FormatMP3
	}
	return FormatUnknown
}

// Decode reads a whole file into memory as a beep.Buffer. Every failure
// wraps transport.ErrDecode.
func Decode(raw []byte) (*beep.Buffer, error) {
	var (
		s      beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	r := bytes.NewReader(raw)
	switch f := Sniff(raw); f {
	case FormatWAV:
		s, format, err = wav.Decode(r)
	case FormatMP3:
		s, format, err = mp3.Decode(io.NopCloser(r))
	case FormatVorbis:
		s, format, err = vorbis.Decode(io.NopCloser(r))
	case FormatFLAC:
		s, format, err = flac.Decode(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", transport.ErrDecode, err)
	}
	defer s.Close()

	buf := beep.NewBuffer(format)
	buf.Append(s)
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", transport.ErrDecode, err)
	}
	if buf.Len() == 0 || format.SampleRate <= 0 {
		return nil, ErrEmptyBuffer
	}
	return buf, nil
}

// Duration returns the length of buf in seconds.
func Duration(buf *beep.Buffer) float64 {
	return float64(buf.Len()) / float64(buf.Format().SampleRate)
}
