// Package playlist is the ordered list of files given on the command line.
package playlist

import (
	"path/filepath"
	"strings"
)

// Kind tells which editor a file opens in.
type Kind int

const (
	Unknown Kind = iota
	Audio
	Image
)

func (k Kind) String() string {
	switch k {
	case Audio:
		return "audio"
	case Image:
		return "image"
	default:
		return "unknown"
	}
}

var kinds = map[string]Kind{
	".wav":  Audio,
	".mp3":  Audio,
	".ogg":  Audio,
	".oga":  Audio,
	".flac": Audio,
	".png":  Image,
	".jpg":  Image,
	".jpeg": Image,
	".gif":  Image,
	".bmp":  Image,
	".webp": Image,
}

// KindOf classifies a path by its extension.
func KindOf(path string) Kind {
	return kinds[strings.ToLower(filepath.Ext(path))]
}

// Track is a single file.
type Track struct {
	Path  string
	Title string
	Kind  Kind
}

// TrackFromPath names a track after its file, without the extension.
func TrackFromPath(path string) Track {
	base := filepath.Base(path)
	return Track{
		Path:  path,
		Title: strings.TrimSuffix(base, filepath.Ext(base)),
		Kind:  KindOf(path),
	}
}

// Playlist is an ordered list with a cursor. Navigation wraps around.
type Playlist struct {
	tracks []Track
	pos    int
}

// New creates an empty Playlist.
func New() *Playlist {
	return &Playlist{}
}

// Add appends tracks to the playlist.
func (p *Playlist) Add(tracks ...Track) {
	p.tracks = append(p.tracks, tracks...)
}

// Len returns the number of tracks.
func (p *Playlist) Len() int { return len(p.tracks) }

// Tracks returns all tracks in the playlist.
func (p *Playlist) Tracks() []Track { return p.tracks }

// Current returns the selected track and its index, or -1 when empty.
func (p *Playlist) Current() (Track, int) {
	if len(p.tracks) == 0 {
		return Track{}, -1
	}
	return p.tracks[p.pos], p.pos
}

// Index returns the cursor, or -1 when empty.
func (p *Playlist) Index() int {
	if len(p.tracks) == 0 {
		return -1
	}
	return p.pos
}

// Next moves the cursor forward.
func (p *Playlist) Next() (Track, bool) {
	return p.step(1)
}

// Prev moves the cursor back.
func (p *Playlist) Prev() (Track, bool) {
	return p.step(-1)
}

func (p *Playlist) step(d int) (Track, bool) {
	n := len(p.tracks)
	if n == 0 {
		return Track{}, false
	}
	p.pos = ((p.pos+d)%n + n) % n
	return p.tracks[p.pos], true
}

// Select moves the cursor to index i. Out-of-range indices are ignored.
func (p *Playlist) Select(i int) (Track, bool) {
	if i < 0 || i >= len(p.tracks) {
		return Track{}, false
	}
	p.pos = i
	return p.tracks[i], true
}

// First returns the index of the first track of kind k, or -1.
func (p *Playlist) First(k Kind) int {
	for i, t := range p.tracks {
		if t.Kind == k {
			return i
		}
	}
	return -1
}
