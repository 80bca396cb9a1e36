// Package track defines the immutable descriptor of a loaded track.
package track

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dhowden/tag"
	"github.com/samber/mo"
)

// Info describes a loaded track. It is created once per successful decode
// and never mutated afterwards.
//
// Duration is absent when the decoder cannot derive a total duration
// (some fallback-path streams); it is never a zero sentinel.
type Info struct {
	Path     string
	Duration mo.Option[time.Duration]

	Title  string
	Artist string
	Album  string
	Year   int
}

// WithDuration returns a copy of the info with the given duration set.
func (i Info) WithDuration(d time.Duration) Info {
	i.Duration = mo.Some(d)
	return i
}

// ReadInfo builds an Info for the given path from its tag metadata.
// Files without readable tags still yield a usable Info: the title falls
// back to the base filename and the duration stays absent until a decoder
// fills it in.
func ReadInfo(path string) Info {
	info := Info{
		Path:  path,
		Title: filepath.Base(path),
	}

	f, err := os.Open(path)
	if err != nil {
		return info
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return info
	}

	if t := m.Title(); t != "" {
		info.Title = t
	}
	info.Artist = m.Artist()
	info.Album = m.Album()
	info.Year = m.Year()

	return info
}
