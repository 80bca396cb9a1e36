// Package decode selects a decoding path for an audio locator: a fast
// container-aware path first, then a robust packet-tolerant fallback that
// buffers raw PCM. Both paths support discarding a leading span of audio,
// which is the engine's only seek mechanism.
package decode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/cadenceaudio/cadence/internal/track"
)

// Result is a decoded stream ready to hand to the output sink. It is
// consumed exactly once and never retained across commands.
type Result struct {
	Stream beep.StreamSeekCloser
	Format beep.Format
	Info   track.Info
}

// Error reports that both decode paths were exhausted. The fallback
// failure is the operative cause; the fast-path failure is carried for
// diagnostics only.
type Error struct {
	Locator     string
	FastErr     error
	FallbackErr error
}

func (e *Error) Error() string {
	return fmt.Sprintf("decode %s: %v (fast path: %v)", e.Locator, e.FallbackErr, e.FastErr)
}

func (e *Error) Unwrap() error { return e.FallbackErr }

// Selector tries the fast path and falls back to the tolerant path.
type Selector struct {
	log *logrus.Entry
}

// NewSelector creates a decoder selector.
func NewSelector() *Selector {
	return &Selector{log: logrus.WithField("component", "decode")}
}

// fastExtensions lists the containers the fast path dispatches on.
var fastExtensions = []string{".mp3", ".wav", ".wave", ".flac", ".ogg", ".oga"}

// Decode opens the locator and produces a playable stream, discarding the
// first skip worth of audio. A fast-path failure is never surfaced: it
// switches to the fallback path, whose failure is the final error.
func (s *Selector) Decode(locator string, skip time.Duration) (*Result, error) {
	res, fastErr := s.fastDecode(locator, skip)
	if fastErr == nil {
		return res, nil
	}

	s.log.WithError(fastErr).WithField("path", locator).
		Debug("fast decode path failed, trying fallback")

	res, fallbackErr := s.fallbackDecode(locator, skip)
	if fallbackErr != nil {
		return nil, &Error{Locator: locator, FastErr: fastErr, FallbackErr: fallbackErr}
	}
	return res, nil
}

func (s *Selector) fastDecode(locator string, skip time.Duration) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(locator))
	if !lo.Contains(fastExtensions, ext) {
		return nil, fmt.Errorf("no fast decoder for %q", ext)
	}

	f, err := os.Open(locator)
	if err != nil {
		return nil, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext {
	case ".mp3":
		streamer, format, err = decodeMP3(f)
	case ".wav", ".wave":
		streamer, format, err = wav.Decode(f)
	case ".flac":
		if err = skipID3v2(f); err == nil {
			streamer, format, err = flac.Decode(f)
		}
	case ".ogg", ".oga":
		streamer, format, err = vorbis.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, err
	}

	info := track.ReadInfo(locator)
	if n := streamer.Len(); n > 0 {
		info = info.WithDuration(format.SampleRate.D(n))
	}

	if skip > 0 {
		if err := discardFrames(streamer, format.SampleRate.N(skip)); err != nil {
			streamer.Close()
			return nil, err
		}
	}

	return &Result{Stream: streamer, Format: format, Info: info}, nil
}

// discardFrames drains n frames from the streamer. Seeking is implemented
// by decoding and throwing output away, never by container indices, so
// this is O(n) on purpose.
func discardFrames(s beep.Streamer, n int) error {
	buf := make([][2]float64, 1024)
	for n > 0 {
		want := len(buf)
		if n < want {
			want = n
		}
		read, ok := s.Stream(buf[:want])
		n -= read
		if !ok {
			// Shorter than the requested offset: the stream will report
			// end-of-audio immediately, which the controller treats as a
			// finished track.
			return s.Err()
		}
	}
	return nil
}
