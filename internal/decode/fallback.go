package decode

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/cadenceaudio/cadence/internal/track"
)

// fallbackDecode probes the stream, selects a packet reader and runs the
// tolerant packet loop, buffering the entire decoded stream before
// playback begins. The full buffering is a deliberate latency tradeoff:
// it is what makes a derived duration and offset slicing possible on
// streams without usable metadata.
func (s *Selector) fallbackDecode(locator string, skip time.Duration) (*Result, error) {
	f, err := os.Open(locator)
	if err != nil {
		return nil, err
	}

	r, err := newPacketReader(f, strings.ToLower(filepath.Ext(locator)))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	frames, rate, channels, skipped, err := collectPackets(r)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		s.log.WithField("path", locator).WithField("packets", skipped).
			Warn("skipped undecodable packets")
	}

	info := track.ReadInfo(locator)
	format := beep.Format{
		SampleRate:  beep.SampleRate(rate),
		NumChannels: channels,
		Precision:   2,
	}

	// Duration is derivable only when the stream parameters are known;
	// otherwise it stays absent, never a zero sentinel.
	if rate > 0 && channels > 0 {
		info = info.WithDuration(time.Duration(len(frames)) * time.Second / time.Duration(rate))
	}

	if skip > 0 && rate > 0 {
		n := format.SampleRate.N(skip)
		if n > len(frames) {
			n = len(frames)
		}
		frames = frames[n:]
	}

	return &Result{Stream: newBufferStreamer(frames), Format: format, Info: info}, nil
}

// collectPackets accumulates decoded frames until end of stream.
// Recoverable per-packet errors are counted and skipped, a reset signal
// reinitializes the reader, and any other error aborts the decode. The
// most recently observed sample rate and channel count win, since both
// can shift packet-to-packet in pathological streams.
func collectPackets(r packetReader) (frames [][2]float64, rate, channels, skipped int, err error) {
	for {
		pkt, perr := r.NextPacket()
		switch {
		case perr == nil:
		case errors.Is(perr, errBadPacket):
			skipped++
			continue
		case errors.Is(perr, errResetStream):
			if rerr := r.Reset(); rerr != nil {
				return nil, 0, 0, skipped, rerr
			}
			continue
		case errors.Is(perr, io.EOF):
			return frames, rate, channels, skipped, nil
		default:
			return nil, 0, 0, skipped, perr
		}

		if sr, ch := r.Format(); sr > 0 {
			rate, channels = sr, ch
		}
		frames = append(frames, pkt...)
	}
}
