package decode

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jfreymuth/oggvorbis"
)

const oggPacketSamples = 8192

// oggPacketReader reads decoded Vorbis blocks from an Ogg container.
// The oggvorbis reader already skips damaged pages internally; a hard
// decode error mid-stream is mapped to a reset so the whole reader is
// rebuilt past the broken region, and a truncated file ends the stream
// with whatever was read.
type oggPacketReader struct {
	r *oggvorbis.Reader
	f *os.File

	rate     int
	channels int
	buf      []float32
	resetErr error
}

func newOggPacketReader(f *os.File) (packetReader, error) {
	r, err := oggvorbis.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ogg: open stream: %w", err)
	}
	return &oggPacketReader{
		r:        r,
		f:        f,
		rate:     r.SampleRate(),
		channels: r.Channels(),
		buf:      make([]float32, oggPacketSamples),
	}, nil
}

func (o *oggPacketReader) Format() (int, int) { return o.rate, o.channels }

// Reset rebuilds the Vorbis reader from the current file offset, dropping
// the decoder state the failed packet corrupted.
func (o *oggPacketReader) Reset() error {
	r, err := oggvorbis.NewReader(o.f)
	if err != nil {
		// Nothing decodable past the broken region.
		return o.resetErr
	}
	o.r = r
	o.rate = r.SampleRate()
	o.channels = r.Channels()
	o.resetErr = nil
	return nil
}

func (o *oggPacketReader) Close() error { return o.f.Close() }

func (o *oggPacketReader) NextPacket() ([][2]float64, error) {
	channels := o.r.Channels()
	if channels > 0 {
		o.rate = o.r.SampleRate()
		o.channels = channels
	}
	if channels < 1 {
		return nil, errBadPacket
	}

	want := len(o.buf) - len(o.buf)%channels
	n, err := o.r.Read(o.buf[:want])
	if n == 0 {
		switch {
		case err == nil, errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return nil, io.EOF
		default:
			o.resetErr = err
			return nil, errResetStream
		}
	}

	raw := o.buf[:n-n%channels]
	frames := make([][2]float64, len(raw)/channels)
	for i := range frames {
		base := i * channels
		left := float64(raw[base])
		right := left
		if channels > 1 {
			right = float64(raw[base+1])
		}
		frames[i] = [2]float64{left, right}
	}
	return frames, nil
}
