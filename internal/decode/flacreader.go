package decode

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"
)

// flacPacketReader decodes one FLAC frame per packet. The frame parser
// resyncs on the frame sync code, so a corrupt frame is reported as a bad
// packet and decoding continues with the next one. A run of consecutive
// failures means the parser is stuck and the stream is abandoned.
type flacPacketReader struct {
	stream *flac.Stream
	f      *os.File

	rate     int
	channels int
	scale    float64

	consecutiveBad int
}

const flacMaxConsecutiveBad = 64

func newFLACPacketReader(f *os.File) (packetReader, error) {
	if err := skipID3v2(f); err != nil {
		f.Close()
		return nil, err
	}

	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("flac: parse stream header: %w", err)
	}

	info := stream.Info
	return &flacPacketReader{
		stream:   stream,
		f:        f,
		rate:     int(info.SampleRate),
		channels: int(info.NChannels),
		scale:    float64(int64(1) << (info.BitsPerSample - 1)),
	}, nil
}

func (r *flacPacketReader) Format() (int, int) { return r.rate, r.channels }

func (r *flacPacketReader) Reset() error { return nil }

func (r *flacPacketReader) Close() error { return r.f.Close() }

func (r *flacPacketReader) NextPacket() ([][2]float64, error) {
	fr, err := r.stream.ParseNext()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		r.consecutiveBad++
		if r.consecutiveBad >= flacMaxConsecutiveBad {
			return nil, fmt.Errorf("flac: parser stuck after %d bad frames: %w", r.consecutiveBad, err)
		}
		return nil, errBadPacket
	}
	r.consecutiveBad = 0

	if len(fr.Subframes) == 0 {
		return nil, errBadPacket
	}

	left := fr.Subframes[0].Samples
	right := left
	if len(fr.Subframes) > 1 {
		right = fr.Subframes[1].Samples
	}

	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	frames := make([][2]float64, n)
	for i := 0; i < n; i++ {
		frames[i] = [2]float64{
			float64(left[i]) / r.scale,
			float64(right[i]) / r.scale,
		}
	}
	return frames, nil
}
