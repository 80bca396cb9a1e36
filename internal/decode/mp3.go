package decode

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/gopxl/beep/v2"
	mp3 "github.com/llehouerou/go-mp3"
)

// mp3Streamer adapts go-mp3 to beep.StreamSeekCloser for the fast path.
// go-mp3 always outputs 16-bit stereo.
type mp3Streamer struct {
	dec     *mp3.Decoder
	closer  io.Closer
	readBuf []byte
	err     error
}

func decodeMP3(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	dec, err := mp3.NewDecoder(rc)
	if err != nil {
		return nil, beep.Format{}, err
	}
	if dec.SampleRate() == 0 {
		return nil, beep.Format{}, errors.New("mp3: invalid sample rate")
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(dec.SampleRate()),
		NumChannels: 2,
		Precision:   2,
	}
	return &mp3Streamer{dec: dec, closer: rc, readBuf: make([]byte, 8192)}, format, nil
}

func (s *mp3Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}

	need := len(samples) * 4 // 2 channels x 16 bits
	if len(s.readBuf) < need {
		s.readBuf = make([]byte, need)
	}

	read, err := io.ReadFull(s.dec, s.readBuf[:need])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		s.err = err
		return 0, false
	}

	for i := 0; i < read/4; i++ {
		base := i * 4
		samples[i] = [2]float64{
			float64(int16(binary.LittleEndian.Uint16(s.readBuf[base:]))) / (1 << 15),
			float64(int16(binary.LittleEndian.Uint16(s.readBuf[base+2:]))) / (1 << 15),
		}
		n++
	}
	return n, n > 0
}

func (s *mp3Streamer) Err() error { return s.err }

func (s *mp3Streamer) Len() int {
	if c := s.dec.SampleCount(); c > 0 {
		return int(c)
	}
	return 0
}

func (s *mp3Streamer) Position() int {
	return int(s.dec.SamplePosition())
}

func (s *mp3Streamer) Seek(p int) error {
	if p < 0 {
		p = 0
	}
	if l := s.Len(); p > l {
		p = l
	}
	if err := s.dec.SeekToSample(int64(p)); err != nil {
		return err
	}
	s.err = nil
	return nil
}

func (s *mp3Streamer) Close() error { return s.closer.Close() }
