package decode

import (
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/tosone/minimp3"
)

const mp3PacketBytes = 16 * 1024

// mp3PacketReader wraps minimp3, which scans for frame syncs and silently
// skips undecodable regions. That makes it the reader of last resort for
// streams the probe could not identify.
type mp3PacketReader struct {
	dec     *minimp3.Decoder
	f       *os.File
	readBuf []byte

	rate     int
	channels int
}

func newMP3PacketReader(f *os.File) (packetReader, error) {
	dec, err := minimp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	<-dec.Started()

	r := &mp3PacketReader{
		dec:     dec,
		f:       f,
		readBuf: make([]byte, mp3PacketBytes),
	}
	if dec.SampleRate > 0 {
		r.rate = dec.SampleRate
		r.channels = dec.Channels
	}
	return r, nil
}

func (m *mp3PacketReader) Format() (int, int) { return m.rate, m.channels }

func (m *mp3PacketReader) Reset() error { return nil }

func (m *mp3PacketReader) Close() error {
	m.dec.Close()
	return m.f.Close()
}

func (m *mp3PacketReader) NextPacket() ([][2]float64, error) {
	n, err := m.dec.Read(m.readBuf)
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}

	// Frame parameters can shift mid-stream on spliced files; trust the
	// most recent ones the decoder reports.
	if m.dec.SampleRate > 0 {
		m.rate = m.dec.SampleRate
		m.channels = m.dec.Channels
	}

	channels := m.channels
	if channels < 1 {
		return nil, errBadPacket
	}

	sampleBytes := 2 * channels
	raw := m.readBuf[:n-n%sampleBytes]
	frames := make([][2]float64, len(raw)/sampleBytes)
	for i := range frames {
		base := i * sampleBytes
		left := float64(int16(binary.LittleEndian.Uint16(raw[base:]))) / (1 << 15)
		right := left
		if channels > 1 {
			right = float64(int16(binary.LittleEndian.Uint16(raw[base+2:]))) / (1 << 15)
		}
		frames[i] = [2]float64{left, right}
	}
	return frames, nil
}
