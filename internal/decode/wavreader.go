package decode

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

const wavPacketFrames = 4096

// wavPacketReader walks RIFF chunks by hand so that a damaged chunk list
// does not abort the whole decode: unknown chunks are skipped, garbage
// between chunks is resynced over, and a truncated data chunk still yields
// every complete frame read before the cut.
type wavPacketReader struct {
	f  *os.File
	br *bufio.Reader

	rate     int
	channels int
	bits     int
	floatFmt bool

	inData   bool
	dataLeft int64 // bytes remaining in the current data chunk; -1 = read to EOF

	readBuf []byte
}

func newWAVPacketReader(f *os.File) (packetReader, error) {
	br := bufio.NewReaderSize(f, 32*1024)

	var riff [12]byte
	if _, err := io.ReadFull(br, riff[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("wav: read RIFF header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		f.Close()
		return nil, fmt.Errorf("wav: not a RIFF/WAVE stream")
	}

	return &wavPacketReader{f: f, br: br}, nil
}

func (w *wavPacketReader) Format() (int, int) { return w.rate, w.channels }

func (w *wavPacketReader) Reset() error { return nil }

func (w *wavPacketReader) Close() error { return w.f.Close() }

func (w *wavPacketReader) NextPacket() ([][2]float64, error) {
	for !w.inData {
		if err := w.nextChunk(); err != nil {
			return nil, err
		}
	}
	return w.readFrames()
}

// nextChunk advances to the next chunk header and handles it. Entering a
// data chunk flips inData; anything unrecognized is skipped or resynced.
func (w *wavPacketReader) nextChunk() error {
	var hdr [8]byte
	n, err := io.ReadFull(w.br, hdr[:])
	if err != nil {
		if n == 0 {
			return io.EOF
		}
		// Trailing partial header: nothing decodable remains.
		return io.EOF
	}

	id := string(hdr[0:4])
	size := int64(binary.LittleEndian.Uint32(hdr[4:8]))

	if !chunkIDPlausible(id) {
		if err := w.resync(); err != nil {
			return err
		}
		return errBadPacket
	}

	switch id {
	case "fmt ":
		return w.readFmt(size)
	case "data":
		w.inData = true
		w.dataLeft = size
		if size == 0 || size == int64(math.MaxUint32) {
			// Streamed writers leave the size unset; read to EOF.
			w.dataLeft = -1
		}
		return nil
	default:
		return w.skip(size + size%2)
	}
}

func (w *wavPacketReader) readFmt(size int64) error {
	if size < 16 {
		if err := w.skip(size + size%2); err != nil {
			return err
		}
		return errBadPacket
	}

	var body [16]byte
	if _, err := io.ReadFull(w.br, body[:]); err != nil {
		return io.EOF
	}

	format := binary.LittleEndian.Uint16(body[0:2])
	channels := int(binary.LittleEndian.Uint16(body[2:4]))
	rate := int(binary.LittleEndian.Uint32(body[4:8]))
	bits := int(binary.LittleEndian.Uint16(body[14:16]))

	if err := w.skip(size - 16 + size%2); err != nil {
		return err
	}

	if channels == 0 || rate == 0 {
		return errBadPacket
	}
	switch {
	case format == 1 && (bits == 8 || bits == 16 || bits == 24 || bits == 32):
		w.floatFmt = false
	case format == 3 && bits == 32:
		w.floatFmt = true
	default:
		return fmt.Errorf("wav: unsupported sample format %d/%d-bit", format, bits)
	}

	w.rate = rate
	w.channels = channels
	w.bits = bits
	return nil
}

func (w *wavPacketReader) readFrames() ([][2]float64, error) {
	if w.rate == 0 || w.channels == 0 {
		// data chunk before any usable fmt chunk: skip it.
		w.inData = false
		if w.dataLeft > 0 {
			if err := w.skip(w.dataLeft); err != nil {
				return nil, err
			}
		}
		return nil, errBadPacket
	}

	frameSize := w.channels * w.bits / 8
	want := int64(wavPacketFrames * frameSize)
	if w.dataLeft >= 0 && want > w.dataLeft {
		want = w.dataLeft
	}
	if want == 0 {
		w.inData = false
		return nil, errBadPacket
	}

	if int64(cap(w.readBuf)) < want {
		w.readBuf = make([]byte, want)
	}
	buf := w.readBuf[:want]

	n, err := io.ReadFull(w.br, buf)
	if w.dataLeft >= 0 {
		w.dataLeft -= int64(n)
		if w.dataLeft == 0 {
			w.inData = false
		}
	}
	if err != nil {
		// Truncated data chunk: keep the complete frames we got and end
		// the stream on the next call.
		w.inData = false
		w.dataLeft = 0
		if n < frameSize {
			return nil, io.EOF
		}
	}

	return w.decodeFrames(buf[:n-n%frameSize]), nil
}

func (w *wavPacketReader) decodeFrames(raw []byte) [][2]float64 {
	sampleSize := w.bits / 8
	frameSize := w.channels * sampleSize
	frames := make([][2]float64, len(raw)/frameSize)

	for i := range frames {
		base := i * frameSize
		left := w.decodeSample(raw[base:])
		right := left
		if w.channels > 1 {
			right = w.decodeSample(raw[base+sampleSize:])
		}
		frames[i] = [2]float64{left, right}
	}
	return frames
}

func (w *wavPacketReader) decodeSample(b []byte) float64 {
	switch w.bits {
	case 8:
		return (float64(b[0]) - 128) / 128
	case 16:
		return float64(int16(binary.LittleEndian.Uint16(b))) / (1 << 15)
	case 24:
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if v&(1<<23) != 0 {
			v -= 1 << 24
		}
		return float64(v) / (1 << 23)
	default: // 32
		u := binary.LittleEndian.Uint32(b)
		if w.floatFmt {
			return float64(math.Float32frombits(u))
		}
		return float64(int32(u)) / (1 << 31)
	}
}

// resync scans forward for the next plausible chunk boundary after garbage.
func (w *wavPacketReader) resync() error {
	for {
		peek, err := w.br.Peek(4)
		if err != nil {
			return io.EOF
		}
		if id := string(peek); id == "fmt " || id == "data" {
			return nil
		}
		if _, err := w.br.Discard(1); err != nil {
			return io.EOF
		}
	}
}

func (w *wavPacketReader) skip(n int64) error {
	if n <= 0 {
		return nil
	}
	if _, err := w.br.Discard(int(n)); err != nil {
		return io.EOF
	}
	return nil
}

func chunkIDPlausible(id string) bool {
	for i := 0; i < len(id); i++ {
		if id[i] < 0x20 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
