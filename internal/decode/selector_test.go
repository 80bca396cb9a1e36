package decode

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildWAV synthesizes a 16-bit PCM RIFF/WAVE byte stream containing a
// quiet sine tone.
func buildWAV(t *testing.T, rate, channels, frames int) []byte {
	t.Helper()

	dataSize := frames * channels * 2
	var buf bytes.Buffer

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize)) //nolint:errcheck
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))                //nolint:errcheck
	binary.Write(&buf, binary.LittleEndian, uint16(1))                 //nolint:errcheck
	binary.Write(&buf, binary.LittleEndian, uint16(channels))          //nolint:errcheck
	binary.Write(&buf, binary.LittleEndian, uint32(rate))              //nolint:errcheck
	binary.Write(&buf, binary.LittleEndian, uint32(rate*channels*2))   //nolint:errcheck
	binary.Write(&buf, binary.LittleEndian, uint16(channels*2))        //nolint:errcheck
	binary.Write(&buf, binary.LittleEndian, uint16(16))                //nolint:errcheck

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize)) //nolint:errcheck
	for i := 0; i < frames; i++ {
		v := int16(3000 * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
		for c := 0; c < channels; c++ {
			binary.Write(&buf, binary.LittleEndian, v) //nolint:errcheck
		}
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// drain counts the remaining frames in a streamer.
func drain(s interface {
	Stream([][2]float64) (int, bool)
}) int {
	buf := make([][2]float64, 1024)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			return total
		}
	}
}

func TestDecode_FastPathWAV(t *testing.T) {
	path := writeFile(t, "tone.wav", buildWAV(t, 8000, 2, 24000)) // 3s

	sel := NewSelector()
	res, err := sel.Decode(path, 0)
	require.NoError(t, err)
	defer res.Stream.Close()

	assert.Equal(t, path, res.Info.Path)
	d, ok := res.Info.Duration.Get()
	require.True(t, ok, "duration must be known for a well-formed WAV")
	assert.Equal(t, 3*time.Second, d)
	assert.Equal(t, 8000, int(res.Format.SampleRate))
	assert.Equal(t, 24000, drain(res.Stream))
}

func TestDecode_SkipDiscardsLeadingAudio(t *testing.T) {
	path := writeFile(t, "tone.wav", buildWAV(t, 8000, 2, 24000))

	sel := NewSelector()
	res, err := sel.Decode(path, 1*time.Second)
	require.NoError(t, err)
	defer res.Stream.Close()

	// Duration describes the whole track, not the remainder.
	d, ok := res.Info.Duration.Get()
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, d)

	// Exactly the first second was discarded.
	assert.Equal(t, 16000, drain(res.Stream))
}

func TestDecode_SkipPastEndYieldsEmptyStream(t *testing.T) {
	path := writeFile(t, "tone.wav", buildWAV(t, 8000, 1, 8000)) // 1s

	sel := NewSelector()
	res, err := sel.Decode(path, 10*time.Second)
	require.NoError(t, err)
	defer res.Stream.Close()

	assert.Equal(t, 0, drain(res.Stream))
}

func TestDecode_FallbackOnUnknownExtension(t *testing.T) {
	// A valid WAV behind an extension the fast path refuses: the probe
	// still recognizes the RIFF magic and the fallback decodes it.
	path := writeFile(t, "capture.dat", buildWAV(t, 8000, 2, 8000))

	sel := NewSelector()
	res, err := sel.Decode(path, 0)
	require.NoError(t, err)
	defer res.Stream.Close()

	d, ok := res.Info.Duration.Get()
	require.True(t, ok)
	assert.Equal(t, 1*time.Second, d)
	assert.Equal(t, 8000, drain(res.Stream))
}

func TestDecode_FallbackSurvivesCorruptChunks(t *testing.T) {
	wavBytes := buildWAV(t, 8000, 2, 8000)

	// Splice garbage between the fmt and data chunks.
	corrupt := make([]byte, 0, len(wavBytes)+64)
	corrupt = append(corrupt, wavBytes[:36]...)
	corrupt = append(corrupt, bytes.Repeat([]byte{0x01, 0xfe}, 16)...)
	corrupt = append(corrupt, wavBytes[36:]...)
	path := writeFile(t, "damaged.dat", corrupt)

	sel := NewSelector()
	res, err := sel.Decode(path, 0)
	require.NoError(t, err, "fallback must not abort on a damaged chunk list")
	defer res.Stream.Close()

	assert.Equal(t, 8000, drain(res.Stream), "all PCM around the damage must survive")
}

func TestDecode_FallbackTruncatedData(t *testing.T) {
	wavBytes := buildWAV(t, 8000, 2, 8000)
	path := writeFile(t, "cut.dat", wavBytes[:len(wavBytes)/2])

	sel := NewSelector()
	res, err := sel.Decode(path, 0)
	require.NoError(t, err)
	defer res.Stream.Close()

	got := drain(res.Stream)
	assert.Greater(t, got, 0, "must keep the PCM decoded before the cut")
	assert.Less(t, got, 8000)
}

func TestDecode_BothPathsFail(t *testing.T) {
	sel := NewSelector()
	_, err := sel.Decode(filepath.Join(t.TempDir(), "missing.wav"), 0)
	require.Error(t, err)

	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.NotNil(t, derr.FastErr)
	assert.NotNil(t, derr.FallbackErr)
	assert.ErrorIs(t, err, derr.FallbackErr)
}

func TestProbeKind(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		ext  string
		want streamKind
	}{
		{"riff magic", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), ".dat", kindWAV},
		{"flac magic", []byte("fLaC\x00\x00\x00\x22padpadpad"), ".dat", kindFLAC},
		{"ogg magic", []byte("OggS\x00\x02padpadpadpad"), ".dat", kindOgg},
		{"id3 defaults to mp3", []byte("ID3\x04\x00\x00\x00\x00\x00\x00pad"), ".dat", kindMP3},
		{"id3 with flac extension", []byte("ID3\x04\x00\x00\x00\x00\x00\x00pad"), ".flac", kindFLAC},
		{"extension hint wav", []byte("garbage data here"), ".wav", kindWAV},
		{"extension hint ogg", []byte("garbage data here"), ".ogg", kindOgg},
		{"unknown defaults to mp3", []byte("garbage data here"), ".xyz", kindMP3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "probe"+tt.ext, tt.data)
			f, err := os.Open(path)
			require.NoError(t, err)
			defer f.Close()

			kind, err := probeKind(f, tt.ext)
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)

			// The probe must leave the reader at the start of the stream.
			pos, err := f.Seek(0, io.SeekCurrent)
			require.NoError(t, err)
			assert.EqualValues(t, 0, pos)
		})
	}
}
