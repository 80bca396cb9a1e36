package decode

// bufferStreamer plays back a fully decoded in-memory sample buffer.
// The fallback path accumulates everything before playback starts, so the
// streamer itself is trivial.
type bufferStreamer struct {
	frames [][2]float64
	pos    int
}

func newBufferStreamer(frames [][2]float64) *bufferStreamer {
	return &bufferStreamer{frames: frames}
}

// Stream copies frames into the provided buffer.
func (b *bufferStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if b.pos >= len(b.frames) {
		return 0, false
	}
	n = copy(samples, b.frames[b.pos:])
	b.pos += n
	return n, true
}

// Err always returns nil: decode errors were handled during accumulation.
func (b *bufferStreamer) Err() error { return nil }

// Len returns the total number of frames.
func (b *bufferStreamer) Len() int { return len(b.frames) }

// Position returns the current frame position.
func (b *bufferStreamer) Position() int { return b.pos }

// Seek moves the frame position, clamped to the valid range.
func (b *bufferStreamer) Seek(p int) error {
	if p < 0 {
		p = 0
	}
	if p > len(b.frames) {
		p = len(b.frames)
	}
	b.pos = p
	return nil
}

// Close releases nothing; the buffer is garbage collected.
func (b *bufferStreamer) Close() error { return nil }
