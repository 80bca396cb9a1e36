package decode

import "errors"

// Packet-level decode outcomes for the fallback path. A reader signals a
// recoverable single-packet failure with errBadPacket, a decoder-state
// reset with errResetStream, normal end of stream with io.EOF, and anything
// else aborts the whole decode.
var (
	errBadPacket   = errors.New("decode: bad packet")
	errResetStream = errors.New("decode: stream reset required")
)

// packetReader produces decoded audio one packet at a time. Implementations
// wrap a concrete demuxer/decoder and map its error surface onto the
// sentinel errors above.
type packetReader interface {
	// NextPacket returns the next run of decoded stereo frames.
	// Mono sources duplicate the single channel into both slots.
	NextPacket() ([][2]float64, error)

	// Format reports the most recently observed sample rate and channel
	// count. Both are zero until the first successful packet on streams
	// that carry no upfront header.
	Format() (sampleRate, channels int)

	// Reset clears decoder state after errResetStream.
	Reset() error

	Close() error
}
