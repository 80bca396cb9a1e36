package decode

import (
	"fmt"
	"io"
	"os"
)

// streamKind identifies which packet reader the fallback path should use.
type streamKind int

const (
	kindMP3 streamKind = iota
	kindWAV
	kindFLAC
	kindOgg
)

// probeKind sniffs the leading magic bytes to select a packet reader,
// using the file extension only as a hint. MP3 is the final fallback:
// minimp3 scans for a frame sync and tolerates leading garbage, so it is
// the reader most likely to salvage an unidentifiable stream.
func probeKind(f *os.File, ext string) (streamKind, error) {
	var magic [12]byte
	n, err := io.ReadFull(f, magic[:])
	if err != nil && n == 0 {
		return 0, fmt.Errorf("probe %s: %w", f.Name(), err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	switch {
	case n >= 12 && string(magic[0:4]) == "RIFF" && string(magic[8:12]) == "WAVE":
		return kindWAV, nil
	case n >= 4 && string(magic[0:4]) == "fLaC":
		return kindFLAC, nil
	case n >= 4 && string(magic[0:4]) == "OggS":
		return kindOgg, nil
	case n >= 3 && string(magic[0:3]) == "ID3":
		// An ID3v2 tag can sit in front of both MP3 and FLAC data.
		if ext == ".flac" {
			return kindFLAC, nil
		}
		return kindMP3, nil
	}

	switch ext {
	case ".wav", ".wave":
		return kindWAV, nil
	case ".flac":
		return kindFLAC, nil
	case ".ogg", ".oga":
		return kindOgg, nil
	}
	return kindMP3, nil
}

// newPacketReader builds the packet reader matching the probed stream kind.
// It takes ownership of the file: the returned reader closes it, and on
// failure it is closed before returning.
func newPacketReader(f *os.File, ext string) (packetReader, error) {
	kind, err := probeKind(f, ext)
	if err != nil {
		f.Close()
		return nil, err
	}

	switch kind {
	case kindWAV:
		return newWAVPacketReader(f)
	case kindFLAC:
		return newFLACPacketReader(f)
	case kindOgg:
		return newOggPacketReader(f)
	default:
		return newMP3PacketReader(f)
	}
}
