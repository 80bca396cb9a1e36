package decode

import "io"

// skipID3v2 advances past an ID3v2 tag if one sits at the start of the
// stream. Some taggers prepend ID3v2 tags to FLAC files, which neither
// FLAC decoder handles.
func skipID3v2(r io.ReadSeeker) error {
	var header [10]byte
	n, err := io.ReadFull(r, header[:])
	if err != nil || n < 10 {
		_, serr := r.Seek(0, io.SeekStart)
		return serr
	}

	if string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// Tag size is a syncsafe integer: 7 bits per byte.
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(10+size, io.SeekStart)
	return err
}
