// core/bam/header.go
package bam

import (
	"bytes"
	"encoding/binary"
	"io"

	"samsplit-core/align"
)

// magic is the 4-byte sentinel at offset 0 of a binary alignment file.
var magic = []byte{'B', 'A', 'M', 0x01}

// HeaderInfo summarizes the prologue of a binary alignment file.
type HeaderInfo struct {
	// DataStart is the byte offset immediately after the last
	// reference-sequence entry: the start of the record region.
	DataStart int64
}

// ReadHeader parses the binary prologue from r: magic, length-prefixed
// free-text header (skipped), then the reference-sequence catalogue,
// one Reference emitted per entry in on-disk order. A bad magic value
// or a truncated header is a fatal *align.FormatError.
func ReadHeader(r io.Reader, emit func(align.Reference) error) (HeaderInfo, error) {
	var info HeaderInfo
	got := make([]byte, len(magic))
	if _, err := io.ReadFull(r, got); err != nil {
		return info, align.FormatErrf("", 0, "reading magic: %v", err)
	}
	if !bytes.Equal(got, magic) {
		return info, align.FormatErrf("", 0, "bad magic %q, want %q", got, magic)
	}
	info.DataStart = int64(len(magic))

	textLen, err := readInt32(r, &info, "header text length")
	if err != nil {
		return info, err
	}
	if err := discard(r, int64(textLen), &info); err != nil {
		return info, align.FormatErrf("", info.DataStart, "skipping %d-byte header text: %v", textLen, err)
	}

	nRef, err := readInt32(r, &info, "reference count")
	if err != nil {
		return info, err
	}
	for i := int32(0); i < nRef; i++ {
		nameLen, err := readInt32(r, &info, "reference name length")
		if err != nil {
			return info, err
		}
		if nameLen < 1 {
			return info, align.FormatErrf("", info.DataStart, "reference %d has name length %d", i, nameLen)
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return info, align.FormatErrf("", info.DataStart, "reading reference %d name: %v", i, err)
		}
		info.DataStart += int64(nameLen)
		refLen, err := readInt32(r, &info, "reference length")
		if err != nil {
			return info, err
		}
		if emit != nil {
			// The on-disk name carries a trailing NUL terminator.
			ref := align.Reference{Name: string(bytes.TrimRight(name, "\x00")), Length: refLen}
			if eerr := emit(ref); eerr != nil {
				return info, eerr
			}
		}
	}
	return info, nil
}

func readInt32(r io.Reader, info *HeaderInfo, what string) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, align.FormatErrf("", info.DataStart, "reading %s: %v", what, err)
	}
	v := int32(binary.LittleEndian.Uint32(buf[:]))
	if v < 0 {
		return 0, align.FormatErrf("", info.DataStart, "negative %s %d", what, v)
	}
	info.DataStart += 4
	return v, nil
}

// discard skips n bytes, seeking when the reader allows it.
func discard(r io.Reader, n int64, info *HeaderInfo) error {
	if n == 0 {
		return nil
	}
	if s, ok := r.(io.Seeker); ok {
		if _, err := s.Seek(n, io.SeekCurrent); err != nil {
			return err
		}
	} else if _, err := io.CopyN(io.Discard, r, n); err != nil {
		return err
	}
	info.DataStart += n
	return nil
}
