// core/bam/decoder.go
package bam

import (
	"encoding/binary"
	"io"

	"samsplit-core/align"
)

// Each record is [4-byte little-endian body length][body]. The body
// opens with a fixed 16-byte prefix:
//
//	[0:4)   reference index, int32
//	[4:8)   0-based position, int32
//	[9]     mapping quality
//	[11:15) read-name length, int32, counts the NUL terminator
//
// followed by the read name, its NUL, and the remaining bytes as a
// textual CIGAR representation. Unlisted prefix bytes are reserved.
const prefixLen = 16

// DecodeBlock streams alignment records from r, which must be
// positioned at blk.Start. Records whose reference index is negative
// (unmapped) or whose mapping quality is below minMapQ are skipped. A
// body length that does not fit the remaining block bytes is a fatal
// *align.FormatError; running out of bytes exactly on a record boundary
// ends the sequence normally.
func DecodeBlock(r io.Reader, blk align.Block, minMapQ int, emit func(align.Record) error) error {
	var (
		consumed uint64
		lenBuf   [4]byte
	)
	for consumed < blk.Len() {
		offset := int64(blk.Start + consumed)
		remaining := blk.Len() - consumed
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			if err == io.EOF {
				return nil
			}
			return align.FormatErrf("", offset, "reading record length prefix: %v", err)
		}
		bodyLen := int32(binary.LittleEndian.Uint32(lenBuf[:]))
		consumed += 4
		if bodyLen < prefixLen {
			return align.FormatErrf("", offset, "record body length %d is smaller than the %d-byte fixed prefix", bodyLen, prefixLen)
		}
		if uint64(bodyLen)+4 > remaining {
			return align.FormatErrf("", offset, "record body of %d bytes exceeds the %d bytes left in the block", bodyLen, remaining-4)
		}
		body := make([]byte, bodyLen)
		if _, err := io.ReadFull(r, body); err != nil {
			return align.FormatErrf("", offset, "reading %d-byte record body: %v", bodyLen, err)
		}
		consumed += uint64(bodyLen)

		rec, keep, perr := parseBody(body, offset, minMapQ)
		if perr != nil {
			return perr
		}
		if keep {
			if eerr := emit(rec); eerr != nil {
				return eerr
			}
		}
	}
	return nil
}

func parseBody(body []byte, offset int64, minMapQ int) (align.Record, bool, error) {
	refIdx := int32(binary.LittleEndian.Uint32(body[0:4]))
	pos := int32(binary.LittleEndian.Uint32(body[4:8]))
	mapq := body[9]
	nameLen := int32(binary.LittleEndian.Uint32(body[11:15]))
	if nameLen < 1 || prefixLen+int(nameLen) > len(body) {
		return align.Record{}, false, align.FormatErrf("", offset, "record declares read-name length %d in a %d-byte body", nameLen, len(body))
	}
	if refIdx < 0 || int(mapq) < minMapQ {
		return align.Record{}, false, nil
	}
	return align.Record{
		ReadID:   string(body[prefixLen : prefixLen+int(nameLen)-1]),
		RefIndex: refIdx,
		Pos:      int64(pos),
		MapQ:     mapq,
		CIGAR:    string(body[prefixLen+int(nameLen):]),
	}, true, nil
}
