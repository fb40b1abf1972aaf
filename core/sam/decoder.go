// core/sam/decoder.go
package sam

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"samsplit-core/align"
)

// Positional fields of a text alignment line.
const (
	fieldReadID = 0
	fieldFlag   = 1
	fieldRef    = 2
	fieldPos    = 3
	fieldMapQ   = 4
	fieldCIGAR  = 5
)

// flagUnmapped is bit 4 of the flag field: the read has no valid
// alignment position.
const flagUnmapped = 0x4

// DecodeBlock streams alignment records from r, which must be
// positioned at blk.Start. It consumes lines until the cumulative byte
// count reaches blk's length; the last line that begins inside the
// block is consumed whole even if it extends past blk.End. Records with
// the unmapped flag set or with mapping quality below minMapQ are
// skipped. The sequence is one-shot: emit is called once per kept
// record, in file order.
func DecodeBlock(r io.Reader, blk align.Block, minMapQ int, emit func(align.Record) error) error {
	br := bufio.NewReader(r)
	var consumed uint64
	for consumed < blk.Len() {
		line, err := br.ReadString('\n')
		if line == "" {
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
		}
		offset := int64(blk.Start + consumed)
		consumed += uint64(len(line))

		rec, keep, perr := parseLine(strings.TrimSuffix(line, "\n"), offset, minMapQ)
		if perr != nil {
			return perr
		}
		if keep {
			if eerr := emit(rec); eerr != nil {
				return eerr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func parseLine(line string, offset int64, minMapQ int) (align.Record, bool, error) {
	fields := strings.Split(line, "\t")
	if len(fields) <= fieldCIGAR {
		return align.Record{}, false, align.FormatErrf("", offset, "alignment line has %d fields, want at least %d", len(fields), fieldCIGAR+1)
	}
	flag, err := strconv.Atoi(fields[fieldFlag])
	if err != nil {
		return align.Record{}, false, align.FormatErrf("", offset, "bad flag field %q", fields[fieldFlag])
	}
	mapq, err := strconv.Atoi(fields[fieldMapQ])
	if err != nil || mapq < 0 || mapq > 255 {
		return align.Record{}, false, align.FormatErrf("", offset, "bad mapq field %q", fields[fieldMapQ])
	}
	if flag&flagUnmapped != 0 || mapq < minMapQ {
		return align.Record{}, false, nil
	}
	pos, err := strconv.ParseInt(fields[fieldPos], 10, 64)
	if err != nil || pos < 0 {
		return align.Record{}, false, align.FormatErrf("", offset, "bad position field %q", fields[fieldPos])
	}
	return align.Record{
		ReadID:   fields[fieldReadID],
		RefName:  fields[fieldRef],
		RefIndex: -1,
		Pos:      pos,
		MapQ:     uint8(mapq),
		CIGAR:    fields[fieldCIGAR],
	}, true, nil
}
