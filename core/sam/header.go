// core/sam/header.go
package sam

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"samsplit-core/align"
)

// HeaderInfo summarizes the prologue of a text alignment file.
type HeaderInfo struct {
	// DataStart is the byte offset of the first line that is not a
	// header line, i.e. the start of the record region.
	DataStart int64
	// SortedByCoordinate reports whether the @HD line declares
	// SO:coordinate. Block partitioning assumes this for downstream
	// consumers but does not enforce it.
	SortedByCoordinate bool
}

// ReadHeader scans header lines (prefix '@') from r, emitting one
// Reference per @SQ line in on-disk order, and stops at the first
// non-header byte. emit may be nil to skip the catalogue.
func ReadHeader(r io.Reader, emit func(align.Reference) error) (HeaderInfo, error) {
	br := bufio.NewReader(r)
	var info HeaderInfo
	for {
		line, err := br.ReadString('\n')
		if line == "" {
			if err == io.EOF {
				return info, nil
			}
			if err != nil {
				return info, err
			}
		}
		if !strings.HasPrefix(line, "@") {
			// info.DataStart already points at this line.
			return info, nil
		}
		trimmed := strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(trimmed, "@SQ"):
			ref, perr := parseSQ(trimmed, info.DataStart)
			if perr != nil {
				return info, perr
			}
			if emit != nil {
				if eerr := emit(ref); eerr != nil {
					return info, eerr
				}
			}
		case strings.HasPrefix(trimmed, "@HD") && strings.Contains(trimmed, "SO:coordinate"):
			info.SortedByCoordinate = true
		}
		info.DataStart += int64(len(line))
		if err == io.EOF {
			// Header line without a trailing newline at end of file.
			return info, nil
		}
		if err != nil {
			return info, err
		}
	}
}

// parseSQ extracts the SN and LN sub-fields of an @SQ line. Sub-field
// order within the line is not guaranteed.
func parseSQ(line string, offset int64) (align.Reference, error) {
	var (
		ref    align.Reference
		haveSN bool
		haveLN bool
	)
	for _, field := range strings.Split(line, "\t") {
		switch {
		case strings.HasPrefix(field, "SN:"):
			ref.Name = field[3:]
			haveSN = true
		case strings.HasPrefix(field, "LN:"):
			n, err := strconv.ParseInt(field[3:], 10, 32)
			if err != nil || n < 0 {
				return ref, align.FormatErrf("", offset, "@SQ line has bad LN value %q", field[3:])
			}
			ref.Length = int32(n)
			haveLN = true
		}
	}
	if !haveSN || !haveLN {
		return ref, align.FormatErrf("", offset, "@SQ line missing SN or LN sub-field: %q", line)
	}
	return ref, nil
}
