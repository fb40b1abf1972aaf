// core/align/align.go
package align

import (
	"fmt"
	"strings"
)

// Format identifies the on-disk encoding of an alignment file.
type Format int

const (
	// SAM is the line-oriented text encoding.
	SAM Format = iota
	// BAM is the length-prefixed binary encoding.
	BAM
)

func (f Format) String() string {
	if f == BAM {
		return "bam"
	}
	return "sam"
}

// DetectFormat infers the format from the file extension. Anything that
// is not .bam is treated as text.
func DetectFormat(path string) Format {
	if strings.HasSuffix(strings.ToLower(path), ".bam") {
		return BAM
	}
	return SAM
}

// ParseFormat parses an explicit format discriminator.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "sam":
		return SAM, nil
	case "bam":
		return BAM, nil
	}
	return SAM, fmt.Errorf("unknown alignment format %q (want sam or bam)", s)
}

// Reference is one entry of a file's reference-sequence catalogue.
// Order is significant: binary records address references by their
// position in this catalogue, not by name.
type Reference struct {
	Name   string
	Length int32
}

// Block is a half-open byte range [Start, End) of an alignment file's
// record region. Block boundaries always fall on record boundaries, so
// a block can be decoded without looking at its neighbours.
type Block struct {
	Start uint64
	End   uint64
}

// Len returns the number of bytes covered by the block.
func (b Block) Len() uint64 { return b.End - b.Start }

// Record is one decoded alignment entry, reduced to the fields the
// surrounding tool consumes. Text records carry RefName and leave
// RefIndex at -1; binary records carry a zero-based RefIndex into the
// reference catalogue and leave RefName empty. Callers that want a
// uniform view resolve RefIndex against the catalogue.
type Record struct {
	ReadID   string
	RefName  string
	RefIndex int32
	Pos      int64
	MapQ     uint8
	CIGAR    string
}

// FormatError reports a malformed alignment file: a bad magic value, a
// truncated header, or a corrupt length prefix. It is always fatal.
type FormatError struct {
	Path   string
	Offset int64
	Msg    string
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("alignment format error at byte %d: %s", e.Offset, e.Msg)
	}
	return fmt.Sprintf("%s: alignment format error at byte %d: %s", e.Path, e.Offset, e.Msg)
}

// FormatErrf builds a *FormatError with printf-style context.
func FormatErrf(path string, offset int64, format string, a ...any) error {
	return &FormatError{Path: path, Offset: offset, Msg: fmt.Sprintf(format, a...)}
}
