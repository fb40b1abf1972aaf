// internal/output/text.go
package output

import (
	"fmt"
	"io"
	"strconv"

	"samsplit-core/align"
)

// RecordHeader is the column header for text/TSV record output.
const RecordHeader = "read_id\tref\tpos\tmapq\tcigar"

// RefLabel renders a record's reference: the name when known, the
// decimal index for unresolved binary records, "*" otherwise.
func RefLabel(r align.Record) string {
	if r.RefName != "" {
		return r.RefName
	}
	if r.RefIndex >= 0 {
		return strconv.Itoa(int(r.RefIndex))
	}
	return "*"
}

// WriteRecordText prints one TSV line for a record.
func WriteRecordText(w io.Writer, r align.Record) error {
	_, err := fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", r.ReadID, RefLabel(r), r.Pos, r.MapQ, r.CIGAR)
	return err
}

// WriteReferencesText prints the reference catalogue, one entry per line.
func WriteReferencesText(w io.Writer, refs []align.Reference, header bool) error {
	if header {
		if _, err := fmt.Fprintln(w, "name\tlength"); err != nil {
			return err
		}
	}
	for _, r := range refs {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", r.Name, r.Length); err != nil {
			return err
		}
	}
	return nil
}

// WriteBlocksText prints partition ranges, one `start end` pair per line.
func WriteBlocksText(w io.Writer, blocks []align.Block, header bool) error {
	if header {
		if _, err := fmt.Fprintln(w, "start\tend"); err != nil {
			return err
		}
	}
	for _, b := range blocks {
		if _, err := fmt.Fprintf(w, "%d\t%d\n", b.Start, b.End); err != nil {
			return err
		}
	}
	return nil
}
