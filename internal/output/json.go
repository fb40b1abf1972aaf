// internal/output/json.go
package output

import (
	"io"

	"samsplit-core/align"
	"samsplit/internal/jsonutil"
	"samsplit/pkg/api"
)

// ToAPIRecord converts a decoded record to the stable wire schema (v1).
func ToAPIRecord(r align.Record) api.RecordV1 {
	return api.RecordV1{
		ReadID: r.ReadID,
		Ref:    RefLabel(r),
		Pos:    r.Pos,
		MapQ:   r.MapQ,
		CIGAR:  r.CIGAR,
	}
}

// WriteRecordsJSON writes a single JSON array of v1 records.
func WriteRecordsJSON(w io.Writer, list []align.Record) error {
	out := make([]api.RecordV1, 0, len(list))
	for _, r := range list {
		out = append(out, ToAPIRecord(r))
	}
	return jsonutil.EncodePretty(w, out)
}

// WriteRecordJSONL writes one record as a JSONL line.
func WriteRecordJSONL(w io.Writer, r align.Record) error {
	return jsonutil.EncodeLine(w, ToAPIRecord(r))
}

// WriteReferencesJSON writes the reference catalogue as a JSON array.
func WriteReferencesJSON(w io.Writer, refs []align.Reference) error {
	out := make([]api.ReferenceV1, 0, len(refs))
	for _, r := range refs {
		out = append(out, api.ReferenceV1{Name: r.Name, Length: r.Length})
	}
	return jsonutil.EncodePretty(w, out)
}

// WriteBlocksJSON writes partition ranges as a JSON array of task
// descriptors.
func WriteBlocksJSON(w io.Writer, blocks []align.Block) error {
	out := make([]api.BlockV1, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, api.BlockV1{Start: b.Start, End: b.End})
	}
	return jsonutil.EncodePretty(w, out)
}
