// pkg/api/records_v1.go
package api

// RecordV1 is the stable JSON/JSONL schema for decoded alignment
// records. Keep fields, names, and types stable. Add new fields only
// with ",omitempty".
type RecordV1 struct {
	ReadID string `json:"read_id"`
	// Ref is the reference name when known. For binary inputs decoded
	// with numeric references it is the decimal reference index.
	Ref   string `json:"ref"`
	Pos   int64  `json:"pos"`
	MapQ  uint8  `json:"mapq"`
	CIGAR string `json:"cigar"`
}

// ReferenceV1 is the stable schema for one reference-catalogue entry.
type ReferenceV1 struct {
	Name   string `json:"name"`
	Length int32  `json:"length"`
}

// BlockV1 is the stable schema for one partition range, consumable as a
// task descriptor by external workers.
type BlockV1 struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}
