// internal/writers/records.go
package writers

import (
	"fmt"
	"io"

	"samsplit-core/align"
	"samsplit/internal/output"
)

// StartRecordWriter spins up a writer goroutine for decoded records.
// text and jsonl stream line by line; json buffers the whole run to
// emit a single array. The error channel yields exactly one value after
// the input channel is closed and drained.
func StartRecordWriter(out io.Writer, format string, header bool, bufSize int) (chan<- align.Record, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan align.Record, bufSize)
	errCh := make(chan error, 1)

	go func() {
		var err error
		switch format {
		case "json":
			var buf []align.Record
			for r := range in {
				buf = append(buf, r)
			}
			err = output.WriteRecordsJSON(out, buf)

		case "jsonl":
			for r := range in {
				if err == nil {
					err = output.WriteRecordJSONL(out, r)
				}
			}

		case "text":
			if header {
				_, err = fmt.Fprintln(out, output.RecordHeader)
			}
			for r := range in {
				if err == nil {
					err = output.WriteRecordText(out, r)
				}
			}

		default:
			err = fmt.Errorf("unsupported output %q", format)
			// Keep draining so senders never block.
			for range in {
			}
		}
		errCh <- err
	}()

	return in, errCh
}
