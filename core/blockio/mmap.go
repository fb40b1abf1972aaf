// core/blockio/mmap.go
package blockio

import (
	"bytes"
	"os"

	"github.com/edsrzf/mmap-go"
)

// Mapping is a read-only mmap of an alignment file. Concurrent block
// decoders take independent View readers over disjoint byte ranges of
// the same mapping, which keeps the one-handle-per-decoder contract
// without a syscall per record.
type Mapping struct {
	f    *os.File
	data mmap.MMap
}

// OpenMapping maps the file at path read-only.
func OpenMapping(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if fi.Size() == 0 {
		// Mapping zero bytes is not portable; an empty file has no
		// record region anyway.
		return &Mapping{f: f}, nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Mapping{f: f, data: m}, nil
}

// Size returns the mapped file size in bytes.
func (m *Mapping) Size() uint64 { return uint64(len(m.data)) }

// View returns an independent reader over [start, end), clamped to the
// mapping. The bytes are valid until Close; callers must not modify
// them.
func (m *Mapping) View(start, end uint64) *bytes.Reader {
	if end > uint64(len(m.data)) {
		end = uint64(len(m.data))
	}
	if start > end {
		start = end
	}
	return bytes.NewReader(m.data[start:end])
}

// Close unmaps the file and closes it.
func (m *Mapping) Close() error {
	if m.data != nil {
		if err := m.data.Unmap(); err != nil {
			return err
		}
		m.data = nil
	}
	if m.f != nil {
		err := m.f.Close()
		m.f = nil
		return err
	}
	return nil
}
