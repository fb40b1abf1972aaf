// core/blockio/open.go
package blockio

import (
	"compress/gzip"
	"io"
	"os"
	"strings"
)

// multiReadCloser closes multiple io.Closers when Close() is called.
type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Open returns a reader over the file at path, transparently unwrapping
// gzip, with "-" meaning stdin. Header readers accept this transport;
// block partitioning does not (byte offsets in a compressed stream do
// not address the raw file), so callers that partition must check
// Gzipped first.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	// Detect gzip by magic number (1F 8B) or by .gz suffix.
	var sig [2]byte
	n, _ := fh.Read(sig[:])
	_, _ = fh.Seek(0, io.SeekStart)
	if (n == 2 && sig[0] == 0x1f && sig[1] == 0x8b) || strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			_ = fh.Close()
			return nil, err
		}
		return &multiReadCloser{Reader: gr, closers: []io.Closer{gr, fh}}, nil
	}
	return fh, nil
}

// Gzipped reports whether the file at path begins with the gzip magic.
func Gzipped(path string) (bool, error) {
	fh, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer fh.Close()
	var sig [2]byte
	n, _ := fh.Read(sig[:])
	return n == 2 && sig[0] == 0x1f && sig[1] == 0x8b, nil
}

// OpenBlock opens an independent read handle positioned at start. Each
// concurrent block decoder takes its own handle; the file is never
// shared between decoders.
func OpenBlock(path string, start uint64) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(int64(start), io.SeekStart); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}
