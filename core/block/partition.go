// core/block/partition.go
package block

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"samsplit-core/align"
)

// Partition tiles the record region [dataStart, file size) of the file
// at path into at most n contiguous blocks and emits them in order.
// Each candidate boundary (dataStart plus multiples of the ideal block
// size, ceil((size-dataStart)/n)) is snapped forward to the next record
// boundary: the end of the current line for text files, the end of the
// current length-prefixed record for binary files. Boundary snapping
// only rounds forward, so fewer than n blocks may be emitted, never
// more, and the final block is clamped to the file size. A forward scan
// that runs off the end of the file (including one misled by a corrupt
// binary length prefix) clamps rather than fails; it can only affect
// the final block.
//
// The blocks exactly cover the record region with no overlap, and no
// record's bytes cross a block boundary, so disjoint blocks can be
// decoded concurrently by independent readers. Downstream consumers
// additionally assume the file is sorted by coordinate; Partition does
// not check that.
//
// Partition opens its own read handle and releases it on every path.
func Partition(path string, format align.Format, dataStart uint64, n int, emit func(align.Block) error) error {
	if n < 1 {
		return fmt.Errorf("block count must be at least 1, got %d", n)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return err
	}
	size := uint64(fi.Size())
	if dataStart > size {
		return align.FormatErrf(path, int64(size), "record region starts at %d, past the %d-byte file", dataStart, size)
	}
	if dataStart == size {
		return nil
	}

	blockSize := (size - dataStart + uint64(n) - 1) / uint64(n)
	start := dataStart
	for start < size {
		end := size
		if candidate := start + blockSize; candidate < size {
			switch format {
			case align.BAM:
				end, err = nextRecordBoundary(f, start, candidate, size)
			default:
				end, err = nextLineBoundary(f, candidate, size)
			}
			if err != nil {
				return err
			}
		}
		if err := emit(align.Block{Start: start, End: end}); err != nil {
			return err
		}
		start = end
	}
	return nil
}

// Blocks is a convenience wrapper collecting the partition into a slice.
func Blocks(path string, format align.Format, dataStart uint64, n int) ([]align.Block, error) {
	var out []align.Block
	err := Partition(path, format, dataStart, n, func(b align.Block) error {
		out = append(out, b)
		return nil
	})
	return out, err
}

// nextLineBoundary returns the offset just past the newline that
// terminates the line containing candidate, or size when the file ends
// first.
func nextLineBoundary(f *os.File, candidate, size uint64) (uint64, error) {
	if _, err := f.Seek(int64(candidate), io.SeekStart); err != nil {
		return 0, err
	}
	line, err := bufio.NewReader(f).ReadString('\n')
	if err == io.EOF {
		return size, nil
	}
	if err != nil {
		return 0, err
	}
	return candidate + uint64(len(line)), nil
}

// nextRecordBoundary walks length-prefixed records from start (a known
// record boundary) until the cursor reaches candidate, and returns the
// cursor. A prefix that is truncated, non-positive, or points past the
// end of the file means no further boundary exists; the scan clamps to
// size.
func nextRecordBoundary(f *os.File, start, candidate, size uint64) (uint64, error) {
	var buf [4]byte
	cur := start
	if _, err := f.Seek(int64(cur), io.SeekStart); err != nil {
		return 0, err
	}
	for cur < candidate {
		if _, err := io.ReadFull(f, buf[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return size, nil
			}
			return 0, err
		}
		bodyLen := int32(binary.LittleEndian.Uint32(buf[:]))
		if bodyLen <= 0 {
			return size, nil
		}
		cur += 4 + uint64(bodyLen)
		if cur > size {
			return size, nil
		}
		if _, err := f.Seek(int64(bodyLen), io.SeekCurrent); err != nil {
			return 0, err
		}
	}
	return cur, nil
}
