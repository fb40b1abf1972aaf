// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"io"
	"sync"

	"samsplit-core/align"
	"samsplit-core/bam"
	"samsplit-core/blockio"
	"samsplit-core/sam"
)

// Config controls the block-decoding pipeline.
type Config struct {
	Threads     int  // number of worker goroutines (>=1)
	MapQ        int  // minimum mapping quality
	Mmap        bool // share one read-only mapping instead of per-block handles
	NumericRefs bool // keep binary reference indexes unresolved
}

// ForEachRecord decodes the given blocks of path concurrently and
// streams their records to visit in block order, so output is identical
// for any thread count. Every worker reads through its own handle (or
// its own view of a shared read-only mapping); blocks never share
// state. Binary reference indexes are resolved against refs unless
// cfg.NumericRefs is set. It returns the first error encountered
// (including context cancellation).
func ForEachRecord(
	ctx context.Context,
	cfg Config,
	path string,
	format align.Format,
	blocks []align.Block,
	refs []align.Reference,
	visit func(align.Record) error,
) error {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}

	var mapping *blockio.Mapping
	if cfg.Mmap {
		m, err := blockio.OpenMapping(path)
		if err != nil {
			return err
		}
		mapping = m
		defer mapping.Close()
	}

	type job struct {
		idx int
		blk align.Block
	}
	type result struct {
		idx  int
		recs []align.Record
		err  error
	}
	jobs := make(chan job, cfg.Threads*2)
	results := make(chan result, cfg.Threads*2)

	// Workers
	var wg sync.WaitGroup
	wg.Add(cfg.Threads)
	for w := 0; w < cfg.Threads; w++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-jobs:
					if !ok {
						return
					}
					recs, err := decodeBlock(cfg, mapping, path, format, j.blk, refs)
					select {
					case results <- result{idx: j.idx, recs: recs, err: err}:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	// Collector: reassemble per-block results in block order.
	var (
		cerr error
		cwg  sync.WaitGroup
	)
	cwg.Add(1)
	go func() {
		defer cwg.Done()
		pending := make(map[int]result, cfg.Threads)
		next := 0
		for res := range results {
			pending[res.idx] = res
			for {
				r, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if cerr != nil {
					continue
				}
				if r.err != nil {
					cerr = r.err
					continue
				}
				for _, rec := range r.recs {
					if err := visit(rec); err != nil && cerr == nil {
						cerr = err
						break
					}
				}
			}
		}
	}()

	// Feed work
feed:
	for i, b := range blocks {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- job{idx: i, blk: b}:
		}
	}

	close(jobs)
	wg.Wait()
	close(results)
	cwg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return cerr
}

// decodeBlock runs one block through the format's decoder, collecting
// its records so the collector can reorder whole blocks.
func decodeBlock(cfg Config, mapping *blockio.Mapping, path string, format align.Format, blk align.Block, refs []align.Reference) ([]align.Record, error) {
	var r io.Reader
	if mapping != nil {
		r = mapping.View(blk.Start, blk.End)
	} else {
		f, err := blockio.OpenBlock(path, blk.Start)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var recs []align.Record
	emit := func(rec align.Record) error {
		if format == align.BAM && !cfg.NumericRefs {
			if i := int(rec.RefIndex); i >= 0 && i < len(refs) {
				rec.RefName = refs[i].Name
			}
		}
		recs = append(recs, rec)
		return nil
	}
	var err error
	switch format {
	case align.BAM:
		err = bam.DecodeBlock(r, blk, cfg.MapQ, emit)
	default:
		err = sam.DecodeBlock(r, blk, cfg.MapQ, emit)
	}
	return recs, err
}
