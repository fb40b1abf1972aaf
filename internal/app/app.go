// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"runtime"

	"samsplit-core/align"
	"samsplit-core/bam"
	"samsplit-core/block"
	"samsplit-core/blockio"
	"samsplit-core/sam"
	"samsplit/internal/cli"
	"samsplit/internal/output"
	"samsplit/internal/pipeline"
	"samsplit/internal/version"
	"samsplit/internal/writers"
)

func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := cli.NewFlagSet("samsplit")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		// Register flags so usage can print them.
		_, _ = cli.ParseArgs(fs, []string{"-h"})
		fs.SetOutput(outw)
		fs.Usage()
		return flushCode(outw, stderr, 0)
	}

	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(outw)
			fs.Usage()
			return flushCode(outw, stderr, 0)
		}
		_, _ = fmt.Fprintln(stderr, err)
		fs.SetOutput(outw)
		fs.Usage()
		return flushCode(outw, stderr, 2)
	}

	if opts.Version {
		_, _ = fmt.Fprintf(outw, "samsplit version %s\n", version.Version)
		return flushCode(outw, stderr, 0)
	}

	format := align.DetectFormat(opts.Alignment)
	if opts.Format != "auto" {
		format, err = align.ParseFormat(opts.Format)
		if err != nil {
			_, _ = fmt.Fprintln(stderr, err)
			return 2
		}
	}

	refs, dataStart, sorted, err := readHeader(opts.Alignment, format)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 3
	}
	if format == align.SAM && !sorted {
		if opts.RequireSorted {
			_, _ = fmt.Fprintf(stderr, "error: %s does not declare coordinate sorting (@HD SO:coordinate)\n", opts.Alignment)
			return 2
		}
		if !opts.Quiet && !opts.References {
			_, _ = fmt.Fprintf(stderr, "warning: %s does not declare coordinate sorting; downstream consumers assume sorted input\n", opts.Alignment)
		}
	}

	if opts.References {
		if opts.Output == "text" {
			err = output.WriteReferencesText(outw, refs, opts.Header)
		} else {
			err = output.WriteReferencesJSON(outw, refs)
		}
		if err != nil && !writers.IsBrokenPipe(err) {
			_, _ = fmt.Fprintln(stderr, err)
			return 3
		}
		return flushCode(outw, stderr, 0)
	}

	// Partitioning addresses raw file bytes; a compressed stream has no
	// usable offsets.
	if gz, gerr := blockio.Gzipped(opts.Alignment); gerr != nil {
		_, _ = fmt.Fprintln(stderr, gerr)
		return 3
	} else if gz {
		_, _ = fmt.Fprintf(stderr, "error: %s is gzip-compressed; block partitioning needs the raw file\n", opts.Alignment)
		return 2
	}

	blocks, err := block.Blocks(opts.Alignment, format, uint64(dataStart), opts.Blocks)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 3
	}

	if opts.ListBlocks {
		if opts.Output == "text" {
			err = output.WriteBlocksText(outw, blocks, opts.Header)
		} else {
			err = output.WriteBlocksJSON(outw, blocks)
		}
		if err != nil && !writers.IsBrokenPipe(err) {
			_, _ = fmt.Fprintln(stderr, err)
			return 3
		}
		return flushCode(outw, stderr, 0)
	}

	thr := opts.Threads
	if thr <= 0 {
		thr = runtime.NumCPU()
	}

	inCh, writeErr := writers.StartRecordWriter(outw, opts.Output, opts.Header, thr*4)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	perr := pipeline.ForEachRecord(
		ctx,
		pipeline.Config{
			Threads:     thr,
			MapQ:        opts.MapQ,
			Mmap:        opts.Mmap,
			NumericRefs: opts.NumericRefs,
		},
		opts.Alignment,
		format,
		blocks,
		refs,
		func(r align.Record) error {
			select {
			case inCh <- r:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	)

	close(inCh)

	if werr := <-writeErr; writers.IsBrokenPipe(werr) {
		return 0
	} else if werr != nil {
		_, _ = fmt.Fprintln(stderr, werr)
		return 3
	}
	if e := outw.Flush(); writers.IsBrokenPipe(e) {
		return 0
	} else if e != nil {
		_, _ = fmt.Fprintln(stderr, e)
		return 3
	}

	if perr != nil {
		if errors.Is(perr, context.Canceled) {
			return 130
		}
		_, _ = fmt.Fprintln(stderr, perr)
		return 3
	}
	return 0
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

// readHeader enumerates the reference catalogue and locates the record
// region for either format. The header transport may be gzip-wrapped;
// the returned offset then addresses the decompressed stream and only
// the catalogue is meaningful.
func readHeader(path string, format align.Format) (refs []align.Reference, dataStart int64, sorted bool, err error) {
	rc, err := blockio.Open(path)
	if err != nil {
		return nil, 0, false, err
	}
	defer rc.Close()

	emit := func(r align.Reference) error {
		refs = append(refs, r)
		return nil
	}
	switch format {
	case align.BAM:
		info, herr := bam.ReadHeader(rc, emit)
		if herr != nil {
			return nil, 0, false, herr
		}
		return refs, info.DataStart, false, nil
	default:
		info, herr := sam.ReadHeader(rc, emit)
		if herr != nil {
			return nil, 0, false, herr
		}
		return refs, info.DataStart, info.SortedByCoordinate, nil
	}
}

func flushCode(outw *bufio.Writer, stderr io.Writer, code int) int {
	if err := outw.Flush(); writers.IsBrokenPipe(err) {
		return 0
	} else if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 3
	}
	return code
}
