// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"

	"samsplit/internal/version"
)

// Options holds all CLI flags and arguments.
type Options struct {
	// Input
	Alignment string
	Format    string // auto | sam | bam

	// Partitioning / decoding
	Blocks        int
	MapQ          int
	RequireSorted bool

	// Performance
	Threads int
	Mmap    bool

	// Output
	Output      string // text | json | jsonl
	ListBlocks  bool
	References  bool
	NumericRefs bool
	Header      bool // true unless --no-header
	Quiet       bool

	Version bool
}

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: split SAM/BAM alignment files into record-aligned byte blocks and decode them

Version: %s

Usage of %s:
`, name, version.Version, name)
		fs.PrintDefaults()
	}
	return fs
}

// ParseArgs registers and parses all flags, returns an Options struct.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool

	// Input
	fs.StringVar(&opt.Alignment, "alignment", "", "SAM/BAM alignment file [*]")
	fs.StringVar(&opt.Format, "format", "auto", "input format: auto | sam | bam [auto]")

	// Partitioning / decoding
	fs.IntVar(&opt.Blocks, "blocks", 1, "number of byte blocks to partition the record region into [1]")
	fs.IntVar(&opt.MapQ, "mapq", 0, "minimum mapping quality; lower-quality records are skipped [0]")
	fs.BoolVar(&opt.RequireSorted, "require-sorted", false, "fail unless the header declares coordinate sorting [false]")

	// Performance
	fs.IntVar(&opt.Threads, "threads", 0, "number of worker threads decoding blocks (0 = all CPUs) [0]")
	fs.BoolVar(&opt.Mmap, "mmap", false, "decode from a shared read-only memory map instead of per-block file handles [false]")

	// Output
	fs.StringVar(&opt.Output, "output", "text", "output format: text | json | jsonl [text]")
	fs.BoolVar(&opt.ListBlocks, "list-blocks", false, "print the partition ranges instead of decoding [false]")
	fs.BoolVar(&opt.References, "references", false, "print the reference-sequence catalogue instead of decoding [false]")
	fs.BoolVar(&opt.NumericRefs, "numeric-refs", false, "keep binary reference indexes instead of resolving names [false]")
	noHeader := false
	fs.BoolVar(&noHeader, "no-header", false, "suppress header line in text/TSV [false]")
	fs.BoolVar(&opt.Quiet, "quiet", false, "suppress warnings [false]")

	fs.BoolVar(&opt.Version, "v", false, "print version and exit (shorthand) [false]")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit [false]")
	fs.BoolVar(&help, "h", false, "show this help message (shorthand) [false]")

	if err := fs.Parse(argv); err != nil {
		return opt, err
	}
	if help {
		fs.Usage()
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}
	opt.Header = !noHeader

	// Validation
	if opt.Alignment == "" {
		return opt, errors.New("--alignment is required")
	}
	if opt.Format != "auto" && opt.Format != "sam" && opt.Format != "bam" {
		return opt, fmt.Errorf("invalid --format %q", opt.Format)
	}
	if opt.Blocks < 1 {
		return opt, errors.New("--blocks must be ≥ 1")
	}
	if opt.MapQ < 0 || opt.MapQ > 255 {
		return opt, errors.New("--mapq must be in 0..255")
	}
	if opt.Threads < 0 {
		return opt, errors.New("--threads must be ≥ 0")
	}
	if opt.Output != "text" && opt.Output != "json" && opt.Output != "jsonl" {
		return opt, fmt.Errorf("invalid --output %q", opt.Output)
	}
	if opt.ListBlocks && opt.References {
		return opt, errors.New("--list-blocks conflicts with --references")
	}
	return opt, nil
}
