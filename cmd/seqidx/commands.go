package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/hupe1980/seqidx"
	"github.com/hupe1980/seqidx/codec"
	"github.com/hupe1980/seqidx/internal/seqio"
)

func buildFlags(fs *pflag.FlagSet) {
	fs.StringP("output", "o", "", "index file to write")
	fs.Uint32("interval", 32, "checkpoint sampling interval")
	fs.Int("workers", 0, "fill workers (0 = GOMAXPROCS)")
	fs.Bool("dedup", false, "drop repeated sequences")
	fs.Bool("skip-invalid", false, "drop sequences with letters outside ACGT")
}

func runBuild(ctx context.Context, cfg *Config, args []string, out io.Writer) error {
	if cfg.Output == "" {
		return errors.New("build: --output is required")
	}
	if len(args) == 0 {
		return errors.New("build: no input files")
	}

	seqs, err := seqio.ReadFiles(args...)
	if err != nil {
		return err
	}
	read := len(seqs)
	if cfg.SkipInvalid {
		kept := seqs[:0]
		for _, s := range seqs {
			if seqio.IsDNA(s) {
				kept = append(kept, s)
			}
		}
		seqs = kept
	}
	if cfg.Dedup {
		seqs = seqio.Dedup(seqs)
	}

	logger, err := cfg.logger()
	if err != nil {
		return err
	}
	cd, err := cfg.codec()
	if err != nil {
		return err
	}
	opts := []seqidx.BuildOption{
		seqidx.WithCheckpointInterval(cfg.Interval),
		seqidx.WithBuildLogger(logger),
		seqidx.WithBuildCodec(cd),
	}
	if cfg.Workers > 0 {
		opts = append(opts, seqidx.WithBuildWorkers(cfg.Workers))
	}

	stats, err := seqidx.Build(ctx, cfg.Output, seqs, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "indexed %s of %s sequences (%s rows, %s checkpoints) into %s, %s in %s\n",
		humanize.Comma(int64(stats.Sequences)), humanize.Comma(int64(read)),
		humanize.Comma(int64(stats.Entries)), humanize.Comma(int64(stats.Checkpoints)),
		cfg.Output, humanize.IBytes(stats.Bytes), stats.Duration.Round(1e6))
	return nil
}

func findFlags(fs *pflag.FlagSet) {
	fs.Int("limit", 10, "occurrences to print per pattern (0 = none, -1 = all)")
	fs.Bool("select-index", false, "build select indexes at open")
}

func runFind(_ context.Context, cfg *Config, args []string, out io.Writer) error {
	if len(args) < 2 {
		return errors.New("find: need an index and at least one pattern")
	}
	opts, err := cfg.openOptions()
	if err != nil {
		return err
	}
	idx, err := seqidx.Open(args[0], opts...)
	if err != nil {
		return err
	}
	defer idx.Close()

	for _, p := range args[1:] {
		r, err := idx.FullRange().FindString(p)
		if err != nil {
			return fmt.Errorf("pattern %s: %w", p, err)
		}
		fmt.Fprintf(out, "%s\toccurrences=%d\tsequences=%d\n", p, r.Len(), r.Matches().GetCardinality())

		n := 0
		for _, occ := range r.Occurrences() {
			if cfg.Limit >= 0 && n >= cfg.Limit {
				break
			}
			fmt.Fprintf(out, "  seq=%d\toffset=%d\n", occ.Sequence, occ.Offset)
			n++
		}
	}
	return nil
}

func statsFlags(fs *pflag.FlagSet) {
	fs.Bool("json", false, "print the header as JSON")
}

func runStats(_ context.Context, cfg *Config, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("stats: need exactly one index")
	}
	opts, err := cfg.openOptions()
	if err != nil {
		return err
	}
	idx, err := seqidx.Open(args[0], opts...)
	if err != nil {
		return err
	}
	defer idx.Close()

	h := idx.Header()
	if cfg.JSON {
		data, err := codec.JSON{}.Marshal(&h)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "file        %s (%s)\n", idx.Path(), humanize.IBytes(uint64(idx.Size())))
	fmt.Fprintf(out, "version     %d\n", h.Version)
	fmt.Fprintf(out, "codec       %s\n", idx.Codec())
	fmt.Fprintf(out, "sequences   %s\n", humanize.Comma(int64(h.NSequences)))
	fmt.Fprintf(out, "rows        %s\n", humanize.Comma(int64(h.NEntries)))
	fmt.Fprintf(out, "checkpoints %s\n", humanize.Comma(int64(h.NCheckpoints)))
	for b := range seqidx.Base(seqidx.NumBases) {
		fmt.Fprintf(out, "base %v      %s\n", b, humanize.Comma(int64(idx.BaseVector(b).Count())))
	}
	if h.NEntries > 0 {
		fmt.Fprintf(out, "bits/row    %.2f\n", float64(idx.Size())*8/float64(h.NEntries))
	}
	fmt.Fprintf(out, "seq table   %t\n", idx.HasSequenceTable())
	return nil
}

func runVerify(ctx context.Context, cfg *Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("verify: need at least one index")
	}
	opts, err := cfg.openOptions()
	if err != nil {
		return err
	}
	for _, path := range args {
		idx, err := seqidx.Open(path, opts...)
		if err != nil {
			return err
		}
		err = idx.Verify(ctx)
		idx.Close()
		if err != nil {
			return err
		}
		if idx.Header().Checksum == 0 {
			fmt.Fprintf(out, "%s: ok (no checksum)\n", path)
			continue
		}
		fmt.Fprintf(out, "%s: ok\n", path)
	}
	return nil
}
