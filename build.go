package seqidx

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/seqidx/bitcount"
	"github.com/hupe1980/seqidx/internal/bwt"
	"github.com/hupe1980/seqidx/internal/conv"
	"github.com/hupe1980/seqidx/internal/fs"
	"github.com/hupe1980/seqidx/internal/hash"
	"github.com/hupe1980/seqidx/internal/mmap"
)

// BuildStats summarizes a finished build.
type BuildStats struct {
	Sequences   uint64
	Entries     uint64
	Checkpoints uint64
	Bytes       uint64
	Duration    time.Duration
}

// Build writes an index over seqs to path. The ordinal of a sequence is its
// position in seqs. The file is written to a temporary name and renamed
// into place once complete.
func Build(ctx context.Context, path string, seqs []string, optFns ...BuildOption) (*BuildStats, error) {
	o := applyBuildOptions(optFns)

	start := time.Now()
	stats, err := build(ctx, path, seqs, o)
	if err == nil {
		stats.Duration = time.Since(start)
	}
	o.logger.LogBuild(ctx, path, stats, err)
	return stats, err
}

// rowChunk is the granularity at which fill workers check for cancellation.
const rowChunk = 1 << 16

func build(ctx context.Context, path string, seqs []string, o buildOptions) (*BuildStats, error) {
	if len(seqs) == 0 {
		return nil, ErrNoSequences
	}
	text, err := bwt.NewText(seqs)
	switch {
	case errors.Is(err, bwt.ErrInvalidSymbol):
		return nil, fmt.Errorf("%w: %w", ErrInvalidBase, err)
	case errors.Is(err, bwt.ErrTooLarge):
		return nil, fmt.Errorf("%w: %w", ErrTooLarge, err)
	case err != nil:
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tr := bwt.New(text)
	n := tr.Len()

	h := Header{
		BaseStart:  tr.BaseStart(),
		NEntries:   uint64(n),
		Version:    FormatVersion,
		NSequences: uint64(len(seqs)),
	}
	for i := range n {
		if tr.IsCheckpoint(i, o.interval) {
			h.NCheckpoints++
		}
	}

	l, err := newFileLayout(&h)
	if err != nil {
		return nil, err
	}
	dataEnd := l.dataEnd
	if o.seqStarts {
		h.SeqStartsOffset = l.dataEnd
		dataEnd += l.vectorBytes
	}
	size, err := conv.Uint64ToInt(dataEnd)
	if err != nil {
		return nil, err
	}

	tmp, err := o.fs.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("seqidx: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = o.fs.Remove(tmpPath)
		}
	}()
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	m, err := mmap.Create(tmpPath, size)
	if err != nil {
		return nil, fmt.Errorf("seqidx: map %s: %w", tmpPath, err)
	}
	if err := writeData(ctx, m, &h, l, tr, text, o); err != nil {
		_ = m.Close()
		return nil, err
	}
	if err := m.Close(); err != nil {
		return nil, err
	}

	blob, err := encodeHeader(o.codec, &h)
	if err != nil {
		return nil, err
	}
	if err := appendFile(o.fs, tmpPath, blob); err != nil {
		return nil, err
	}
	if err := o.fs.Rename(tmpPath, path); err != nil {
		return nil, err
	}
	committed = true

	return &BuildStats{
		Sequences:   h.NSequences,
		Entries:     h.NEntries,
		Checkpoints: h.NCheckpoints,
		Bytes:       dataEnd + uint64(len(blob)),
	}, nil
}

// writeData fills the mapped data region and records its checksum in h.
func writeData(ctx context.Context, m *mmap.Mapping, h *Header, l fileLayout, tr *bwt.Transform, text *bwt.Text, o buildOptions) error {
	prefix, err := section(m, 0, prefixSize)
	if err != nil {
		return err
	}
	copy(prefix, magic[:])
	binary.LittleEndian.PutUint64(prefix[len(magic):], uint64(m.Size()))

	w := &writer{m: m, tr: tr, interval: o.interval, workers: o.workers}
	if err := w.fill(ctx, l); err != nil {
		return err
	}
	if h.SeqStartsOffset != 0 {
		buf, err := section(m, h.SeqStartsOffset, l.vectorBytes)
		if err != nil {
			return err
		}
		if err := writeSeqStarts(buf, h.NEntries, text.Starts); err != nil {
			return err
		}
	}

	body, err := section(m, prefixSize, uint64(m.Size())-prefixSize)
	if err != nil {
		return err
	}
	h.Checksum = hash.CRC32C(body)
	if err := m.Flush(); err != nil {
		return fmt.Errorf("seqidx: flush: %w", err)
	}
	return nil
}

// writer fills the bit-vectors and checkpoint values of one build.
type writer struct {
	m        *mmap.Mapping
	tr       *bwt.Transform
	interval uint32
	workers  int
}

func (w *writer) builderAt(off, size uint64) (*bitcount.Builder, error) {
	buf, err := section(w.m, off, size)
	if err != nil {
		return nil, err
	}
	return bitcount.NewBuilderOver(buf, uint64(w.tr.Len()))
}

func (w *writer) fill(ctx context.Context, l fileLayout) error {
	var bases [NumBases]*bitcount.Builder
	for b := range NumBases {
		bb, err := w.builderAt(l.bases[b], l.vectorBytes)
		if err != nil {
			return err
		}
		bases[b] = bb
	}
	ckb, err := w.builderAt(l.checkpoints, l.vectorBytes)
	if err != nil {
		return err
	}

	err = w.parallel(ctx, func(i int) {
		if sym := w.tr.Symbol(i); sym != bwt.Terminator {
			bases[sym-1].Swap(uint64(i), true)
		}
		if w.tr.IsCheckpoint(i, w.interval) {
			ckb.Swap(uint64(i), true)
		}
	})
	if err != nil {
		return err
	}

	for _, bb := range bases {
		bb.Finalize()
	}
	ck := ckb.Finalize()

	buf, err := section(w.m, l.values, l.valuesEnd-l.values)
	if err != nil {
		return err
	}
	values := castUint32(buf, int(ck.Count()))
	return w.parallel(ctx, func(i int) {
		if ck.Get(uint64(i)) {
			values[ck.Rank(uint64(i))] = w.tr.Position(i)
		}
	})
}

// parallel calls fn for every row, splitting rows into word-aligned
// stripes across the workers.
func (w *writer) parallel(ctx context.Context, fn func(i int)) error {
	n := w.tr.Len()
	stripe := (n + w.workers - 1) / w.workers
	stripe = (stripe + 63) &^ 63

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < n; lo += stripe {
		hi := min(lo+stripe, n)
		g.Go(func() error {
			for start := lo; start < hi; start += rowChunk {
				if err := gctx.Err(); err != nil {
					return err
				}
				for i := start; i < min(start+rowChunk, hi); i++ {
					fn(i)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func writeSeqStarts(buf []byte, n uint64, starts []uint32) error {
	sb, err := bitcount.NewBuilderOver(buf, n)
	if err != nil {
		return err
	}
	for _, p := range starts {
		sb.Set(uint64(p), true)
	}
	sb.Finalize()
	return nil
}

func appendFile(fsys fs.FileSystem, path string, blob []byte) error {
	f, err := fsys.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return err
	}
	if _, err := f.Write(blob); err != nil {
		f.Close()
		return fmt.Errorf("seqidx: write header: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
