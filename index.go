package seqidx

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/hupe1980/seqidx/bitcount"
	"github.com/hupe1980/seqidx/internal/conv"
	"github.com/hupe1980/seqidx/internal/hash"
	"github.com/hupe1980/seqidx/internal/mmap"
)

// Index is an opened, immutable sequence index backed by a memory-mapped
// file. All query methods are safe for concurrent use. The index and every
// Range derived from it are valid until Close.
type Index struct {
	path      string
	m         *mmap.Mapping
	header    Header
	headerOff uint64
	codec     string
	access    AccessPattern

	bases       [NumBases]*bitcount.Vector
	checkpoints *bitcount.Vector
	values      []uint32
	seqStarts   *bitcount.Vector // nil if the file has no sequence table

	metrics MetricsCollector
	logger  *Logger
	closed  atomic.Bool
}

// Open maps the index file at path and validates its structure.
//
// Format problems are reported as *FormatError; mapping failures are
// returned as the underlying I/O error.
func Open(path string, optFns ...Option) (*Index, error) {
	o := applyOptions(optFns)

	start := time.Now()
	idx, err := open(path, o)
	d := time.Since(start)

	o.metricsCollector.RecordOpen(d, err)
	if err != nil {
		o.logger.LogOpen(path, nil, d, err)
		return nil, err
	}
	o.logger.LogOpen(path, &idx.header, d, nil)
	return idx, nil
}

func open(path string, o options) (*Index, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seqidx: open %s: %w", path, err)
	}

	idx, err := load(m, o)
	if err != nil {
		_ = m.Close()
		return nil, formatError(path, err)
	}
	idx.path = path

	if o.verify {
		if err := idx.verify(context.Background()); err != nil {
			_ = m.Close()
			return nil, err
		}
	}

	// The hint is advisory.
	_ = m.Advise(o.access.mmap())
	return idx, nil
}

// load slices the mapping into the index sections.
func load(m *mmap.Mapping, o options) (*Index, error) {
	data := m.Bytes()
	size := uint64(len(data))
	if size < prefixSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, size)
	}
	if !bytes.Equal(data[:len(magic)], magic[:]) {
		return nil, ErrBadMagic
	}

	hdrOff := binary.LittleEndian.Uint64(data[len(magic):prefixSize])
	if hdrOff < prefixSize || hdrOff >= size {
		return nil, fmt.Errorf("%w: header offset %d in %d bytes", ErrTruncated, hdrOff, size)
	}

	h, cd, err := decodeHeader(data[hdrOff:], o.codec)
	if err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	l, err := newFileLayout(&h)
	if err != nil {
		return nil, err
	}
	if l.valuesEnd > hdrOff {
		return nil, fmt.Errorf("%w: data needs %d bytes, header at %d", ErrTruncated, l.valuesEnd, hdrOff)
	}

	idx := &Index{
		m:         m,
		header:    h,
		headerOff: hdrOff,
		codec:     cd.Name(),
		access:    o.access,
		metrics:   o.metricsCollector,
		logger:    o.logger,
	}

	for b := range NumBases {
		if idx.bases[b], err = vectorAt(m, l.bases[b], l.vectorBytes, h.NEntries); err != nil {
			return nil, fmt.Errorf("base %v: %w", Base(b), err)
		}
	}
	if idx.checkpoints, err = vectorAt(m, l.checkpoints, l.vectorBytes, h.NEntries); err != nil {
		return nil, fmt.Errorf("checkpoints: %w", err)
	}

	n, err := conv.Uint64ToInt(h.NCheckpoints)
	if err != nil {
		return nil, err
	}
	values, err := section(m, l.values, l.valuesEnd-l.values)
	if err != nil {
		return nil, err
	}
	idx.values = castUint32(values, n)
	for i, v := range idx.values {
		if uint64(v) >= h.NEntries {
			return nil, fmt.Errorf("%w: checkpoint %d holds position %d of %d", ErrCorrupt, i, v, h.NEntries)
		}
	}

	if h.SeqStartsOffset != 0 {
		if h.SeqStartsOffset < l.valuesEnd || h.SeqStartsOffset > hdrOff ||
			hdrOff-h.SeqStartsOffset < l.vectorBytes {
			return nil, fmt.Errorf("%w: sequence table at %d", ErrTruncated, h.SeqStartsOffset)
		}
		if idx.seqStarts, err = vectorAt(m, h.SeqStartsOffset, l.vectorBytes, h.NEntries); err != nil {
			return nil, fmt.Errorf("sequence table: %w", err)
		}
	}

	if err := idx.crossCheck(); err != nil {
		return nil, err
	}

	if o.selectIndex {
		for _, v := range idx.vectors() {
			v.BuildSelectIndex(o.selectOpts...)
		}
	}
	return idx, nil
}

// section returns bytes [off, off+size) of the mapping.
func section(m *mmap.Mapping, off, size uint64) ([]byte, error) {
	start, err := conv.Uint64ToInt(off)
	if err != nil {
		return nil, err
	}
	n, err := conv.Uint64ToInt(size)
	if err != nil {
		return nil, err
	}
	r, err := m.Region(start, n)
	if err != nil {
		return nil, fmt.Errorf("section [%d,+%d): %w", off, size, err)
	}
	return r.Bytes(), nil
}

func vectorAt(m *mmap.Mapping, off, size, nBits uint64) (*bitcount.Vector, error) {
	buf, err := section(m, off, size)
	if err != nil {
		return nil, err
	}
	return bitcount.View(buf, nBits)
}

// castUint32 reinterprets b as n host-order uint32 values without copying.
// b is 8-byte aligned because every section before it is.
func castUint32(b []byte, n int) []uint32 {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), n)
}

// crossCheck compares the vectors with the header and with each other.
func (idx *Index) crossCheck() error {
	h := &idx.header
	for b := range NumBases {
		end := h.NEntries
		if b+1 < NumBases {
			end = h.BaseStart[b+1]
		}
		if got, want := idx.bases[b].Count(), end-h.BaseStart[b]; got != want {
			return fmt.Errorf("%w: %d rows hold %v, header implies %d", ErrCorrupt, got, Base(b), want)
		}
	}
	if err := idx.checkRows(); err != nil {
		return err
	}
	if got := idx.checkpoints.Count(); got != h.NCheckpoints {
		return fmt.Errorf("%w: %d checkpoint rows, header has %d", ErrCorrupt, got, h.NCheckpoints)
	}
	if idx.seqStarts != nil {
		if idx.seqStarts.Count() != h.NSequences {
			return fmt.Errorf("%w: %d sequence starts, header has %d", ErrCorrupt, idx.seqStarts.Count(), h.NSequences)
		}
		if !idx.seqStarts.Get(0) {
			return fmt.Errorf("%w: first sequence does not start at 0", ErrCorrupt)
		}
	}
	return nil
}

// checkRows verifies, a word at a time, that every row holds at most one
// base and that rows without a base are checkpointed, so that every
// checkpoint walk can take its first step.
func (idx *Index) checkRows() error {
	n := idx.header.NEntries
	nWords := (n + 63) / 64
	for w := range nWords {
		var seen, dup uint64
		for _, v := range idx.bases {
			x := v.Word(w)
			dup |= seen & x
			seen |= x
		}
		if dup != 0 {
			return fmt.Errorf("%w: rows near %d hold more than one base", ErrCorrupt, w*64)
		}
		full := ^uint64(0)
		if w == nWords-1 && n%64 != 0 {
			full = 1<<(n%64) - 1
		}
		if seen|idx.checkpoints.Word(w) != full {
			return fmt.Errorf("%w: rows near %d have neither base nor checkpoint", ErrCorrupt, w*64)
		}
	}
	return nil
}

func (idx *Index) vectors() []*bitcount.Vector {
	vs := append([]*bitcount.Vector{}, idx.bases[:]...)
	vs = append(vs, idx.checkpoints)
	if idx.seqStarts != nil {
		vs = append(vs, idx.seqStarts)
	}
	return vs
}

// Close unmaps the file. It is idempotent. No Index or Range method may be
// called afterwards.
func (idx *Index) Close() error {
	if idx.closed.Swap(true) {
		return nil
	}
	return idx.m.Close()
}

// Path returns the file the index was opened from.
func (idx *Index) Path() string { return idx.path }

// Header returns a copy of the decoded header.
func (idx *Index) Header() Header { return idx.header }

// Codec returns the name of the codec the header was written with.
func (idx *Index) Codec() string { return idx.codec }

// Len returns the number of rows.
func (idx *Index) Len() uint64 { return idx.header.NEntries }

// Size returns the mapped file size in bytes.
func (idx *Index) Size() int { return idx.m.Size() }

// FullRange returns the range of all rows.
func (idx *Index) FullRange() Range {
	return Range{idx: idx, begin: 0, end: idx.header.NEntries}
}

// RowBase returns the base held by row i. ok is false for sequence-start
// rows, which hold the terminator instead of a base.
func (idx *Index) RowBase(i uint64) (Base, bool) {
	for b := range Base(NumBases) {
		if idx.bases[b].Get(i) {
			return b, true
		}
	}
	return 0, false
}

// BaseVector returns the bit-vector marking the rows that hold b.
func (idx *Index) BaseVector(b Base) *bitcount.Vector { return idx.bases[b] }

// CheckpointVector returns the bit-vector marking sampled rows.
func (idx *Index) CheckpointVector() *bitcount.Vector { return idx.checkpoints }

// HasSequenceTable reports whether the file carries sequence boundaries.
func (idx *Index) HasSequenceTable() bool { return idx.seqStarts != nil }

// NumSequences returns the number of indexed sequences, or 0 if unknown.
func (idx *Index) NumSequences() uint64 { return idx.header.NSequences }

// Sequence resolves a text position into the ordinal of the sequence that
// contains it and the offset within that sequence. The terminator after a
// sequence resolves to offset len(sequence). Without a sequence table the
// position is returned unchanged with offset 0.
func (idx *Index) Sequence(pos uint32) (ordinal, offset uint32) {
	if idx.seqStarts == nil {
		return pos, 0
	}
	p := uint64(pos)
	if p >= idx.header.NEntries {
		panic(fmt.Sprintf("seqidx: text position %d out of range [0,%d)", p, idx.header.NEntries))
	}
	// Both values are below NEntries, which Validate bounds by 2^32.
	ord := idx.seqStarts.Rank(p+1) - 1
	return uint32(ord), uint32(p - idx.seqStarts.Select(ord))
}

// Verify recomputes the checksum of the data region and compares it with
// the header. Files written without a checksum pass unchecked.
func (idx *Index) Verify(ctx context.Context) error {
	if idx.closed.Load() {
		return ErrClosed
	}
	checked := idx.header.Checksum != 0
	err := idx.verify(ctx)
	idx.logger.LogVerify(ctx, idx.path, checked, err)
	return err
}

const verifyChunk = 1 << 20

func (idx *Index) verify(ctx context.Context) error {
	if idx.header.Checksum == 0 {
		return nil
	}
	r, err := idx.m.Region(prefixSize, int(idx.headerOff)-prefixSize)
	if err != nil {
		return err
	}
	_ = r.Advise(mmap.AccessSequential)
	defer func() { _ = r.Advise(idx.access.mmap()) }()

	data := r.Bytes()
	var crc uint32
	for len(data) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := min(len(data), verifyChunk)
		crc = hash.UpdateCRC32C(crc, data[:n])
		data = data[n:]
	}
	if crc != idx.header.Checksum {
		return &FormatError{
			Path: idx.path,
			Err:  fmt.Errorf("%w: have %08x, header has %08x", ErrChecksumMismatch, crc, idx.header.Checksum),
		}
	}
	return nil
}
