package seqidx

import (
	"fmt"
	"iter"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

// Range is a half-open interval [Begin, End) of index rows whose suffixes
// all start with the pattern searched so far. It is a small value type;
// narrowing returns a new Range. An empty range stays empty under further
// narrowing.
type Range struct {
	idx        *Index
	begin, end uint64
}

// Begin returns the first row of the range.
func (r Range) Begin() uint64 { return r.begin }

// End returns one past the last row of the range.
func (r Range) End() uint64 { return r.end }

// Len returns the number of rows, which is the number of occurrences of the
// pattern.
func (r Range) Len() uint64 { return r.end - r.begin }

// Empty reports whether no rows match.
func (r Range) Empty() bool { return r.begin == r.end }

// PushFront extends the matched pattern by one base on the left.
func (r Range) PushFront(b Base) Range {
	if r.begin == r.end {
		return r
	}
	if b >= NumBases {
		panic(fmt.Sprintf("seqidx: invalid base %d", b))
	}
	c := r.idx.header.BaseStart[b]
	v := r.idx.bases[b]
	return Range{
		idx:   r.idx,
		begin: c + v.Rank(r.begin),
		end:   c + v.Rank(r.end),
	}
}

// Find narrows the range to the rows that match pattern. The pattern is
// consumed back to front; the search stops as soon as the range is empty.
func (r Range) Find(pattern []Base) Range {
	start := time.Now()
	for i := len(pattern) - 1; i >= 0 && !r.Empty(); i-- {
		r = r.PushFront(pattern[i])
	}
	r.idx.metrics.RecordFind(len(pattern), r.Len(), time.Since(start))
	return r
}

// FindString is Find for a pattern written as base letters.
func (r Range) FindString(pattern string) (Range, error) {
	p, err := ParsePattern(pattern)
	if err != nil {
		return Range{}, err
	}
	return r.Find(p), nil
}

// Locate returns the text position of row Begin()+offset by walking LF
// steps back to the nearest checkpoint.
func (r Range) Locate(offset uint64) uint32 {
	if offset >= r.Len() {
		panic(fmt.Sprintf("seqidx: offset %d out of range [0,%d)", offset, r.Len()))
	}
	idx := r.idx
	e := r.begin + offset
	var dist uint32
	for !idx.checkpoints.Get(e) {
		b, ok := idx.RowBase(e)
		if !ok {
			panic(fmt.Sprintf("seqidx: row %d has no base and no checkpoint", e))
		}
		e = idx.header.BaseStart[b] + idx.bases[b].Rank(e)
		dist++
		if uint64(dist) > idx.header.NEntries {
			panic("seqidx: checkpoint walk does not terminate")
		}
	}
	idx.metrics.RecordLocate(int(dist))
	return idx.values[idx.checkpoints.Rank(e)] + dist
}

// GetMatch returns the ordinal of the input sequence that produced row
// Begin()+offset. For files without a sequence table it returns the raw
// checkpoint value, as Locate does.
func (r Range) GetMatch(offset uint64) uint32 {
	ord, _ := r.idx.Sequence(r.Locate(offset))
	return ord
}

// Occurrence is one match: the sequence ordinal and the offset of the
// match within that sequence.
type Occurrence struct {
	Sequence uint32
	Offset   uint32
}

// Occurrences yields every row of the range resolved to its occurrence,
// in row order.
func (r Range) Occurrences() iter.Seq2[uint64, Occurrence] {
	return func(yield func(uint64, Occurrence) bool) {
		for off := range r.Len() {
			seq, pos := r.idx.Sequence(r.Locate(off))
			if !yield(r.begin+off, Occurrence{Sequence: seq, Offset: pos}) {
				return
			}
		}
	}
}

// Matches returns the distinct sequence ordinals in the range.
func (r Range) Matches() *roaring.Bitmap {
	bm := roaring.New()
	for off := range r.Len() {
		bm.Add(r.GetMatch(off))
	}
	return bm
}
