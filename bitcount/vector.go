package bitcount

import (
	"fmt"
	"io"
	"math/bits"
	"sort"
	"sync/atomic"
)

// Vector is a finalized, immutable bit-vector with rank and select support.
type Vector struct {
	st   storage
	ones uint64
	sel  atomic.Pointer[selectIndex]
}

// View returns a Vector over a buffer that already holds a finalized vector
// of nBits bits, e.g. a region of a memory-mapped index file. Nothing is
// copied. Every rank sample is recomputed from the words and must match;
// this reads the whole vector once.
func View(buf []byte, nBits uint64) (*Vector, error) {
	st, err := bind(buf, nBits)
	if err != nil {
		return nil, err
	}
	if err := st.check(); err != nil {
		return nil, err
	}
	return &Vector{st: st, ones: st.blocks[len(st.blocks)-1]}, nil
}

// check compares the block samples and word subtotals with the words.
func (s *storage) check() error {
	if tail := s.n % wordBits; tail != 0 && s.words[len(s.words)-1]>>tail != 0 {
		return fmt.Errorf("%w: bits set past %d", ErrCorrupt, s.n)
	}
	var total uint64
	for blk := range uint64(len(s.blocks) - 1) {
		if s.blocks[blk] != total {
			return fmt.Errorf("%w: block %d holds %d, want %d", ErrCorrupt, blk, s.blocks[blk], total)
		}
		start := blk * wordsPerBlock
		end := min(start+wordsPerBlock, uint64(len(s.words)))
		var rel uint64
		for w := start; w < end; w++ {
			if uint64(s.subs[w]) != rel {
				return fmt.Errorf("%w: word %d subtotal %d, want %d", ErrCorrupt, w, s.subs[w], rel)
			}
			rel += uint64(bits.OnesCount64(s.words[w]))
		}
		total += rel
	}
	if last := s.blocks[len(s.blocks)-1]; last != total {
		return fmt.Errorf("%w: total %d, want %d", ErrCorrupt, last, total)
	}
	return nil
}

// Len returns the number of bits.
func (v *Vector) Len() uint64 { return v.st.n }

// Count returns the total number of set bits.
func (v *Vector) Count() uint64 { return v.ones }

// Size returns the storage size in bytes, excluding any select index.
func (v *Vector) Size() uint64 { return uint64(len(v.st.buf)) }

// Get returns bit i.
func (v *Vector) Get(i uint64) bool {
	if i >= v.st.n {
		panic(fmt.Sprintf("bitcount: index %d out of range [0,%d)", i, v.st.n))
	}
	return v.st.words[i/wordBits]&(1<<(i%wordBits)) != 0
}

// Word returns bits [64w, 64w+64) as one word; bit i is bit i%64 of word
// i/64. Bits past Len are zero.
func (v *Vector) Word(w uint64) uint64 {
	if w >= uint64(len(v.st.words)) {
		panic(fmt.Sprintf("bitcount: word %d out of range [0,%d)", w, len(v.st.words)))
	}
	return v.st.words[w]
}

// Rank returns the number of set bits in [0, i). i may equal Len.
func (v *Vector) Rank(i uint64) uint64 {
	if i >= v.st.n {
		if i == v.st.n {
			return v.ones
		}
		panic(fmt.Sprintf("bitcount: rank position %d out of range [0,%d]", i, v.st.n))
	}
	w := i / wordBits
	r := v.st.wordRank(w)
	if off := i % wordBits; off != 0 {
		r += uint64(bits.OnesCount64(v.st.words[w] & (1<<off - 1)))
	}
	return r
}

// Select returns the position of the set bit preceded by exactly c set
// bits. Select(Count()) returns Len().
func (v *Vector) Select(c uint64) uint64 {
	if c >= v.ones {
		if c == v.ones {
			return v.st.n
		}
		panic(fmt.Sprintf("bitcount: select count %d out of range [0,%d]", c, v.ones))
	}
	if idx := v.sel.Load(); idx != nil {
		return idx.find(&v.st, c)
	}

	// Last block whose sample does not exceed c, then the last word in it.
	nBlocks := len(v.st.blocks) - 1
	blk := uint64(sort.Search(nBlocks, func(j int) bool { return v.st.blocks[j] > c }) - 1)
	rel := c - v.st.blocks[blk]
	start := blk * wordsPerBlock
	end := min(start+wordsPerBlock, uint64(len(v.st.words)))
	n := int(end - start)
	w := start + uint64(sort.Search(n, func(j int) bool { return uint64(v.st.subs[start+uint64(j)]) > rel })-1)
	return v.st.selectInWord(w, c)
}

// WriteTo writes the storage bytes, rank samples included, so that View
// can map them back.
func (v *Vector) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(v.st.buf)
	return int64(n), err
}

// selectInWord returns the position of the set bit with rank c, which must
// lie in word w.
func (s *storage) selectInWord(w, c uint64) uint64 {
	x := s.words[w]
	for k := c - s.wordRank(w); k > 0; k-- {
		x &= x - 1
	}
	return w*wordBits + uint64(bits.TrailingZeros64(x))
}
