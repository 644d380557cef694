package bitcount

import (
	"math/bits"
	"sort"
)

const (
	defaultSampleShift = 9 // one sample per 512 set bits
	maxSampleShift     = 32

	// Windows up to this many words are scanned linearly; wider ones
	// (sparse stretches) are binary searched.
	scanWords = 8
)

// SelectOption configures BuildSelectIndex.
type SelectOption func(*selectOptions)

type selectOptions struct {
	shift uint
}

// WithSampleShift samples the position of every 2^shift-th set bit.
// Smaller shifts use more memory and give shorter searches.
func WithSampleShift(shift uint) SelectOption {
	return func(o *selectOptions) {
		o.shift = min(shift, maxSampleShift)
	}
}

// selectIndex records, for every 2^shift-th set bit, the word that holds it.
type selectIndex struct {
	shift uint
	words []uint64
}

// BuildSelectIndex attaches a sparse select index to v. Subsequent Select
// calls use it; results are unchanged. It is safe to call concurrently with
// readers, and calling it again replaces the index.
func (v *Vector) BuildSelectIndex(opts ...SelectOption) {
	o := selectOptions{shift: defaultSampleShift}
	for _, fn := range opts {
		fn(&o)
	}

	step := uint64(1) << o.shift
	idx := &selectIndex{
		shift: o.shift,
		words: make([]uint64, 0, (v.ones+step-1)/step),
	}
	var cum, next uint64
	for w, word := range v.st.words {
		cum += uint64(bits.OnesCount64(word))
		for next < cum {
			idx.words = append(idx.words, uint64(w))
			next += step
		}
	}
	v.sel.Store(idx)
}

// HasSelectIndex reports whether BuildSelectIndex has been called.
func (v *Vector) HasSelectIndex() bool {
	return v.sel.Load() != nil
}

// find returns the position of the set bit with rank c; c < total.
func (idx *selectIndex) find(s *storage, c uint64) uint64 {
	j := c >> idx.shift
	lo := idx.words[j]
	hi := uint64(len(s.words)) - 1
	if j+1 < uint64(len(idx.words)) {
		hi = idx.words[j+1]
	}

	// The target word is the last w in [lo, hi] with wordRank(w) <= c.
	if hi-lo <= scanWords {
		w := lo
		for w < hi && s.wordRank(w+1) <= c {
			w++
		}
		return s.selectInWord(w, c)
	}
	n := int(hi - lo + 1)
	w := lo + uint64(sort.Search(n, func(k int) bool { return s.wordRank(lo+uint64(k)) > c })-1)
	return s.selectInWord(w, c)
}

// SelectIndexSize returns the memory used by the select index in bytes, or
// 0 if none is attached.
func (v *Vector) SelectIndexSize() uint64 {
	if idx := v.sel.Load(); idx != nil {
		return uint64(len(idx.words)) * 8
	}
	return 0
}
