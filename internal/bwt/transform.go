package bwt

import (
	"index/suffixarray"
	"unsafe"
)

// SuffixArray returns the suffix array of text.
//
// It uses the SA-IS implementation of index/suffixarray and copies the
// int32 array out of the resulting Index. len(text) must not exceed
// math.MaxInt32.
func SuffixArray(text []byte) []int32 {
	sa := make([]int32, len(text))
	if len(text) == 0 {
		return sa
	}
	idx := suffixarray.New(text)

	// Mirrors the layout of suffixarray.Index:
	//   type Index struct { data []byte; sa ints }
	//   type ints struct { int32 []int32; int64 []int64 }
	type intsHeader struct {
		int32Ptr unsafe.Pointer
		int32Len int
		int32Cap int
		int64Ptr unsafe.Pointer
		int64Len int
		int64Cap int
	}
	type indexHeader struct {
		dataPtr unsafe.Pointer
		dataLen int
		dataCap int
		sa      intsHeader
	}
	h := (*indexHeader)(unsafe.Pointer(idx))
	copy(sa, unsafe.Slice((*int32)(h.sa.int32Ptr), h.sa.int32Len))
	return sa
}

// Transform is the row-level view of a text's Burrows-Wheeler transform.
type Transform struct {
	text *Text
	sa   []int32
}

// New suffix-sorts t.
func New(t *Text) *Transform {
	return &Transform{text: t, sa: SuffixArray(t.Symbols)}
}

// Len returns the number of rows.
func (tr *Transform) Len() int { return len(tr.sa) }

// Position returns the text position of the suffix at row i. Suffix array
// entries are non-negative int32 values, so the conversion is exact.
func (tr *Transform) Position(i int) uint32 { return uint32(tr.sa[i]) }

// Symbol returns the symbol preceding the suffix at row i, cyclically.
// It is Terminator exactly for sequence-start rows.
func (tr *Transform) Symbol(i int) byte {
	p := tr.sa[i]
	if p == 0 {
		return Terminator
	}
	return tr.text.Symbols[p-1]
}

// Counts returns, per symbol, the number of rows holding it.
func (tr *Transform) Counts() [5]uint64 {
	var c [5]uint64
	for _, s := range tr.text.Symbols {
		c[s]++
	}
	return c
}

// BaseStart returns, for each base, the number of rows whose suffix starts
// with a smaller symbol (terminators included).
func (tr *Transform) BaseStart() [4]uint64 {
	c := tr.Counts()
	var start [4]uint64
	acc := c[Terminator]
	for b := range 4 {
		start[b] = acc
		acc += c[b+1]
	}
	return start
}

// IsCheckpoint reports whether row i is sampled for interval k: every
// sequence-start row, and every row whose position is a multiple of k.
func (tr *Transform) IsCheckpoint(i int, k uint32) bool {
	return tr.Symbol(i) == Terminator || tr.Position(i)%k == 0
}
