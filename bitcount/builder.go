package bitcount

import (
	"fmt"
	"math/bits"
	"sync/atomic"
)

// Builder is the write phase of a bit-vector. All bits start cleared.
//
// Set, Swap and Get may be called concurrently, on disjoint or overlapping
// positions. Finalize converts the builder into a read-only Vector; the
// builder must not be used afterwards.
type Builder struct {
	st   storage
	done bool
}

// NewBuilder returns a builder that owns storage for nBits bits.
func NewBuilder(nBits uint64) *Builder {
	return &Builder{st: allocate(nBits)}
}

// NewBuilderOver returns a builder over caller-provided memory, such as a
// region of a writable file mapping. buf must be 8-byte aligned and at least
// RequiredBytes(nBits) long; its first RequiredBytes(nBits) bytes are cleared.
// The caller keeps buf alive for the lifetime of the resulting Vector.
func NewBuilderOver(buf []byte, nBits uint64) (*Builder, error) {
	st, err := bind(buf, nBits)
	if err != nil {
		return nil, err
	}
	clear(st.buf)
	return &Builder{st: st}, nil
}

// Len returns the number of bits.
func (b *Builder) Len() uint64 {
	b.mustLive()
	return b.st.n
}

// Set sets bit i to v.
func (b *Builder) Set(i uint64, v bool) {
	b.Swap(i, v)
}

// Swap atomically sets bit i to v and returns its previous value.
func (b *Builder) Swap(i uint64, v bool) bool {
	b.mustLive()
	b.checkIndex(i)
	w := &b.st.words[i/wordBits]
	mask := uint64(1) << (i % wordBits)
	var old uint64
	if v {
		old = atomic.OrUint64(w, mask)
	} else {
		old = atomic.AndUint64(w, ^mask)
	}
	return old&mask != 0
}

// Get returns bit i.
func (b *Builder) Get(i uint64) bool {
	b.mustLive()
	b.checkIndex(i)
	return atomic.LoadUint64(&b.st.words[i/wordBits])&(1<<(i%wordBits)) != 0
}

// Finalize computes the rank samples and returns the immutable vector.
// It must be called exactly once, after all writes have completed.
func (b *Builder) Finalize() *Vector {
	b.mustLive()
	st := b.st

	var total uint64
	for blk := range uint64(len(st.blocks) - 1) {
		st.blocks[blk] = total
		start := blk * wordsPerBlock
		end := min(start+wordsPerBlock, uint64(len(st.words)))
		var rel uint64
		for w := start; w < end; w++ {
			st.subs[w] = uint16(rel)
			rel += uint64(bits.OnesCount64(st.words[w]))
		}
		total += rel
	}
	st.blocks[len(st.blocks)-1] = total

	b.st = storage{}
	b.done = true
	return &Vector{st: st, ones: total}
}

func (b *Builder) mustLive() {
	if b.done {
		panic("bitcount: builder used after Finalize")
	}
}

func (b *Builder) checkIndex(i uint64) {
	if i >= b.st.n {
		panic(fmt.Sprintf("bitcount: index %d out of range [0,%d)", i, b.st.n))
	}
}
