// Package bitcount provides a succinct rank/select bit-vector.
//
// # Overview
//
// A bit-vector has a fixed length chosen at construction. It is written
// through a Builder, which may be shared by many goroutines, and is then
// frozen by Finalize into an immutable Vector that answers:
//
//   - Get(i):    the raw bit at position i
//   - Rank(i):   number of set bits in [0, i)
//   - Select(c): the position p with Rank(p) == c and Get(p) == true
//
// Rank runs in constant time. Select is a binary search over the block
// samples followed by a search over the word subtotals of one block; an
// optional sparse select index (Vector.BuildSelectIndex) narrows the search
// window for dense vectors.
//
// # Layout
//
// The storage of a vector with n bits is one contiguous, 8-byte aligned
// buffer of RequiredBytes(n) bytes:
//
//	words   ceil(n/64) x uint64   raw bits, bit i is bit (i%64) of word i/64
//	blocks  (nblocks+1) x uint64  set bits before each 4096-bit block; the
//	                              trailing entry holds the total
//	subs    ceil(n/64) x uint16   set bits before each word, relative to its block
//
// padded to a multiple of 64 bytes. Words are stored in host byte order,
// so the buffer can be a view over a memory-mapped file. The extra space
// is about 0.27 bits per bit.
//
// # Lifecycle
//
//	b := bitcount.NewBuilder(n)
//	b.Set(3, true)         // or b.Swap from many goroutines
//	v := b.Finalize()      // b is unusable from here on
//	v.Rank(10)
//
// NewBuilderOver and View bind the same layout to caller-provided memory,
// which is how the sequence index writes and maps its bit-vectors in place.
//
// # Thread Safety
//
// Builder.Set, Builder.Swap and Builder.Get are safe for concurrent use.
// Finalize must not race with writers. A Vector is immutable and safe for
// concurrent reads.
package bitcount
