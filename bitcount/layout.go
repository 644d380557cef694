package bitcount

import (
	"errors"
	"fmt"
	"unsafe"
)

const (
	wordBits      = 64
	wordsPerBlock = 64

	// storage is padded to this many bytes so consecutive vectors in a file
	// stay word aligned.
	alignBytes = 64
)

var (
	// ErrShortBuffer is returned when a buffer is smaller than RequiredBytes.
	ErrShortBuffer = errors.New("bitcount: buffer too small")
	// ErrMisaligned is returned when a buffer does not start on an 8-byte boundary.
	ErrMisaligned = errors.New("bitcount: buffer not 8-byte aligned")
	// ErrCorrupt is returned when the rank samples of a view are inconsistent.
	ErrCorrupt = errors.New("bitcount: corrupt rank samples")
)

type layout struct {
	nBits     uint64
	nWords    uint64
	nBlocks   uint64
	blocksOff uint64
	subsOff   uint64
	size      uint64
}

func newLayout(nBits uint64) layout {
	l := layout{nBits: nBits}
	l.nWords = (nBits + wordBits - 1) / wordBits
	l.nBlocks = (l.nWords + wordsPerBlock - 1) / wordsPerBlock
	l.blocksOff = l.nWords * 8
	l.subsOff = l.blocksOff + (l.nBlocks+1)*8
	l.size = alignUp(l.subsOff+alignUp(l.nWords*2, 8), alignBytes)
	return l
}

func alignUp(v, a uint64) uint64 {
	return (v + a - 1) / a * a
}

// RequiredBytes returns the number of bytes needed to store a vector of
// nBits bits, including its rank samples. It depends on nBits only.
func RequiredBytes(nBits uint64) uint64 {
	return newLayout(nBits).size
}

// storage binds the three sections of the layout to one byte buffer.
type storage struct {
	n      uint64
	buf    []byte
	words  []uint64
	blocks []uint64
	subs   []uint16
}

func bind(buf []byte, nBits uint64) (storage, error) {
	l := newLayout(nBits)
	if uint64(len(buf)) < l.size {
		return storage{}, fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(buf), l.size)
	}
	if uintptr(unsafe.Pointer(&buf[0]))%8 != 0 {
		return storage{}, ErrMisaligned
	}
	buf = buf[:l.size:l.size]
	return storage{
		n:      nBits,
		buf:    buf,
		words:  castUint64(buf[:l.blocksOff], l.nWords),
		blocks: castUint64(buf[l.blocksOff:l.subsOff], l.nBlocks+1),
		subs:   castUint16(buf[l.subsOff:], l.nWords),
	}, nil
}

// allocate returns word-aligned owned storage.
func allocate(nBits uint64) storage {
	l := newLayout(nBits)
	backing := make([]uint64, l.size/8)
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&backing[0])), l.size)
	st, err := bind(buf, nBits)
	if err != nil {
		panic(err) // unreachable: the buffer is sized and aligned above
	}
	return st
}

func castUint64(b []byte, n uint64) []uint64 {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), n)
}

func castUint16(b []byte, n uint64) []uint16 {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*uint16)(unsafe.Pointer(&b[0])), n)
}

// wordRank returns the number of set bits before word w. Requires w < nWords.
func (s *storage) wordRank(w uint64) uint64 {
	return s.blocks[w/wordsPerBlock] + uint64(s.subs[w])
}
