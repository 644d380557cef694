package bitcount

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"
	"unsafe"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqidx/testutil"
)

func buildVector(t testing.TB, pattern []bool) *Vector {
	t.Helper()
	b := NewBuilder(uint64(len(pattern)))
	for i, v := range pattern {
		if v {
			b.Set(uint64(i), true)
		}
	}
	return b.Finalize()
}

func oracle(pattern []bool) *bitset.BitSet {
	bs := bitset.New(uint(len(pattern)))
	for i, v := range pattern {
		if v {
			bs.Set(uint(i))
		}
	}
	return bs
}

// checkAgainstOracle compares every rank and every select with bitset.
func checkAgainstOracle(t *testing.T, v *Vector, pattern []bool) {
	t.Helper()
	bs := oracle(pattern)
	n := uint64(len(pattern))

	require.Equal(t, n, v.Len())
	require.Equal(t, uint64(bs.Count()), v.Count())

	var running uint64
	for i := uint64(0); i <= n; i++ {
		if got := v.Rank(i); got != running {
			t.Fatalf("Rank(%d) = %d, want %d", i, got, running)
		}
		if i > 0 && i%1021 == 0 {
			require.Equal(t, uint64(bs.Rank(uint(i-1))), v.Rank(i))
		}
		if i < n && pattern[i] {
			running++
		}
	}

	var c uint64
	for i, ok := bs.NextSet(0); ok; i, ok = bs.NextSet(i + 1) {
		if got := v.Select(c); got != uint64(i) {
			t.Fatalf("Select(%d) = %d, want %d", c, got, i)
		}
		c++
	}
	assert.Equal(t, n, v.Select(v.Count()))
}

func TestVector_AgainstOracle(t *testing.T) {
	rng := testutil.NewRNG(4711)
	n := 3*4096*8 + 77 // several blocks and a ragged last word

	tests := []struct {
		name    string
		pattern []bool
	}{
		{"empty-density", rng.Bits(n, 0)},
		{"full", rng.Bits(n, 1)},
		{"half", rng.Bits(n, 0.5)},
		{"sparse", rng.Bits(n, 0.001)},
		{"dense-sparse-tail", rng.SplitDensityBits(n, 0.95, 0.002)},
		{"sparse-dense-tail", rng.SplitDensityBits(n, 0.002, 0.95)},
		{"single-word", rng.Bits(50, 0.5)},
		{"one-bit", []bool{true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkAgainstOracle(t, buildVector(t, tt.pattern), tt.pattern)
		})
	}
}

func TestVector_RankMonotone(t *testing.T) {
	rng := testutil.NewRNG(99)
	pattern := rng.Bits(10000, 0.3)
	v := buildVector(t, pattern)

	for i := uint64(0); i < v.Len(); i++ {
		d := v.Rank(i+1) - v.Rank(i)
		require.LessOrEqual(t, d, uint64(1))
		assert.Equal(t, v.Get(i), d == 1)
	}
	assert.Equal(t, v.Count(), v.Rank(v.Len()))
}

func TestVector_SelectInverse(t *testing.T) {
	rng := testutil.NewRNG(7)
	v := buildVector(t, rng.SplitDensityBits(20000, 0.7, 0.01))

	for c := uint64(0); c < v.Count(); c++ {
		p := v.Select(c)
		require.True(t, v.Get(p))
		require.Equal(t, c, v.Rank(p))
	}
}

func TestVector_Empty(t *testing.T) {
	b := NewBuilder(0)
	v := b.Finalize()

	assert.Equal(t, uint64(0), v.Len())
	assert.Equal(t, uint64(0), v.Count())
	assert.Equal(t, uint64(0), v.Rank(0))
	assert.Equal(t, uint64(0), v.Select(0))

	v.BuildSelectIndex()
	assert.Equal(t, uint64(0), v.Select(0))
}

func TestVector_Panics(t *testing.T) {
	v := buildVector(t, []bool{true, false, true})

	assert.Panics(t, func() { v.Get(3) })
	assert.Panics(t, func() { v.Rank(4) })
	assert.Panics(t, func() { v.Select(3) })
	assert.NotPanics(t, func() { v.Rank(3) })
	assert.NotPanics(t, func() { v.Select(2) })
}

func TestVector_Word(t *testing.T) {
	v := buildVector(t, []bool{true, false, true, false, false})
	assert.Equal(t, uint64(0b101), v.Word(0))
	assert.Panics(t, func() { v.Word(1) })
}

func TestRequiredBytes(t *testing.T) {
	for _, n := range []uint64{0, 1, 63, 64, 65, 4095, 4096, 4097, 1 << 20} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			size := RequiredBytes(n)
			assert.Zero(t, size%alignBytes)
			assert.GreaterOrEqual(t, size*8, n)
			assert.Equal(t, size, RequiredBytes(n))
		})
	}

	// Overhead stays close to a quarter bit per bit.
	n := uint64(1 << 24)
	overhead := float64(RequiredBytes(n)*8-n) / float64(n)
	assert.Less(t, overhead, 0.3)
}

func TestView_RoundTrip(t *testing.T) {
	rng := testutil.NewRNG(1)
	pattern := rng.Bits(9000, 0.4)
	v := buildVector(t, pattern)

	var buf bytes.Buffer
	n, err := v.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(RequiredBytes(9000)), n)
	assert.Equal(t, uint64(n), v.Size())

	// Copy into word-aligned memory before viewing.
	aligned := alignedBytes(buf.Len())
	copy(aligned, buf.Bytes())

	w, err := View(aligned, 9000)
	require.NoError(t, err)
	checkAgainstOracle(t, w, pattern)
}

func TestView_Errors(t *testing.T) {
	const n = 5000
	l := newLayout(n)

	// fresh returns a finalized vector over aligned memory.
	fresh := func(t *testing.T) []byte {
		t.Helper()
		buf := alignedBytes(int(RequiredBytes(n)))
		b, err := NewBuilderOver(buf, n)
		require.NoError(t, err)
		for i, set := range testutil.NewRNG(2).Bits(n, 0.3) {
			b.Set(uint64(i), set)
		}
		b.Finalize()
		return buf
	}

	t.Run("short buffer", func(t *testing.T) {
		_, err := View(fresh(t)[:64], n)
		assert.ErrorIs(t, err, ErrShortBuffer)
	})

	t.Run("misaligned", func(t *testing.T) {
		_, err := View(fresh(t)[1:], 10)
		assert.ErrorIs(t, err, ErrMisaligned)
	})

	tests := []struct {
		name   string
		mutate func(buf []byte)
	}{
		{"total", func(buf []byte) {
			binary.NativeEndian.PutUint64(buf[l.subsOff-8:], n+1)
		}},
		{"block sample", func(buf []byte) {
			binary.NativeEndian.PutUint64(buf[l.blocksOff+8:], 1)
		}},
		{"first subtotal", func(buf []byte) {
			binary.NativeEndian.PutUint16(buf[l.subsOff:], 0x7fff)
		}},
		{"later subtotal", func(buf []byte) {
			off := l.subsOff + 2*10
			binary.NativeEndian.PutUint16(buf[off:], binary.NativeEndian.Uint16(buf[off:])+1)
		}},
		{"word flipped", func(buf []byte) {
			buf[0] ^= 1
		}},
		{"padding bit", func(buf []byte) {
			buf[l.blocksOff-1] |= 0x80
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := fresh(t)
			_, err := View(buf, n)
			require.NoError(t, err)

			tt.mutate(buf)
			_, err = View(buf, n)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func alignedBytes(n int) []byte {
	words := make([]uint64, (n+7)/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*8)[:n]
}
