package bwt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqidx/testutil"
)

func TestNewText(t *testing.T) {
	text, err := NewText([]string{"ACGT", "", "tg"})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 0, 0, 4, 3, 0}, text.Symbols)
	assert.Equal(t, []uint32{0, 5, 6}, text.Starts)
	assert.Equal(t, 9, text.Len())
}

func TestNewText_InvalidSymbol(t *testing.T) {
	_, err := NewText([]string{"ACGT", "ACNT"})
	assert.ErrorIs(t, err, ErrInvalidSymbol)
	assert.Contains(t, err.Error(), "sequence 1 offset 2")
}

func TestSuffixArray_Sorted(t *testing.T) {
	rng := testutil.NewRNG(7)
	text, err := NewText(rng.Sequences(40, 0, 30))
	require.NoError(t, err)

	sa := SuffixArray(text.Symbols)
	require.Len(t, sa, text.Len())

	seen := make([]bool, len(sa))
	for i, p := range sa {
		require.False(t, seen[p], "position %d repeated", p)
		seen[p] = true
		if i > 0 {
			prev := text.Symbols[sa[i-1]:]
			cur := text.Symbols[p:]
			require.Negative(t, bytes.Compare(prev, cur), "rows %d and %d out of order", i-1, i)
		}
	}
}

func TestSuffixArray_Empty(t *testing.T) {
	assert.Empty(t, SuffixArray(nil))
}

func TestTransform_TwoSequences(t *testing.T) {
	text, err := NewText([]string{"ACGT", "ACGG"})
	require.NoError(t, err)
	tr := New(text)
	require.Equal(t, 10, tr.Len())

	// Two terminators, then A x2, C x2, G x3, T x1.
	assert.Equal(t, [5]uint64{2, 2, 2, 3, 1}, tr.Counts())
	assert.Equal(t, [4]uint64{2, 4, 6, 9}, tr.BaseStart())

	starts := 0
	for i := range tr.Len() {
		if tr.Symbol(i) == Terminator {
			starts++
			p := tr.Position(i)
			assert.True(t, p == 0 || text.Symbols[p-1] == Terminator)
			assert.True(t, tr.IsCheckpoint(i, 1000))
		}
	}
	assert.Equal(t, 2, starts)
}

func TestTransform_SymbolIsPermutationOfText(t *testing.T) {
	rng := testutil.NewRNG(11)
	text, err := NewText(rng.Sequences(25, 1, 50))
	require.NoError(t, err)
	tr := New(text)

	var got [5]uint64
	for i := range tr.Len() {
		got[tr.Symbol(i)]++
	}
	assert.Equal(t, tr.Counts(), got)
}

func TestTransform_CheckpointInterval(t *testing.T) {
	text, err := NewText([]string{"ACGTACGTACGTACGT"})
	require.NoError(t, err)
	tr := New(text)

	var n int
	for i := range tr.Len() {
		if tr.IsCheckpoint(i, 4) {
			n++
			p := tr.Position(i)
			assert.True(t, p%4 == 0 || tr.Symbol(i) == Terminator)
		}
	}
	// Positions 0, 4, 8, 12, 16 over a 17-symbol text.
	assert.Equal(t, 5, n)
}
