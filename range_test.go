package seqidx

import (
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqidx/testutil"
)

// allPatterns returns every pattern over ACGT of length n.
func allPatterns(n int) []string {
	out := []string{""}
	for range n {
		var next []string
		for _, p := range out {
			for _, c := range testutil.Alphabet {
				next = append(next, p+string(c))
			}
		}
		out = next
	}
	return out
}

func find(t *testing.T, idx *Index, pattern string) Range {
	t.Helper()
	r, err := idx.FullRange().FindString(pattern)
	require.NoError(t, err)
	return r
}

func occurrencesOf(r Range) []testutil.Occurrence {
	var out []testutil.Occurrence
	for _, occ := range r.Occurrences() {
		out = append(out, testutil.Occurrence{Seq: int(occ.Sequence), Offset: int(occ.Offset)})
	}
	slices.SortFunc(out, func(a, b testutil.Occurrence) int {
		if a.Seq != b.Seq {
			return a.Seq - b.Seq
		}
		return a.Offset - b.Offset
	})
	return out
}

func TestRange_TwoSequences(t *testing.T) {
	idx := buildIndex(t, []string{"ACGT", "ACGG"})

	r := find(t, idx, "ACG")
	require.Equal(t, uint64(2), r.Len())

	got := []uint32{r.GetMatch(0), r.GetMatch(1)}
	assert.ElementsMatch(t, []uint32{0, 1}, got)
	assert.Equal(t, []uint32{0, 1}, r.Matches().ToArray())
}

func TestRange_FindToySet(t *testing.T) {
	idx := buildIndex(t, toySeqs)

	for n := 1; n <= 5; n++ {
		for _, p := range allPatterns(n) {
			r := find(t, idx, p)
			want := testutil.CountOccurrences(toySeqs, p)
			assert.Equal(t, uint64(want), r.Len(), "pattern %s", p)
			assert.Equal(t, want == 0, r.Empty(), "pattern %s", p)
		}
	}
}

func TestRange_FullRange(t *testing.T) {
	idx := buildIndex(t, toySeqs)

	r := idx.FullRange()
	assert.Equal(t, uint64(0), r.Begin())
	assert.Equal(t, idx.Len(), r.End())

	// The empty pattern matches every position, terminators included.
	assert.Equal(t, r, r.Find(nil))
	assert.Equal(t, uint64(testutil.CountOccurrences(toySeqs, "")), r.Len())
}

func TestRange_PushFrontMatchesFind(t *testing.T) {
	idx := buildIndex(t, toySeqs)

	pattern := []Base{A, C, G}
	r := idx.FullRange()
	for i := len(pattern) - 1; i >= 0; i-- {
		r = r.PushFront(pattern[i])
	}
	assert.Equal(t, idx.FullRange().Find(pattern), r)
}

func TestRange_EmptyIsAbsorbing(t *testing.T) {
	idx := buildIndex(t, toySeqs)

	r := find(t, idx, "GGGG")
	require.True(t, r.Empty())

	for b := range Base(NumBases) {
		next := r.PushFront(b)
		assert.True(t, next.Empty())
		assert.Equal(t, r, next)
	}
	assert.Equal(t, r, r.Find([]Base{A, C, G, T}))
	assert.Empty(t, r.Matches().ToArray())
	for range r.Occurrences() {
		t.Fatal("empty range yielded an occurrence")
	}
}

func TestRange_FindStringInvalid(t *testing.T) {
	idx := buildIndex(t, toySeqs)
	_, err := idx.FullRange().FindString("ACNG")
	assert.ErrorIs(t, err, ErrInvalidBase)
}

func TestRange_OffsetOutOfRange(t *testing.T) {
	idx := buildIndex(t, toySeqs)
	r := find(t, idx, "TT")
	require.Equal(t, uint64(3), r.Len())

	assert.Panics(t, func() { r.Locate(3) })
	assert.Panics(t, func() { r.GetMatch(3) })
	assert.Panics(t, func() { r.PushFront(Base(7)) })
}

// Every row resolves to a distinct text position, and together they cover
// each (sequence, offset) pair, terminators included, exactly once.
func TestRange_CheckpointRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(42)
	seqs := append(rng.Sequences(30, 0, 60), "", "A")

	for _, k := range []uint32{1, 3, 32, 1000} {
		idx := buildIndex(t, seqs, WithCheckpointInterval(k), WithBuildWorkers(3))

		var want []testutil.Occurrence
		for i, s := range seqs {
			for off := 0; off <= len(s); off++ {
				want = append(want, testutil.Occurrence{Seq: i, Offset: off})
			}
		}
		assert.Equal(t, want, occurrencesOf(idx.FullRange()), "interval %d", k)

		seen := make(map[uint32]bool)
		full := idx.FullRange()
		for off := range full.Len() {
			pos := full.Locate(off)
			require.False(t, seen[pos], "position %d located twice", pos)
			seen[pos] = true
		}
	}
}

func TestRange_OccurrencesRandom(t *testing.T) {
	rng := testutil.NewRNG(99)
	seqs := rng.Sequences(50, 20, 120)
	idx := buildIndex(t, seqs, WithCheckpointInterval(8))

	for range 200 {
		p := rng.Substring(seqs, 1+rng.Intn(12))
		r := find(t, idx, p)
		assert.Equal(t, testutil.Occurrences(seqs, p), occurrencesOf(r), "pattern %s", p)

		var ords []uint32
		for _, o := range testutil.Occurrences(seqs, p) {
			ords = append(ords, uint32(o.Seq))
		}
		ords = slices.Compact(ords)
		assert.Equal(t, ords, r.Matches().ToArray(), "pattern %s", p)
	}
	for range 50 {
		p := rng.DNA(16)
		assert.Equal(t, uint64(testutil.CountOccurrences(seqs, p)), find(t, idx, p).Len(), "pattern %s", p)
	}
}

func TestRange_OccurrencesEarlyStop(t *testing.T) {
	idx := buildIndex(t, toySeqs)
	r := find(t, idx, "T")
	require.Equal(t, uint64(5), r.Len())

	n := 0
	for range r.Occurrences() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestRange_WithoutSequenceTable(t *testing.T) {
	idx := buildIndex(t, []string{"ACGT", "ACGG"}, WithoutSequenceTable())
	require.False(t, idx.HasSequenceTable())
	assert.Zero(t, idx.Header().SeqStartsOffset)

	r := find(t, idx, "ACG")
	require.Equal(t, uint64(2), r.Len())
	// GetMatch falls back to the raw text position.
	got := []uint32{r.GetMatch(0), r.GetMatch(1)}
	assert.ElementsMatch(t, []uint32{0, 5}, got)
	assert.Equal(t, r.Locate(0), r.GetMatch(0))
}

func TestRange_ConcurrentQueries(t *testing.T) {
	rng := testutil.NewRNG(5)
	seqs := rng.Sequences(40, 10, 80)
	idx := buildIndex(t, seqs)

	patterns := make([]string, 64)
	for i := range patterns {
		patterns[i] = rng.Substring(seqs, 3+i%6)
	}

	var wg sync.WaitGroup
	errs := make(chan string, len(patterns))
	for _, p := range patterns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := idx.FullRange().FindString(p)
			if err != nil {
				errs <- err.Error()
				return
			}
			if got, want := occurrencesOf(r), testutil.Occurrences(seqs, p); !slices.Equal(got, want) {
				errs <- p
			}
		}()
	}
	wg.Wait()
	close(errs)
	for p := range errs {
		t.Errorf("wrong result for %s", p)
	}
}
