package testutil

import (
	"math/rand"
	"strings"
	"sync"
)

// Alphabet is the DNA alphabet in lexicographic order.
const Alphabet = "ACGT"

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Bits returns n bits, each set with probability density.
func (r *RNG) Bits(n int, density float64) []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bitsLocked(n, density)
}

func (r *RNG) bitsLocked(n int, density float64) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = r.rand.Float64() < density
	}
	return out
}

// SplitDensityBits returns n bits whose first half is drawn with density
// head and second half with density tail. Skewed halves exercise blocks
// with very different rank samples in one vector.
func (r *RNG) SplitDensityBits(n int, head, tail float64) []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	half := n / 2
	return append(r.bitsLocked(half, head), r.bitsLocked(n-half, tail)...)
}

// DNA returns a random sequence of n bases.
func (r *RNG) DNA(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dnaLocked(n)
}

func (r *RNG) dnaLocked(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	for range n {
		sb.WriteByte(Alphabet[r.rand.Intn(len(Alphabet))])
	}
	return sb.String()
}

// Sequences returns count random sequences with lengths in [minLen, maxLen].
func (r *RNG) Sequences(count, minLen, maxLen int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, count)
	for i := range out {
		out[i] = r.dnaLocked(minLen + r.rand.Intn(maxLen-minLen+1))
	}
	return out
}

// Substring returns a random substring of length n taken from one of seqs
// that is at least n long, or "" if none is.
func (r *RNG) Substring(seqs []string, n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var candidates []string
	for _, s := range seqs {
		if len(s) >= n {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	s := candidates[r.rand.Intn(len(candidates))]
	start := r.rand.Intn(len(s) - n + 1)
	return s[start : start+n]
}
