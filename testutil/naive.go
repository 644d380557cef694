package testutil

import "strings"

// Occurrence is one match of a pattern: the sequence ordinal and the offset
// of the match within that sequence.
type Occurrence struct {
	Seq    int
	Offset int
}

// NaiveRank returns the number of true values in bits[:i].
func NaiveRank(bits []bool, i int) int {
	n := 0
	for _, b := range bits[:i] {
		if b {
			n++
		}
	}
	return n
}

// Occurrences returns every (possibly overlapping) occurrence of pattern
// in seqs, ordered by sequence and offset.
func Occurrences(seqs []string, pattern string) []Occurrence {
	var out []Occurrence
	for i, s := range seqs {
		for off := 0; off+len(pattern) <= len(s); off++ {
			if strings.HasPrefix(s[off:], pattern) {
				out = append(out, Occurrence{Seq: i, Offset: off})
			}
		}
	}
	return out
}

// CountOccurrences returns len(Occurrences(seqs, pattern)).
func CountOccurrences(seqs []string, pattern string) int {
	return len(Occurrences(seqs, pattern))
}
