package seqio

import (
	"github.com/cespare/xxhash/v2"
)

// Dedup returns seqs without repeats, keeping the first occurrence of each
// sequence in input order. Sequences are bucketed by their xxhash digest and
// compared in full within a bucket.
func Dedup(seqs []string) []string {
	buckets := make(map[uint64][]int, len(seqs))
	out := make([]string, 0, len(seqs))
	for _, s := range seqs {
		h := xxhash.Sum64String(s)
		dup := false
		for _, j := range buckets[h] {
			if out[j] == s {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		buckets[h] = append(buckets[h], len(out))
		out = append(out, s)
	}
	return out
}

// IsDNA reports whether s consists only of the letters A, C, G and T in
// either case.
func IsDNA(s string) bool {
	for i := range len(s) {
		switch s[i] {
		case 'A', 'C', 'G', 'T', 'a', 'c', 'g', 't':
		default:
			return false
		}
	}
	return true
}
