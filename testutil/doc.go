// Package testutil provides testing utilities for seqidx.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, goroutine-safe RNG for generating bit patterns and
// DNA sequences, and naive reference implementations to check the succinct
// structures against.
//
// # Bit Patterns
//
//	rng := testutil.NewRNG(seed)
//	bits := rng.Bits(1<<16, 0.5)          // uniform density
//	bits = rng.SplitDensityBits(1<<16, 0.9, 0.01) // dense head, sparse tail
//
// # Sequences
//
//	seqs := rng.Sequences(100, 20, 150)   // 100 reads of 20..150 bases
//	n := testutil.CountOccurrences(seqs, "ACGT")
package testutil
