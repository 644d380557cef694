// Package seqio reads DNA sequence collections for index builds.
//
// Two layouts are recognized from the first non-blank byte: FASTA (a
// record starts with '>', its sequence may span several lines) and plain
// text with one sequence per line. Input compressed with gzip, zstd or lz4
// is detected by its magic bytes and decompressed transparently.
package seqio
