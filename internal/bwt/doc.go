// Package bwt derives the Burrows-Wheeler transform of a sequence
// collection.
//
// The sequences are concatenated into one text with a terminator after
// each of them:
//
//	T = s0 $ s1 $ ... s(m-1) $
//
// where $ is symbol 0 and the bases A, C, G, T are symbols 1 to 4, so the
// terminator sorts first. Suffix i of the suffix array is row i of the
// transform, and its symbol is the text symbol just before the suffix.
// Rows whose preceding symbol is a terminator (and the row of the whole
// text) begin a sequence.
package bwt
