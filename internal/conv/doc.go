// Package conv provides checked integer conversions.
//
// Index files carry sizes and offsets as uint64 and text positions as
// uint32. Values read from disk are untrusted, so every narrowing
// conversion of such a value goes through this package and fails with
// ErrOverflow instead of wrapping.
//
// Conversions that are safe by construction (loop indices, values already
// bounded by a checked length) use plain casts.
package conv
