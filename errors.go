package seqidx

import (
	"errors"
	"fmt"

	"github.com/hupe1980/seqidx/bitcount"
	"github.com/hupe1980/seqidx/internal/conv"
	"github.com/hupe1980/seqidx/internal/mmap"
)

var (
	// ErrBadMagic is returned when a file does not start with the index magic.
	ErrBadMagic = errors.New("bad magic")
	// ErrTruncated is returned when a file is shorter than its layout requires.
	ErrTruncated = errors.New("truncated file")
	// ErrMalformedHeader is returned when the header blob cannot be decoded
	// or violates its invariants.
	ErrMalformedHeader = errors.New("malformed header")
	// ErrCorrupt is returned when the bit-vectors disagree with the header.
	ErrCorrupt = errors.New("corrupt index data")
	// ErrChecksumMismatch is returned by Verify when the data region has changed.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrInvalidBase is returned for letters outside {A,C,G,T}.
	ErrInvalidBase = errors.New("invalid base")
	// ErrTooLarge is returned when the text does not fit 32-bit positions.
	ErrTooLarge = errors.New("text too large for 32-bit positions")
	// ErrNoSequences is returned when Build is given no input.
	ErrNoSequences = errors.New("no sequences")
	// ErrClosed is returned when using an index after Close.
	ErrClosed = errors.New("index is closed")
)

// FormatError reports that a file is not a usable index.
//
// The underlying cause can be matched with errors.Is against ErrBadMagic,
// ErrTruncated, ErrMalformedHeader, ErrCorrupt or ErrChecksumMismatch.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s does not appear to be a valid BWT: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// formatError classifies errors from the lower layers as format errors.
func formatError(path string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, bitcount.ErrShortBuffer), errors.Is(err, mmap.ErrOutOfBounds):
		err = fmt.Errorf("%w: %w", ErrTruncated, err)
	case errors.Is(err, bitcount.ErrCorrupt), errors.Is(err, bitcount.ErrMisaligned):
		err = fmt.Errorf("%w: %w", ErrCorrupt, err)
	case errors.Is(err, conv.ErrOverflow):
		err = fmt.Errorf("%w: %w", ErrMalformedHeader, err)
	}
	return &FormatError{Path: path, Err: err}
}
