package bwt

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/seqidx/internal/conv"
)

// Terminator is the symbol that ends every sequence in the text.
const Terminator byte = 0

var (
	// ErrInvalidSymbol is returned for letters outside {A,C,G,T}.
	ErrInvalidSymbol = errors.New("bwt: invalid symbol")
	// ErrTooLarge is returned when the text exceeds MaxTextLen.
	ErrTooLarge = errors.New("bwt: text too large")
)

// MaxTextLen is the largest supported text, terminators included. It is
// bounded by the int32 suffix array.
const MaxTextLen = math.MaxInt32

// symbolOf maps letters (either case) to 1..4 and anything else to 0.
var symbolOf = func() (t [256]byte) {
	for i, c := range "ACGT" {
		t[c] = byte(i + 1)
		t[c+'a'-'A'] = byte(i + 1)
	}
	return t
}()

// Text is the terminated concatenation of a sequence collection.
type Text struct {
	// Symbols holds one symbol per position: 0 for a terminator, 1..4 for
	// a base.
	Symbols []byte
	// Starts holds the position of the first symbol of each sequence.
	Starts []uint32
}

// NewText encodes seqs into a Text.
func NewText(seqs []string) (*Text, error) {
	total := uint64(len(seqs))
	for _, s := range seqs {
		total += uint64(len(s))
	}
	if total > MaxTextLen {
		return nil, fmt.Errorf("%w: %d symbols", ErrTooLarge, total)
	}

	t := &Text{
		Symbols: make([]byte, 0, total),
		Starts:  make([]uint32, len(seqs)),
	}
	for i, s := range seqs {
		start, err := conv.IntToUint32(len(t.Symbols))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTooLarge, err)
		}
		t.Starts[i] = start
		for j := range len(s) {
			sym := symbolOf[s[j]]
			if sym == 0 {
				return nil, fmt.Errorf("%w: %q at sequence %d offset %d", ErrInvalidSymbol, s[j], i, j)
			}
			t.Symbols = append(t.Symbols, sym)
		}
		t.Symbols = append(t.Symbols, Terminator)
	}
	return t, nil
}

// Len returns the number of symbols, which is the number of rows.
func (t *Text) Len() int { return len(t.Symbols) }
