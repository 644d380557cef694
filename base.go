package seqidx

import "fmt"

// Base is one symbol of the DNA alphabet.
type Base uint8

// The four bases, in the order used for the cumulative counts.
const (
	A Base = iota
	C
	G
	T
)

// NumBases is the alphabet size.
const NumBases = 4

const baseLetters = "ACGT"

// String returns the base letter.
func (b Base) String() string {
	if b >= NumBases {
		return fmt.Sprintf("Base(%d)", uint8(b))
	}
	return baseLetters[b : b+1]
}

// Byte returns the upper-case letter of b.
func (b Base) Byte() byte {
	return baseLetters[b]
}

// ParseBase converts an ASCII letter (either case) into a Base.
func ParseBase(c byte) (Base, error) {
	switch c {
	case 'A', 'a':
		return A, nil
	case 'C', 'c':
		return C, nil
	case 'G', 'g':
		return G, nil
	case 'T', 't':
		return T, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidBase, c)
}

// ParsePattern converts a string of base letters into a pattern.
func ParsePattern(s string) ([]Base, error) {
	out := make([]Base, len(s))
	for i := range len(s) {
		b, err := ParseBase(s[i])
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		out[i] = b
	}
	return out, nil
}
