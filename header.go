package seqidx

import (
	"fmt"

	"github.com/hupe1980/seqidx/bitcount"
	"github.com/hupe1980/seqidx/codec"
	"github.com/hupe1980/seqidx/internal/conv"
)

// FormatVersion is the current index file format version.
const FormatVersion uint32 = 1

// magic identifies index files.
var magic = [8]byte{'S', 'E', 'Q', 'I', 'D', 'X', 0, 1}

const (
	// prefixSize covers the magic and the little-endian header offset.
	prefixSize = 16
	// checkpointValueSize is the width of one checkpoint value.
	checkpointValueSize = 4
	// maxEntries bounds the row count so that every text position fits a
	// checkpoint value.
	maxEntries = 1 << 32
)

// Header describes one index file. It is stored as a codec blob at the
// offset recorded in the file prefix.
type Header struct {
	// BaseStart[b] is the number of rows whose first symbol sorts before b.
	BaseStart [NumBases]uint64 `codec:"base_start" json:"base_start"`
	// NEntries is the number of rows.
	NEntries uint64 `codec:"n_entries" json:"n_entries"`
	// NCheckpoints is the number of sampled rows.
	NCheckpoints uint64 `codec:"n_checkpoints" json:"n_checkpoints"`

	Version uint32 `codec:"version" json:"version"`
	// NSequences is the number of input sequences; 0 if unknown.
	NSequences uint64 `codec:"n_sequences" json:"n_sequences"`
	// SeqStartsOffset locates the sequence-boundary bit-vector; 0 if absent.
	SeqStartsOffset uint64 `codec:"seq_starts_offset" json:"seq_starts_offset"`
	// Checksum is the CRC32C of the bytes between the prefix and the header;
	// 0 if unset.
	Checksum uint32 `codec:"checksum" json:"checksum"`
}

// Validate checks the header invariants that do not need the data region.
func (h *Header) Validate() error {
	if h.Version > FormatVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrMalformedHeader, h.Version)
	}
	if h.NEntries > maxEntries {
		return fmt.Errorf("%w: %d entries", ErrMalformedHeader, h.NEntries)
	}
	for b := 1; b < NumBases; b++ {
		if h.BaseStart[b] < h.BaseStart[b-1] {
			return fmt.Errorf("%w: base_start decreases at %v", ErrMalformedHeader, Base(b))
		}
	}
	if h.BaseStart[NumBases-1] > h.NEntries {
		return fmt.Errorf("%w: base_start %d exceeds %d entries", ErrMalformedHeader, h.BaseStart[NumBases-1], h.NEntries)
	}
	if h.NCheckpoints > h.NEntries {
		return fmt.Errorf("%w: %d checkpoints for %d entries", ErrMalformedHeader, h.NCheckpoints, h.NEntries)
	}
	if h.NSequences > h.NEntries {
		return fmt.Errorf("%w: %d sequences for %d entries", ErrMalformedHeader, h.NSequences, h.NEntries)
	}
	if h.SeqStartsOffset != 0 && h.NSequences == 0 {
		return fmt.Errorf("%w: sequence table without sequences", ErrMalformedHeader)
	}
	return nil
}

// maxCodecName bounds the codec name stored before the header blob.
const maxCodecName = 255

// encodeHeader returns the header section: the name of c as a
// length-prefixed string, followed by h encoded with c.
func encodeHeader(c codec.Codec, h *Header) ([]byte, error) {
	name := c.Name()
	if name == "" || len(name) > maxCodecName {
		return nil, fmt.Errorf("seqidx: codec name %q cannot be stored", name)
	}
	blob, err := c.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("seqidx: encode header: %w", err)
	}
	out := make([]byte, 0, 1+len(name)+len(blob))
	out = append(out, byte(len(name)))
	out = append(out, name...)
	return append(out, blob...), nil
}

// decodeHeader parses a header section. A nil c selects the codec named in
// the section; otherwise c must be that codec.
func decodeHeader(data []byte, c codec.Codec) (Header, codec.Codec, error) {
	if len(data) == 0 || len(data) < 1+int(data[0]) {
		return Header{}, nil, fmt.Errorf("%w: header section of %d bytes", ErrTruncated, len(data))
	}
	name := string(data[1 : 1+data[0]])
	if c == nil {
		var ok bool
		if c, ok = codec.ByName(name); !ok {
			return Header{}, nil, fmt.Errorf("%w: unknown codec %q", ErrMalformedHeader, name)
		}
	} else if c.Name() != name {
		return Header{}, nil, fmt.Errorf("%w: header written with codec %q, %q requested", ErrMalformedHeader, name, c.Name())
	}

	var h Header
	if err := c.Unmarshal(data[1+len(name):], &h); err != nil {
		return Header{}, nil, fmt.Errorf("%w: %w", ErrMalformedHeader, err)
	}
	return h, c, nil
}

// fileLayout holds the byte offsets of each section of an index file.
type fileLayout struct {
	vectorBytes uint64
	bases       [NumBases]uint64
	checkpoints uint64
	values      uint64
	valuesEnd   uint64
	// dataEnd is the first 8-byte aligned offset after the checkpoint values.
	dataEnd uint64
}

// newFileLayout computes the offsets of the fixed sections for h.
func newFileLayout(h *Header) (fileLayout, error) {
	var l fileLayout
	l.vectorBytes = bitcount.RequiredBytes(h.NEntries)

	off := uint64(prefixSize)
	for b := range NumBases {
		l.bases[b] = off
		next, err := conv.AddUint64(off, l.vectorBytes)
		if err != nil {
			return fileLayout{}, err
		}
		off = next
	}
	l.checkpoints = off
	off, err := conv.AddUint64(off, l.vectorBytes)
	if err != nil {
		return fileLayout{}, err
	}
	l.values = off
	valueBytes, err := conv.MulUint64(h.NCheckpoints, checkpointValueSize)
	if err != nil {
		return fileLayout{}, err
	}
	if l.valuesEnd, err = conv.AddUint64(off, valueBytes); err != nil {
		return fileLayout{}, err
	}
	if l.dataEnd, err = conv.AddUint64(l.valuesEnd, 7); err != nil {
		return fileLayout{}, err
	}
	l.dataEnd &^= 7
	return l, nil
}
