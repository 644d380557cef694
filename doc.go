// Package seqidx provides a compact, disk-resident substring index over
// large collections of DNA sequences.
//
// An index is an FM-index: the Burrows-Wheeler transform of the
// concatenated sequences, stored as four rank/select bit-vectors (one per
// base) plus a sparse table of sampled text positions. It answers exact
// substring queries and maps every match back to the sequence it came
// from, without keeping the sequences or a full suffix array.
//
// # Quick Start
//
//	ctx := context.Background()
//	_, err := seqidx.Build(ctx, "reads.bwt", []string{"ACGT", "ACGG"})
//
//	idx, err := seqidx.Open("reads.bwt")
//	defer idx.Close()
//
//	r, _ := idx.FullRange().FindString("ACG")
//	for off := range r.Len() {
//	    fmt.Println(r.GetMatch(off)) // 0 and 1, in some order
//	}
//
// # Search
//
// A Range is a half-open interval of rows whose suffixes all start with
// the pattern matched so far. Find consumes a pattern back to front;
// PushFront extends the match by one base on the left, which suits
// branching extension. Ranges are small values and cost nothing to copy.
// Once a range is empty it stays empty.
//
// Locate resolves a row to its text position by walking LF steps back to
// the nearest sampled row. GetMatch further resolves that position to the
// ordinal of its input sequence through the sequence-boundary table.
//
// # File Format
//
//	offset 0    magic               8 bytes
//	offset 8    header offset       u64, little-endian
//	offset 16   base bit-vectors    4 x bitcount.RequiredBytes(n)
//	            checkpoint bits     bitcount.RequiredBytes(n)
//	            checkpoint values   n_checkpoints x u32
//	            (8-byte padding)
//	            sequence starts     bitcount.RequiredBytes(n), optional
//	header      codec name          u8 length, then the name
//	            header blob         codec-encoded Header (msgpack by default)
//
// Bit-vectors and checkpoint values are stored in host byte order and are
// used in place through the mapping. Open checks every rank sample against
// its bit-vector and every checkpoint value against the row count;
// WithVerify additionally checks the data region checksum.
//
// # Errors
//
// Open reports files that are not usable indexes as *FormatError, whose
// message reads "<path> does not appear to be a valid BWT". Out-of-range
// rows or offsets are programming errors and panic.
//
// # Thread Safety
//
// An Index and its Ranges are immutable and safe for concurrent use until
// Close.
package seqidx
