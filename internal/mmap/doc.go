// Package mmap provides memory-mapped file access for zero-copy I/O.
//
// # Overview
//
// Sequence index files hold several bit-vectors and tables that are read
// in place, never copied. Open maps a file read-only; Create sizes a new
// file and maps it read-write so a builder can write the bit-vectors
// directly into their final location.
//
// # Usage
//
//	m, err := mmap.Open("reads.bwt")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()                  // zero-copy access
//	region, _ := m.Region(off, size)   // view of one section
//	m.Advise(mmap.AccessRandom)        // kernel hint
//
//	w, err := mmap.Create("out.bwt", size)
//	copy(w.Bytes(), header)
//	w.Flush()
//	w.Close()
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2), msync(2) and madvise(2)
//   - Windows: CreateFileMapping/MapViewOfFile; advice is a no-op
//
// # Thread Safety
//
// Mapping and Region are safe for concurrent read access. Close is
// idempotent. Callers must ensure no goroutine touches Bytes() after
// Close returns.
package mmap
