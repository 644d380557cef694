// Package hash provides the checksum used to detect corruption of index
// files.
//
// # CRC32-Castagnoli (CRC32C)
//
// An index file stores the CRC32C of every byte between its fixed prefix
// and its header. Go's hash/crc32 uses SSE4.2 or the ARM CRC extension
// when available, so verifying a large file is bounded by memory
// bandwidth.
//
//	sum := hash.CRC32C(data)
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	sum := h.Sum32()
package hash
