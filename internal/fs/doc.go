// Package fs abstracts the file operations an index build performs outside
// its memory mapping, so tests can inject failures.
//
//   - [LocalFS]: the os package
//   - [FaultyFS]: wraps another FileSystem and fails writes, syncs, closes
//     or renames of files whose name contains a pattern
//
// Production code uses fs.Default.
package fs
