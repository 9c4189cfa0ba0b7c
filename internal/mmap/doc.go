// Package mmap maps files into memory for direct read/write access.
//
// # Usage
//
//	m, err := mmap.Map(f, size, mmap.ReadWrite)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()   // shared mapping, writes reach the file
//	err = m.Flush()     // msync(MS_SYNC)
//
// # Thread Safety
//
// A Mapping is safe for concurrent access to Bytes. Close is idempotent.
// Callers must not touch slices obtained from Bytes after Close returns.
//
// Only unix platforms are supported.
package mmap
