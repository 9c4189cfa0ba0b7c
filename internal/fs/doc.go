// Package fs provides the filesystem seam used by the deque: a small
// [FileSystem] interface, the production [LocalFS], the atomic replace
// primitive [WriteFileAtomic] with its directory barrier [SyncDir], and
// [FaultyFS] for injecting I/O failures in tests.
//
// Operations take no context.Context; local file syscalls are not
// interruptible.
package fs
