package fs

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// TempSuffix is appended to the target name while an atomic write is in flight.
const TempSuffix = ".tmp"

// WriteFileAtomic replaces path with data so that readers only ever see the
// old content or the complete new content. The data is written and fsynced
// to path+TempSuffix, renamed over path, and the parent directory is synced
// so the rename itself is durable.
func WriteFileAtomic(fsys FileSystem, path string, data []byte, perm os.FileMode) error {
	tmpPath := path + TempSuffix
	f, err := fsys.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return errors.Wrapf(err, "create %s", tmpPath)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		fsys.Remove(tmpPath)
		return errors.Wrapf(err, "write %s", tmpPath)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		fsys.Remove(tmpPath)
		return errors.Wrapf(err, "sync %s", tmpPath)
	}
	if err := f.Close(); err != nil {
		fsys.Remove(tmpPath)
		return errors.Wrapf(err, "close %s", tmpPath)
	}

	if err := fsys.Rename(tmpPath, path); err != nil {
		fsys.Remove(tmpPath)
		return errors.Wrapf(err, "rename %s", tmpPath)
	}

	return SyncDir(fsys, filepath.Dir(path))
}

// SyncDir fsyncs a directory so entries created or renamed in it survive a crash.
func SyncDir(fsys FileSystem, dir string) error {
	f, err := fsys.OpenFile(dir, os.O_RDONLY, 0)
	if err != nil {
		return errors.Wrapf(err, "open dir %s", dir)
	}
	defer f.Close()
	if err := f.Sync(); err != nil {
		return errors.Wrapf(err, "sync dir %s", dir)
	}
	return nil
}
