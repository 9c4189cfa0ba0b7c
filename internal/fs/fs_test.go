package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	assert.NoError(t, lfs.MkdirAll(dir, 0755))

	fpath := filepath.Join(dir, "test.txt")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.NoError(t, f.Sync())
	assert.NoError(t, f.Truncate(8))
	assert.NoError(t, f.Close())

	info, err := lfs.Stat(fpath)
	require.NoError(t, err)
	assert.Equal(t, int64(8), info.Size())

	ok, err := Exists(lfs, fpath)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Exists(lfs, filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	entries, err := lfs.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.NoError(t, lfs.Remove(fpath))
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.bin")

	require.NoError(t, WriteFileAtomic(Default, path, []byte("first"), 0644))
	require.NoError(t, WriteFileAtomic(Default, path, []byte("second"), 0644))

	data, err := ReadFile(Default, path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	_, err = os.Stat(path + TempSuffix)
	assert.True(t, os.IsNotExist(err), "temp file must not survive a successful write")
}

func TestWriteFileAtomic_FailedRenameKeepsOldContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.bin")
	require.NoError(t, WriteFileAtomic(Default, path, []byte("old"), 0644))

	ffs := NewFaultyFS(nil)
	injected := errors.New("disk on fire")
	ffs.AddRule("metadata.bin.tmp", Fault{FailAfterBytes: -1, FailOnRename: true, Err: injected})

	err := WriteFileAtomic(ffs, path, []byte("new"), 0644)
	require.Error(t, err)
	assert.ErrorIs(t, err, injected)

	data, err := ReadFile(Default, path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	_, err = os.Stat(path + TempSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS_SyncAndWriteLimit(t *testing.T) {
	dir := t.TempDir()
	ffs := NewFaultyFS(nil)
	ffs.AddRule("sync-fails", Fault{FailAfterBytes: -1, FailOnSync: true})
	ffs.AddRule("short", Fault{FailAfterBytes: 3})

	f, err := ffs.OpenFile(filepath.Join(dir, "sync-fails"), os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)
	assert.Error(t, f.Sync())
	require.NoError(t, f.Close())

	g, err := ffs.OpenFile(filepath.Join(dir, "short"), os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)
	_, err = g.Write([]byte("abcd"))
	assert.Error(t, err)
	_, err = g.Write([]byte("ab"))
	assert.NoError(t, err)
	require.NoError(t, g.Close())

	ffs.ClearRules()
	h, err := ffs.OpenFile(filepath.Join(dir, "sync-fails"), os.O_RDWR, 0644)
	require.NoError(t, err)
	assert.NoError(t, h.Sync())
	require.NoError(t, h.Close())
}
