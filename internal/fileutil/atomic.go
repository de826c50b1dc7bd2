// Package fileutil provides filesystem helpers for on-disk components: the
// encrypted vault store and the session cache go through WriteAtomic so a
// crash mid-write never leaves a half-written file where a reader expects a
// complete one. config.Save writes with os.WriteFile and does not use it.
package fileutil

import (
	"os"
	"path/filepath"

	"github.com/duskvault/duskvault/pkg/vaulterr"
)

// WriteAtomic writes data to path without ever leaving path itself in a
// partially-written state: it writes to a sibling temp file in path's
// directory, fsyncs the temp file's contents and permissions, renames it
// over path, then best-effort fsyncs the directory entry so the rename
// survives a crash on filesystems that need it.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return vaulterr.New(vaulterr.KindInvalidInput, "write path is empty")
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return vaulterr.Wrap(vaulterr.KindStorageUnavailable, err, "creating temp file for %s", path)
	}

	tmpPath := tmp.Name()
	closed := false
	defer func() {
		if !closed {
			_ = tmp.Close()
		}
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return vaulterr.Wrap(vaulterr.KindStorageUnavailable, err, "writing temp file for %s", path)
	}
	if err := tmp.Chmod(perm); err != nil {
		return vaulterr.Wrap(vaulterr.KindStorageUnavailable, err, "setting permissions on temp file for %s", path)
	}
	if err := tmp.Sync(); err != nil {
		return vaulterr.Wrap(vaulterr.KindStorageUnavailable, err, "syncing temp file for %s", path)
	}
	if err := tmp.Close(); err != nil {
		return vaulterr.Wrap(vaulterr.KindStorageUnavailable, err, "closing temp file for %s", path)
	}
	closed = true

	if err := os.Rename(tmpPath, path); err != nil { //nolint:gosec // G703: path is validated by callers, never taken directly from user input
		return vaulterr.Wrap(vaulterr.KindStorageUnavailable, err, "renaming temp file into place at %s", path)
	}

	syncDir(dir)
	return nil
}

// syncDir fsyncs dir so a completed rename is durable across a crash on
// filesystems where directory entries are not implicitly synced. Failure
// here is not reported: the rename itself already succeeded and the data is
// readable, just not guaranteed durable against a power loss in the
// following instant.
func syncDir(dir string) {
	f, err := os.Open(dir) //nolint:gosec // G304: dir is derived from a caller-validated path, not user input
	if err != nil {
		return
	}
	_ = f.Sync()
	_ = f.Close()
}
