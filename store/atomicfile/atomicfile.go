// Package atomicfile replaces files so that readers never observe a partial
// write: data goes to a temporary file in the same directory which is then
// renamed over the target.
package atomicfile

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"emperror.dev/errors"
	"github.com/gofrs/flock"
)

const lockRetryDelay = 10 * time.Millisecond

// LockPath is the lock file guarding writers of path.
func LockPath(path string) string {
	return path + ".lock"
}

// WriteFile atomically replaces path with data. Concurrent writers of the same
// path, in this process or another, are serialized by a lock file.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	return WriteFileContext(context.Background(), path, data, perm)
}

// WriteFileContext is WriteFile with a bound on how long to wait for the lock.
func WriteFileContext(ctx context.Context, path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrapf(err, "failed to create dir %s", dir)
	}

	fileLock := flock.New(LockPath(path))
	locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return errors.Wrapf(err, "failed to lock %s", path)
	}
	if !locked {
		return errors.Errorf("failed to lock %s", path)
	}
	defer func() {
		if uerr := fileLock.Unlock(); uerr != nil {
			err = errors.Append(err, errors.Wrapf(uerr, "failed to unlock %s", path))
		}
	}()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "failed to create temp file for %s", path)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errors.Wrapf(err, "failed to write %s", tmp.Name())
	}
	if err = tmp.Chmod(perm); err != nil {
		return errors.Wrapf(err, "failed to chmod %s", tmp.Name())
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrapf(err, "failed to sync %s", tmp.Name())
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", tmp.Name())
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "failed to finalize %s", path)
	}
	return nil
}
