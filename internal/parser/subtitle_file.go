package parser

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// WriteSubtitleFile replaces path with data. The write goes to a temporary
// file in the same directory that is renamed over path, under an advisory
// lock so that two runs for the same media file do not interleave.
func WriteSubtitleFile(path string, data []byte) error {
	lock, err := lockTarget(path)
	if err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer releaseTarget(lock)

	tmp, err := os.CreateTemp(filepath.Dir(path), ".submatch-*.srt")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmpName, err)
	}
	return nil
}

// lockTarget takes the lock file for path. Holders delete the lock file before
// unlocking, so a lock that ends up on a deleted file is taken again.
func lockTarget(path string) (*flock.Flock, error) {
	name := lockPath(path)
	for {
		lock := flock.New(name)
		if err := lock.Lock(); err != nil {
			return nil, err
		}

		held, err := lock.Stat()
		if err != nil {
			_ = lock.Unlock()
			return nil, err
		}
		current, err := os.Stat(name)
		if err == nil && os.SameFile(held, current) {
			return lock, nil
		}
		_ = lock.Unlock()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
}

func releaseTarget(lock *flock.Flock) {
	_ = os.Remove(lock.Path())
	_ = lock.Unlock()
}

// lockPath derives a stable lock file in the temp directory from the
// absolute target path, keeping media folders free of lock files.
func lockPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	name := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+path)).String()
	return filepath.Join(os.TempDir(), "submatch-"+name+".lock")
}
