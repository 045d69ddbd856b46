package shared

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// StoreLock holds an exclusive advisory lock on the local store so only one process writes each key.
type StoreLock struct {
	lock *flock.Flock
}

// AcquireLock takes the lock at path without blocking.
//
// Returns [ErrStoreLocked] when another process already holds it.
func AcquireLock(path string) (*StoreLock, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create lock directory: %w", err)
		}
	}

	l := flock.New(path)
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStoreLocked, path)
	}
	return &StoreLock{lock: l}, nil
}

// Path returns the lock file path.
func (s *StoreLock) Path() string {
	return s.lock.Path()
}

// Release unlocks the store. Safe to call on a nil lock.
func (s *StoreLock) Release() error {
	if s == nil || s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}
