// Package lockfile wraps flock(2) advisory locks for coordinating door
// and node usage between separate doorman invocations. Locks are
// advisory: they only exclude other cooperating doorman processes.
package lockfile

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Lock is an open handle on a lock file. A process holds at most one
// handle per path; the kernel releases any held lock when the handle is
// closed or the process exits.
type Lock struct {
	path string
	file *os.File
}

// Open opens the lock file at path, creating it if absent. No lock is
// taken yet.
func Open(path string) (*Lock, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("couldn't open lockfile %s: %w", path, err)
	}
	return &Lock{path: path, file: file}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// TryShared attempts a non-blocking shared lock. It returns false when
// another process holds the lock exclusively.
func (l *Lock) TryShared() (bool, error) {
	return l.try(unix.LOCK_SH)
}

// TryExclusive attempts a non-blocking exclusive lock. It returns false
// when any other process holds the lock.
func (l *Lock) TryExclusive() (bool, error) {
	return l.try(unix.LOCK_EX)
}

// Exclusive takes an exclusive lock, blocking until it is acquired.
func (l *Lock) Exclusive() error {
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("couldn't lock %s: %w", l.path, err)
	}
	return nil
}

// Unlock releases the lock. Other processes see the release immediately.
func (l *Lock) Unlock() error {
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		return fmt.Errorf("couldn't unlock %s: %w", l.path, err)
	}
	return nil
}

// Close releases the lock, if held, and closes the underlying file.
func (l *Lock) Close() error {
	return l.file.Close()
}

func (l *Lock) try(how int) (bool, error) {
	err := unix.Flock(int(l.file.Fd()), how|unix.LOCK_NB)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, unix.EWOULDBLOCK) {
		return false, nil
	}
	return false, fmt.Errorf("couldn't lock %s: %w", l.path, err)
}
