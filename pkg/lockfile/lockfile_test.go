package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "door.lock")

	lock, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer lock.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("lock file not created: %v", err)
	}
	if lock.Path() != path {
		t.Fatalf("Path() = %q, want %q", lock.Path(), path)
	}
}

func TestOpenFailsOnBadPath(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing", "door.lock")); err == nil {
		t.Fatal("expected error for unreachable path")
	}
}

// flock(2) treats independently opened descriptors as independent lock
// holders even within one process, so each Open below stands in for a
// separate doorman invocation.
func TestExclusiveExcludesExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.lock")

	first := mustOpen(t, path)
	second := mustOpen(t, path)

	ok, err := first.TryExclusive()
	if err != nil || !ok {
		t.Fatalf("first TryExclusive = %v, %v", ok, err)
	}

	ok, err = second.TryExclusive()
	if err != nil {
		t.Fatalf("second TryExclusive: %v", err)
	}
	if ok {
		t.Fatal("second claimant acquired an already-held exclusive lock")
	}
}

func TestSharedHoldersCoexist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "door.lock")

	for i := 0; i < 3; i++ {
		lock := mustOpen(t, path)
		ok, err := lock.TryShared()
		if err != nil || !ok {
			t.Fatalf("shared holder %d: ok=%v err=%v", i, ok, err)
		}
	}
}

func TestSharedExcludesExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "door.lock")

	player := mustOpen(t, path)
	if ok, err := player.TryShared(); err != nil || !ok {
		t.Fatalf("TryShared = %v, %v", ok, err)
	}

	sysop := mustOpen(t, path)
	ok, err := sysop.TryExclusive()
	if err != nil {
		t.Fatalf("TryExclusive: %v", err)
	}
	if ok {
		t.Fatal("exclusive lock acquired while a shared holder exists")
	}
}

func TestExclusiveExcludesShared(t *testing.T) {
	path := filepath.Join(t.TempDir(), "door.lock")

	sysop := mustOpen(t, path)
	if ok, err := sysop.TryExclusive(); err != nil || !ok {
		t.Fatalf("TryExclusive = %v, %v", ok, err)
	}

	player := mustOpen(t, path)
	ok, err := player.TryShared()
	if err != nil {
		t.Fatalf("TryShared: %v", err)
	}
	if ok {
		t.Fatal("shared lock acquired while an exclusive holder exists")
	}
}

func TestUnlockIsVisibleImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.lock")

	first := mustOpen(t, path)
	if ok, err := first.TryExclusive(); err != nil || !ok {
		t.Fatalf("TryExclusive = %v, %v", ok, err)
	}
	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	second := mustOpen(t, path)
	ok, err := second.TryExclusive()
	if err != nil || !ok {
		t.Fatalf("lock not reacquirable after unlock: ok=%v err=%v", ok, err)
	}
}

func TestCloseReleasesLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.lock")

	first := mustOpen(t, path)
	if ok, err := first.TryExclusive(); err != nil || !ok {
		t.Fatalf("TryExclusive = %v, %v", ok, err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second := mustOpen(t, path)
	ok, err := second.TryExclusive()
	if err != nil || !ok {
		t.Fatalf("lock not reacquirable after close: ok=%v err=%v", ok, err)
	}
}

// With N slots and N+1 claimants, exactly N win their own slot and the
// extra claimant finds every slot taken.
func TestSlotCapacity(t *testing.T) {
	dir := t.TempDir()
	const slots = 3

	scan := func() (*Lock, bool) {
		for node := 1; node <= slots; node++ {
			lock := mustOpen(t, filepath.Join(dir, fmt.Sprintf("door.%d.lock", node)))
			ok, err := lock.TryExclusive()
			if err != nil {
				t.Fatalf("TryExclusive: %v", err)
			}
			if ok {
				return lock, true
			}
			lock.Close()
		}
		return nil, false
	}

	var winners int
	for claimant := 0; claimant < slots+1; claimant++ {
		if _, ok := scan(); ok {
			winners++
		}
	}
	if winners != slots {
		t.Fatalf("winners = %d, want %d", winners, slots)
	}
}

func mustOpen(t *testing.T, path string) *Lock {
	t.Helper()
	lock, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	t.Cleanup(func() { lock.Close() })
	return lock
}
