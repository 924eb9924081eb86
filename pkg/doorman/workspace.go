package doorman

import (
	"fmt"
	"os"
	"path/filepath"
)

// stageWorkspace prepares the per-session directory under the rundir.
// Any leftovers from a previous run are removed first, so a crashed
// session can never leak files into a new one.
func (d *Doorman) stageWorkspace(name string) (string, error) {
	path := filepath.Join(d.RunDir, name)

	if err := os.RemoveAll(path); err != nil {
		return "", fmt.Errorf("couldn't clean up rundir %s: %w", path, err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("couldn't create rundir %s: %w", path, err)
	}

	return path, nil
}
