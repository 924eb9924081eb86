package doorman

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AuditFinding is one workspace directory with no matching running
// container.
type AuditFinding struct {
	Path     string
	Repaired bool
}

// Audit reconciles the rundir against the engine's running containers.
// A session workspace whose container is gone is an orphan: harmless,
// since the next claim of that node removes it anyway, but audit lets a
// sysop clean up eagerly with repair.
func (d *Doorman) Audit(repair bool) ([]AuditFinding, error) {
	sessions, err := d.Who("")
	if err != nil {
		return nil, err
	}

	live := map[string]bool{}
	for _, session := range sessions {
		if session.RunDir != "" {
			live[session.RunDir] = true
		}
	}

	entries, err := os.ReadDir(d.RunDir)
	if err != nil {
		return nil, fmt.Errorf("couldn't read rundir %s: %w", d.RunDir, err)
	}

	findings := []AuditFinding{}
	for _, entry := range entries {
		if !entry.IsDir() || !isWorkspaceName(entry.Name()) {
			continue
		}

		path := filepath.Join(d.RunDir, entry.Name())
		if live[path] {
			continue
		}

		finding := AuditFinding{Path: path}
		if repair {
			if err := os.RemoveAll(path); err != nil {
				return findings, fmt.Errorf("couldn't remove orphaned workspace %s: %w", path, err)
			}
			finding.Repaired = true
		}
		findings = append(findings, finding)
	}

	return findings, nil
}

// isWorkspaceName reports whether name looks like a session workspace:
// "{door}.{node}" or "{door}.sysop".
func isWorkspaceName(name string) bool {
	door, suffix, found := strings.Cut(name, ".")
	if !found || door == "" {
		return false
	}
	if suffix == "sysop" {
		return true
	}
	_, err := strconv.Atoi(suffix)
	return err == nil
}
