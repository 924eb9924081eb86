package doorman

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func auditDoorman(t *testing.T) (*Doorman, string) {
	t.Helper()

	script := "#!/bin/sh\n" +
		"case \"$1\" in\n" +
		"--version) echo 'Docker version 25.0.6' ;;\n" +
		"ps) cat \"$DOORMAN_PS_PAYLOAD\" ;;\n" +
		"esac\n"
	d, _ := stubDoorman(t, script)

	live := filepath.Join(d.RunDir, "lord.1")
	payload := fmt.Sprintf(
		`[{"Id":"abc","Created":1,"Labels":{"doorman.user":"alice","doorman.door":"lord","doorman.node":"1","doorman.rundir":%q}}]`,
		live)

	payloadPath := filepath.Join(d.RunDir, "ps.json")
	if err := os.WriteFile(payloadPath, []byte(payload), 0o644); err != nil {
		t.Fatalf("couldn't write payload: %v", err)
	}
	t.Setenv("DOORMAN_PS_PAYLOAD", payloadPath)

	return d, live
}

func TestAuditFindsOrphans(t *testing.T) {
	d, live := auditDoorman(t)

	orphan := filepath.Join(d.RunDir, "lord.2")
	for _, dir := range []string{live, orphan, filepath.Join(d.RunDir, "podman")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
	}

	findings, err := d.Audit(false)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	if len(findings) != 1 {
		t.Fatalf("findings = %+v, want exactly the orphan", findings)
	}
	if findings[0].Path != orphan || findings[0].Repaired {
		t.Fatalf("unexpected finding: %+v", findings[0])
	}
	if _, err := os.Stat(orphan); err != nil {
		t.Fatal("audit without repair must not remove anything")
	}
}

func TestAuditRepairRemovesOrphans(t *testing.T) {
	d, live := auditDoorman(t)

	orphan := filepath.Join(d.RunDir, "tw2002.sysop")
	for _, dir := range []string{live, orphan} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
	}

	findings, err := d.Audit(true)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	if len(findings) != 1 || !findings[0].Repaired {
		t.Fatalf("findings = %+v", findings)
	}
	if _, err := os.Stat(orphan); !os.IsNotExist(err) {
		t.Fatal("repair must remove the orphaned workspace")
	}
	if _, err := os.Stat(live); err != nil {
		t.Fatal("repair must leave live workspaces alone")
	}
}

func TestIsWorkspaceName(t *testing.T) {
	cases := map[string]bool{
		"lord.1":      true,
		"lord.12":     true,
		"lord.sysop":  true,
		"lord":        false,
		"lord.lock":   false,
		"podman":      false,
		"podman-run":  false,
		".1":          false,
		"tw2002.b":    false,
	}
	for name, want := range cases {
		if got := isWorkspaceName(name); got != want {
			t.Errorf("isWorkspaceName(%q) = %v, want %v", name, got, want)
		}
	}
}
