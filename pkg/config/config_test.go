package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mirkobrombin/doorman/pkg/identity"
	"github.com/mirkobrombin/doorman/pkg/types"
)

const sampleConfig = `
doorman:
  rundir: /run/doorman
  sysops:
    - alice

container:
  engine_path: /usr/bin/podman

doors:
  lord:
    path: /srv/doors/lord
    max_nodes: 2
    launch_commands: "C:\\LORD\\START.BAT {{.Node}}"
    nightly_commands: "C:\\LORD\\LORDNITE.EXE"
  ansi:
    path: /srv/doors/ansi
    launch_commands: "ANSI.EXE"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doorman.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("couldn't write config: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	file, err := LoadFile(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if file.Doorman.RunDir != "/run/doorman" {
		t.Errorf("RunDir = %q", file.Doorman.RunDir)
	}
	if file.Container.DosemuImage != DefaultImage {
		t.Errorf("image default not applied: %q", file.Container.DosemuImage)
	}

	lord := file.Doors["lord"]
	if lord.MaxNodes != 2 {
		t.Errorf("lord.MaxNodes = %d", lord.MaxNodes)
	}
	if lord.NightlyCommands == "" || lord.ConfigureCommands != "" {
		t.Errorf("lord commands parsed wrong: %+v", lord)
	}

	ansi := file.Doors["ansi"]
	if ansi.MaxNodes != 1 {
		t.Errorf("max_nodes default = %d, want 1", ansi.MaxNodes)
	}
}

func TestLoadFileRejectsPathlessDoor(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "doors:\n  broken:\n    launch_commands: GO.BAT\n"))
	if err == nil {
		t.Fatal("expected error for door without path")
	}
}

func TestLoadFileRejectsLaunchlessDoor(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "doors:\n  broken:\n    path: /srv/doors/broken\n"))
	if err == nil {
		t.Fatal("expected error for door without launch_commands")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFileBadYAML(t *testing.T) {
	if _, err := LoadFile(writeConfig(t, "doors: [not: a map")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestResolvePathPrecedence(t *testing.T) {
	explicit := writeConfig(t, sampleConfig)
	fromEnv := writeConfig(t, sampleConfig)

	t.Setenv(ConfigEnv, fromEnv)

	got, err := ResolvePath(explicit)
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if got != explicit {
		t.Fatalf("explicit path must win, got %q", got)
	}

	got, err = ResolvePath("")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if got != fromEnv {
		t.Fatalf("env path must win over search path, got %q", got)
	}
}

func testConfig() *Config {
	return &Config{
		User:   identity.User{UID: 1000, Username: "bob", DisplayName: "Bob"},
		UID:    900,
		GID:    900,
		sysops: []string{"alice"},
		doors: map[string]types.DoorOptions{
			"lord": {DoorPath: "/srv/doors/lord", MaxNodes: 2, LaunchCommands: "START.BAT"},
		},
	}
}

func TestGetDoor(t *testing.T) {
	cfg := testConfig()

	door, err := cfg.GetDoor("lord")
	if err != nil {
		t.Fatalf("GetDoor: %v", err)
	}
	if door.Name != "lord" || door.Options.MaxNodes != 2 {
		t.Fatalf("unexpected door: %+v", door)
	}

	if _, err := cfg.GetDoor("tw2002"); err == nil {
		t.Fatal("expected error for unknown door")
	}
}

func TestIsSysop(t *testing.T) {
	cfg := testConfig()
	if cfg.IsSysop() {
		t.Fatal("bob must not be a sysop")
	}

	cfg.User.Username = "alice"
	if !cfg.IsSysop() {
		t.Fatal("alice is listed in sysops")
	}

	cfg.User = identity.User{UID: 900, Username: "doorman"}
	if !cfg.IsSysop() {
		t.Fatal("the owning identity is always a sysop")
	}
}

func TestSwitchUserRequiresSysop(t *testing.T) {
	cfg := testConfig()

	if err := cfg.SwitchUser(identity.SwitchSpec{Username: "alice"}); err == nil {
		t.Fatal("non-sysop switched identities")
	}
}

func TestSwitchUserSynthetic(t *testing.T) {
	cfg := testConfig()
	cfg.User.Username = "alice"

	uid := 4242
	err := cfg.SwitchUser(identity.SwitchSpec{Username: "ghost", UID: &uid, DisplayName: "Ghost"})
	if err != nil {
		t.Fatalf("SwitchUser: %v", err)
	}
	if cfg.User.UID != 4242 || cfg.User.Username != "ghost" || cfg.User.DisplayName != "Ghost" {
		t.Fatalf("unexpected user: %+v", cfg.User)
	}
}
