/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */

// Package config loads doorman.yml and resolves the runtime context a
// command operates in: directories, calling user, and the container
// engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mirkobrombin/doorman/pkg/engine"
	"github.com/mirkobrombin/doorman/pkg/identity"
	"github.com/mirkobrombin/doorman/pkg/types"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigEnv overrides the config file location.
	ConfigEnv = "DOORMAN_CONFIG"

	// DefaultImage is the dosemu container image used when the config
	// doesn't name one.
	DefaultImage = "ghcr.io/jordemort/doorman-dosemu:main"
)

// Config is the resolved runtime context for one doorman invocation.
type Config struct {
	DataDir string
	RunDir  string
	Image   string

	// User is the identity door sessions run as; sysops may switch it.
	User identity.User

	// UID and GID are the ids doorman itself runs under, passed to the
	// engine as --user.
	UID int
	GID int

	Engine engine.Engine

	sysops []string
	doors  map[string]types.DoorOptions
}

// Load resolves the calling user, narrows privileges, reads the
// configuration file and detects the container engine. explicitPath
// wins over DOORMAN_CONFIG and the search path.
func Load(explicitPath string) (*Config, error) {
	user, err := identity.Calling()
	if err != nil {
		return nil, err
	}

	if err := identity.DropPrivileges(); err != nil {
		return nil, err
	}

	path, err := ResolvePath(explicitPath)
	if err != nil {
		return nil, err
	}

	file, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	datadir := file.Doorman.DataDir
	if datadir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		datadir = filepath.Join(home, ".local", "share", "doorman")
	}
	if err := os.MkdirAll(datadir, 0o755); err != nil {
		return nil, fmt.Errorf("couldn't create datadir %s: %w", datadir, err)
	}

	rundir := file.Doorman.RunDir
	if rundir == "" {
		if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
			rundir = filepath.Join(xdg, "doorman")
		} else {
			rundir = filepath.Join(datadir, "run")
		}
	}
	if err := os.MkdirAll(rundir, 0o755); err != nil {
		return nil, fmt.Errorf("couldn't create rundir %s: %w", rundir, err)
	}

	eng, err := engine.Detect(file.Container.EnginePath, file.Container.RootlessPodman)
	if err != nil {
		return nil, err
	}

	return &Config{
		DataDir: datadir,
		RunDir:  rundir,
		Image:   file.Container.DosemuImage,
		User:    user,
		UID:     os.Getuid(),
		GID:     os.Getgid(),
		Engine:  eng,
		sysops:  file.Doorman.Sysops,
		doors:   file.Doors,
	}, nil
}

// ResolvePath picks the config file location: the explicit path, then
// DOORMAN_CONFIG, then the user config dir, then /etc.
func ResolvePath(explicitPath string) (string, error) {
	if explicitPath != "" {
		return explicitPath, nil
	}
	if env := os.Getenv(ConfigEnv); env != "" {
		return env, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	candidates := []string{
		filepath.Join(home, ".config", "doorman", "doorman.yml"),
		filepath.Join("/", "etc", "doorman", "doorman.yml"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no doorman.yml found; set %s or create %s", ConfigEnv, candidates[0])
}

// LoadFile parses doorman.yml at path and applies defaults.
func LoadFile(path string) (*types.ConfigFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open config file %s: %w", path, err)
	}

	var file types.ConfigFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("couldn't parse config file %s: %w", path, err)
	}

	if file.Container.DosemuImage == "" {
		file.Container.DosemuImage = DefaultImage
	}

	for name, door := range file.Doors {
		if door.DoorPath == "" {
			return nil, fmt.Errorf("door %q has no path", name)
		}
		if door.LaunchCommands == "" {
			return nil, fmt.Errorf("door %q has no launch_commands", name)
		}
		if door.MaxNodes <= 0 {
			door.MaxNodes = 1
			file.Doors[name] = door
		}
	}

	return &file, nil
}

// GetDoor returns the named door.
func (c *Config) GetDoor(name string) (types.Door, error) {
	options, ok := c.doors[name]
	if !ok {
		return types.Door{}, fmt.Errorf("unknown door %q", name)
	}
	return types.Door{Name: name, Options: options}, nil
}

// IsSysop reports whether the calling user may run maintenance
// commands. The owning identity of a setuid doorman install is always a
// sysop; everyone else must be listed in doorman.sysops.
func (c *Config) IsSysop() bool {
	if c.User.UID == c.UID {
		return true
	}
	for _, sysop := range c.sysops {
		if sysop == c.User.Username {
			return true
		}
	}
	return false
}

// SwitchUser replaces the session identity. Only sysops may switch.
func (c *Config) SwitchUser(spec identity.SwitchSpec) error {
	if !c.IsSysop() {
		return fmt.Errorf("only sysops can switch identities")
	}

	user, err := identity.Switch(c.User, spec)
	if err != nil {
		return err
	}

	c.User = user
	return nil
}
