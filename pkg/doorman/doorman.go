/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */

// Package doorman contains the session and maintenance orchestrators:
// the lock-scan-stage-run state machines that put a caller inside a
// door container without ever double-booking a node.
package doorman

import (
	"os"
	"os/exec"

	"github.com/mirkobrombin/doorman/pkg/config"
	"github.com/mirkobrombin/doorman/pkg/engine"
	"github.com/mirkobrombin/doorman/pkg/identity"
)

// Doorman drives door sessions for one resolved configuration.
type Doorman struct {
	RunDir string
	Image  string

	User identity.User
	UID  int
	GID  int

	// Sysop gates maintenance commands and identity switching.
	Sysop bool

	Engine engine.Engine
}

// New builds a Doorman from a loaded configuration.
func New(cfg *config.Config) *Doorman {
	return &Doorman{
		RunDir: cfg.RunDir,
		Image:  cfg.Image,
		User:   cfg.User,
		UID:    cfg.UID,
		GID:    cfg.GID,
		Sysop:  cfg.IsSysop(),
		Engine: cfg.Engine,
	}
}

// command builds an engine invocation: engine-global arguments, then the
// subcommand, then args.
func (d *Doorman) command(subcommand string, args ...string) *exec.Cmd {
	full := append([]string{}, d.Engine.GlobalArgs(d.RunDir)...)
	full = append(full, subcommand)
	full = append(full, args...)
	return exec.Command(d.Engine.Path(), full...)
}

// termType returns the terminal type to pass into the container.
func termType() string {
	if term := os.Getenv("TERM"); term != "" {
		return term
	}
	return "xterm"
}
