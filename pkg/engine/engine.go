/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */

// Package engine abstracts the container engine CLI used to run door
// sessions. Podman and docker are the only supported engines; the
// variant is picked once at startup and exposed behind the Engine
// interface so call sites never inspect the engine kind themselves.
package engine

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mirkobrombin/doorman/pkg/logger"
)

// RunSpec describes one `run` invocation: the identity the container
// runs as, plus its bind mounts, environment and labels.
type RunSpec struct {
	UID int
	GID int

	// Volumes maps host paths to container paths.
	Volumes map[string]string
	Env     map[string]string
	Labels  map[string]string
}

// Engine builds argument lists for one concrete container engine.
type Engine interface {
	// Name returns "podman" or "docker".
	Name() string

	// Path returns the engine binary path.
	Path() string

	// Rootless reports whether the engine runs in rootless-podman mode.
	Rootless() bool

	// GlobalArgs returns the arguments that go before the engine
	// subcommand on every invocation.
	GlobalArgs(rundir string) []string

	// RunArgs returns the arguments for a `run` invocation, after the
	// subcommand and before the image reference.
	RunArgs(spec RunSpec) []string
}

type podmanEngine struct {
	path     string
	rootless bool
}

type dockerEngine struct {
	path string
}

// Detect finds and classifies the container engine. When explicitPath is
// empty, PATH is probed for podman first, then docker. rootlessOverride
// skips rootless detection when non-nil.
func Detect(explicitPath string, rootlessOverride *bool) (Engine, error) {
	path := explicitPath
	if path == "" {
		var err error
		path, err = exec.LookPath("podman")
		if err != nil {
			path, err = exec.LookPath("docker")
			if err != nil {
				return nil, fmt.Errorf("couldn't find podman or docker in PATH")
			}
		}
	}

	out, err := exec.Command(path, "--version").Output()
	if err != nil {
		return nil, fmt.Errorf("couldn't run %s --version: %w", path, err)
	}

	name, err := classify(string(out))
	if err != nil {
		return nil, err
	}

	if name == "docker" {
		return &dockerEngine{path: path}, nil
	}

	rootless := false
	if rootlessOverride != nil {
		rootless = *rootlessOverride
	} else {
		rootless = probeRootless(path)
	}

	return &podmanEngine{path: path, rootless: rootless}, nil
}

// classify decides the engine variant from `--version` output.
func classify(versionOutput string) (string, error) {
	upper := strings.ToUpper(versionOutput)
	switch {
	case strings.HasPrefix(upper, "PODMAN "):
		return "podman", nil
	case strings.HasPrefix(upper, "DOCKER "):
		return "docker", nil
	}
	return "", fmt.Errorf("unknown container engine: %q", strings.TrimSpace(versionOutput))
}

type podmanInfo struct {
	Host struct {
		Security struct {
			Rootless bool `json:"rootless"`
		} `json:"security"`
	} `json:"host"`
}

// probeRootless asks podman whether it runs rootless. Detection failures
// degrade to "not rootless" instead of blocking startup.
func probeRootless(path string) bool {
	out, err := exec.Command(path, "info", "--format=json").Output()
	if err != nil {
		logger.Debugf("rootless detection failed: %v", err)
		return false
	}

	var info podmanInfo
	if err := json.Unmarshal(out, &info); err != nil {
		logger.Debugf("couldn't parse podman info: %v", err)
		return false
	}

	return info.Host.Security.Rootless
}

func (e *podmanEngine) Name() string   { return "podman" }
func (e *podmanEngine) Path() string   { return e.path }
func (e *podmanEngine) Rootless() bool { return e.rootless }

// GlobalArgs points rootless podman at a storage root inside the rundir
// so sessions don't fight over the caller's default graph root.
func (e *podmanEngine) GlobalArgs(rundir string) []string {
	if !e.rootless {
		return nil
	}
	return []string{
		fmt.Sprintf("--root=%s", filepath.Join(rundir, "podman")),
		fmt.Sprintf("--runroot=%s", filepath.Join(rundir, "podman-run")),
		"--cgroup-manager=cgroupfs",
	}
}

func (e *podmanEngine) RunArgs(spec RunSpec) []string {
	args := buildRunArgs(spec)
	if e.rootless {
		args = append(args, "--userns=keep-id", "--passwd=false")
	}
	return args
}

func (e *dockerEngine) Name() string   { return "docker" }
func (e *dockerEngine) Path() string   { return e.path }
func (e *dockerEngine) Rootless() bool { return false }

func (e *dockerEngine) GlobalArgs(rundir string) []string { return nil }

func (e *dockerEngine) RunArgs(spec RunSpec) []string {
	return buildRunArgs(spec)
}

// buildRunArgs emits the engine-neutral part of a run invocation: the
// fixed prefix, then volumes, environment and labels. The relative order
// of entries within each map is not significant; the prefix order is.
func buildRunArgs(spec RunSpec) []string {
	args := []string{
		fmt.Sprintf("--user=%d:%d", spec.UID, spec.GID),
		"--tmpfs=/run/user",
		"--tmpfs=/tmp",
		"--tmpfs=/var/tmp",
	}

	for host, container := range spec.Volumes {
		args = append(args, fmt.Sprintf("-v%s:%s", host, container))
	}

	for key, value := range spec.Env {
		args = append(args, fmt.Sprintf("-e%s=%s", key, value))
	}

	for key, value := range spec.Labels {
		args = append(args, fmt.Sprintf("-l%s=%s", key, value))
	}

	return args
}
