/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package types

// DoormanOptions holds the options relating to doorman itself.
type DoormanOptions struct {
	// DataDir is the location of doorman's persistent data.
	DataDir string `yaml:"datadir" json:"datadir,omitempty"`

	// RunDir is the location of doorman's lockfiles and other
	// ephemeral data.
	RunDir string `yaml:"rundir" json:"rundir,omitempty"`

	// Sysops is the list of users that should be considered sysops.
	Sysops []string `yaml:"sysops" json:"sysops,omitempty"`
}

// ContainerOptions holds the options relating to how doorman runs
// containers.
type ContainerOptions struct {
	// EnginePath is the path to the container engine binary,
	// i.e. /path/to/podman or /path/to/docker. When empty, PATH is
	// probed for podman first, then docker.
	EnginePath string `yaml:"engine_path" json:"engine_path,omitempty"`

	// RootlessPodman overrides rootless detection. When nil, doorman
	// asks the engine itself.
	RootlessPodman *bool `yaml:"rootless_podman" json:"rootless_podman,omitempty"`

	// DosemuImage is the container image with dosemu.
	// Defaults to ghcr.io/jordemort/doorman-dosemu:main.
	DosemuImage string `yaml:"dosemu_image" json:"dosemu_image,omitempty"`
}

// ConfigFile is the on-disk shape of doorman.yml.
type ConfigFile struct {
	// Doorman holds the options relating to doorman itself.
	Doorman DoormanOptions `yaml:"doorman" json:"doorman"`

	// Container holds the options relating to how doorman runs
	// containers.
	Container ContainerOptions `yaml:"container" json:"container"`

	// Doors holds the door definitions, keyed by door name.
	Doors map[string]DoorOptions `yaml:"doors" json:"doors"`
}
