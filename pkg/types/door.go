package types

// DoorOptions is the per-door section of doorman.yml.
type DoorOptions struct {
	// DoorPath is the path to the door files; this will be mounted as
	// drive Z: in DOSEMU.
	DoorPath string `yaml:"path" json:"path" jsonschema:"required"`

	// MaxNodes is the number of concurrent players to allow.
	// Make sure you have this many nodes configured in your door!
	// Defaults to 1.
	MaxNodes int `yaml:"max_nodes" json:"max_nodes,omitempty"`

	// LaunchCommands is the DOS command to launch the door.
	LaunchCommands string `yaml:"launch_commands" json:"launch_commands" jsonschema:"required"`

	// ConfigureCommands is the DOS commands to launch the door's
	// configuration program.
	ConfigureCommands string `yaml:"configure_commands" json:"configure_commands,omitempty"`

	// NightlyCommands is the DOS commands to run the door's nightly
	// maintenance.
	NightlyCommands string `yaml:"nightly_commands" json:"nightly_commands,omitempty"`
}

// Door is a configured door together with its name.
type Door struct {
	Name    string
	Options DoorOptions
}
