/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package types

import "time"

// Session is one running door session, reconstructed from the container
// engine's listing. Node is 0 for maintenance sessions, which carry the
// maintenance command name instead.
type Session struct {
	ContainerID string    `json:"container_id" yaml:"container_id"`
	User        string    `json:"user" yaml:"user"`
	Door        string    `json:"door" yaml:"door"`
	Node        int       `json:"node,omitempty" yaml:"node,omitempty"`
	Command     string    `json:"command,omitempty" yaml:"command,omitempty"`
	Since       time.Time `json:"since" yaml:"since"`

	// RunDir is the doorman.rundir label; used by audit to match
	// workspaces to live containers, not shown in listings.
	RunDir string `json:"-" yaml:"-"`
}
