/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package cmd

import (
	"fmt"

	"github.com/mirkobrombin/doorman/pkg/config"
	"github.com/mirkobrombin/doorman/pkg/doorman"
	"github.com/mirkobrombin/doorman/pkg/types"
	"github.com/spf13/cobra"
)

func NewConfigureCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure <door>",
		Short: "Launch a door's configuration program (sysops only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSysopCommand(cmd, args, "configure")
		},
	}
	cmd.Flags().BoolP("nowait", "n", false, "Fail immediately if the door is busy")

	return cmd
}

func NewNightlyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nightly <door>",
		Short: "Run a door's nightly maintenance (sysops only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSysopCommand(cmd, args, "nightly")
		},
	}
	cmd.Flags().BoolP("nowait", "n", false, "Fail immediately if the door is busy")

	return cmd
}

func sysopError(command string, iErr error) (err error) {
	err = fmt.Errorf("an error occurred while running %s: %s", command, iErr)
	return
}

func runSysopCommand(cmd *cobra.Command, args []string, command string) (err error) {
	configPath, _ := cmd.Flags().GetString("config")
	nowait, _ := cmd.Flags().GetBool("nowait")

	cfg, err := config.Load(configPath)
	if err != nil {
		return sysopError(command, err)
	}

	door, err := cfg.GetDoor(args[0])
	if err != nil {
		return sysopError(command, err)
	}

	d := doorman.New(cfg)

	var run func(types.Door, bool) error
	switch command {
	case "configure":
		run = d.Configure
	case "nightly":
		run = d.Nightly
	}

	if err = run(door, nowait); err != nil {
		return sysopError(command, err)
	}

	return nil
}
