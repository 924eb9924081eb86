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
	"github.com/mirkobrombin/doorman/pkg/logger"
	"github.com/spf13/cobra"
)

// NewAuditCommand creates the `audit` command, which reconciles the
// rundir against the engine's running containers and optionally removes
// orphaned session workspaces.
func NewAuditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Find (and optionally remove) orphaned session workspaces",
		Args:  cobra.NoArgs,
		RunE:  AuditRundir,
	}
	cmd.Flags().Bool("repair", false, "Remove orphaned workspaces")

	return cmd
}

func auditError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while auditing the rundir: %s", iErr)
	return
}

func AuditRundir(cmd *cobra.Command, args []string) (err error) {
	configPath, _ := cmd.Flags().GetString("config")
	repair, _ := cmd.Flags().GetBool("repair")

	cfg, err := config.Load(configPath)
	if err != nil {
		return auditError(err)
	}

	findings, err := doorman.New(cfg).Audit(repair)
	if err != nil {
		return auditError(err)
	}

	if len(findings) == 0 {
		logger.Println("Rundir matches the running containers, nothing to do.")
		return nil
	}

	for _, finding := range findings {
		if finding.Repaired {
			logger.Printf("Removed orphaned workspace %s", finding.Path)
		} else {
			logger.Printf("Orphaned workspace %s (use --repair to remove)", finding.Path)
		}
	}

	return nil
}
