package cmd

import (
	"fmt"

	"github.com/mirkobrombin/doorman/pkg/config"
	"github.com/mirkobrombin/doorman/pkg/doorman"
	"github.com/mirkobrombin/doorman/pkg/identity"
	"github.com/spf13/cobra"
)

func NewLaunchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launch <door>",
		Short: "Launch a door",
		Long: `Launch a door.

Finds a free node for the door, stages its session files and drops you
into an interactive session inside the door container.`,
		Args: cobra.ExactArgs(1),
		RunE: LaunchDoor,
	}
	cmd.Flags().BoolP("raw", "r", false, "Don't translate from ANSI+CP437")
	cmd.Flags().StringP("user", "u", "", "User to run the door as (sysops only)")
	cmd.Flags().Int("user-id", 0, "Numeric id to run the door as (sysops only)")
	cmd.Flags().String("display-name", "", "Display name to show inside the door (sysops only)")

	return cmd
}

func launchError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while launching the door: %s", iErr)
	return
}

func LaunchDoor(cmd *cobra.Command, args []string) (err error) {
	configPath, _ := cmd.Flags().GetString("config")
	raw, _ := cmd.Flags().GetBool("raw")
	username, _ := cmd.Flags().GetString("user")
	displayName, _ := cmd.Flags().GetString("display-name")

	cfg, err := config.Load(configPath)
	if err != nil {
		return launchError(err)
	}

	if username != "" || displayName != "" || cmd.Flags().Changed("user-id") {
		spec := identity.SwitchSpec{
			Username:    username,
			DisplayName: displayName,
		}
		if cmd.Flags().Changed("user-id") {
			uid, _ := cmd.Flags().GetInt("user-id")
			spec.UID = &uid
		}
		if err = cfg.SwitchUser(spec); err != nil {
			return launchError(err)
		}
	}

	door, err := cfg.GetDoor(args[0])
	if err != nil {
		return launchError(err)
	}

	err = doorman.New(cfg).Launch(door, doorman.LaunchOptions{Raw: raw})
	if err != nil {
		return launchError(err)
	}

	return nil
}
