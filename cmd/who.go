package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mirkobrombin/doorman/pkg/config"
	"github.com/mirkobrombin/doorman/pkg/doorman"
	"github.com/mirkobrombin/doorman/pkg/types"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func NewWhoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "who [door]",
		Short: "Show who's playing what",
		Args:  cobra.MaximumNArgs(1),
		RunE:  WhoIsPlaying,
	}
	cmd.Flags().StringP("format", "f", "", "Output format (json or yaml)")

	return cmd
}

func whoError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while listing sessions: %s", iErr)
	return
}

func WhoIsPlaying(cmd *cobra.Command, args []string) (err error) {
	configPath, _ := cmd.Flags().GetString("config")
	format, _ := cmd.Flags().GetString("format")

	doorFilter := ""
	if len(args) > 0 {
		doorFilter = args[0]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return whoError(err)
	}

	sessions, err := doorman.New(cfg).Who(doorFilter)
	if err != nil {
		return whoError(err)
	}

	switch format {
	case "json":
		jsonBytes, err := json.MarshalIndent(sessions, "", "  ")
		if err != nil {
			return whoError(err)
		}
		fmt.Println(string(jsonBytes))
	case "yaml":
		yamlBytes, err := yaml.Marshal(sessions)
		if err != nil {
			return whoError(err)
		}
		fmt.Print(string(yamlBytes))
	case "":
		showSessions(sessions)
	default:
		return whoError(fmt.Errorf("unknown format %q", format))
	}

	return nil
}

func showSessions(sessions []types.Session) {
	if len(sessions) == 0 {
		fmt.Println("Nobody is playing anything right now. How boring.")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"User", "Door", "Node", "Duration"})
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")

	for _, session := range sessions {
		node := session.Command
		if session.Node > 0 {
			node = strconv.Itoa(session.Node)
		}
		if node == "" {
			node = "???"
		}

		table.Append([]string{
			session.User,
			session.Door,
			node,
			humanizeDuration(time.Since(session.Since)),
		})
	}

	fmt.Println()
	table.Render()
	fmt.Println()
}

func humanizeDuration(d time.Duration) string {
	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s", unit)
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}

	switch {
	case d < time.Minute:
		return plural(int(d.Seconds()), "second")
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	}
	return plural(int(d.Hours()/24), "day")
}
