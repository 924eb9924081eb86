package main

import (
	"fmt"
	"os"

	"github.com/mirkobrombin/doorman/cmd"
	"github.com/mirkobrombin/doorman/pkg/logger"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "doorman",
		Short: "run legacy DOS door games in containers",
		Long: `doorman runs legacy DOS door games ("doors") inside throwaway
containers, one node per player, coordinated through advisory locks.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			logger.SetVerbose(verbose)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Path to doorman.yml")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(cmd.NewLaunchCommand())
	rootCmd.AddCommand(cmd.NewConfigureCommand())
	rootCmd.AddCommand(cmd.NewNightlyCommand())
	rootCmd.AddCommand(cmd.NewWhoCommand())
	rootCmd.AddCommand(cmd.NewAuditCommand())
	rootCmd.AddCommand(cmd.NewValidateCommand())
	rootCmd.AddCommand(cmd.NewGenSchemaCommand())

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
