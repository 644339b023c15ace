package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reportdeck/internal/cli/commands"
)

var rootCmd = &cobra.Command{
	Use:   "reportdeck",
	Short: "Reportdeck CLI - scheduled report administration",
	Long: `Reportdeck CLI is a command-line tool for the Reportdeck platform.
It manages scheduled reports, triggers manual runs and inspects the
endpoint health monitor.`,
}

func init() {
	rootCmd.AddCommand(commands.NewReportCommand())
	rootCmd.AddCommand(commands.NewEndpointCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
