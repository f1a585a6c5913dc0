// Package cmd holds the vinom-drift command line.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vinom-drift",
	Short: "A perfect maze that keeps changing shape",
	Long: `vinom-drift runs a maze whose walls shift every tick while it stays a
perfect maze, and keeps the shortest route from the agent to the destination
up to date.`,
	SilenceUsage: true,
}

// Execute runs the command picked from the arguments.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
