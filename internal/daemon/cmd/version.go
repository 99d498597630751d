package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mydecisions/deskhost/internal/cli"
)

var hostVersionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		cli.WriteVersion(cmd.OutOrStdout(), "mydecisionsd")
	},
}

func init() {
	rootCmd.AddCommand(hostVersionCmd)
}
