// Package cli implements the mydecisions CLI commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mydecisions",
	Short: "Control the MyDecisions desktop host",
	Long: `mydecisions talks to the running MyDecisions host over its command
channel: toggle and move the overlay, bring up the dashboard, and watch the
events the host sends to window content.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Errors are printed to stderr before being returned.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		writeError(os.Stderr, err)
	}
	return err
}

func writeError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", styleError.Render("Error:"), err)
}

func init() {
	// Add subcommands (alphabetical)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(overlayCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(watchCmd)
}
