package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mydecisions/deskhost/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch host events live and drive the overlay from the keyboard",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	client, conn, err := connectHost()
	if err != nil {
		return err
	}
	defer conn.Close()

	// An empty window subscribes to events for every window.
	stream, err := client.Events(cmd.Context(), "")
	if err != nil {
		return fmt.Errorf("failed to subscribe to host events: %w", err)
	}
	return tui.Run(client, stream, conn.Target())
}
