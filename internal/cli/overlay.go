package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mydecisions/deskhost/internal/geometry"
)

const commandTimeout = 5 * time.Second

var overlayCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Control the overlay window",
}

var overlayToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Collapse or expand the overlay",
	Args:  cobra.NoArgs,
	RunE:  runOverlayToggle,
}

var overlayPositionCmd = &cobra.Command{
	Use:       "position <corner>",
	Short:     "Move the overlay to a screen corner",
	Long:      "Move the overlay to a screen corner, keeping its current size.\n\nCorners: " + cornerList(),
	Args:      validateCornerArg,
	ValidArgs: cornerNames(),
	RunE:      runOverlayPosition,
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show and focus the dashboard window",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

func init() {
	overlayCmd.AddCommand(overlayPositionCmd)
	overlayCmd.AddCommand(overlayToggleCmd)
}

func cornerNames() []string {
	var names []string
	for _, c := range geometry.Corners() {
		names = append(names, c.String())
	}
	return names
}

func cornerList() string {
	return strings.Join(cornerNames(), ", ")
}

func validateCornerArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	if _, err := geometry.ParseCorner(args[0]); err != nil {
		return fmt.Errorf("%w (expected one of: %s)", err, cornerList())
	}
	return nil
}

func runOverlayToggle(cmd *cobra.Command, args []string) error {
	client, conn, err := connectHost()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	expanded, err := client.ToggleOverlay(ctx)
	if err != nil {
		return fmt.Errorf("failed to toggle overlay: %w", err)
	}
	fmt.Println("Overlay " + overlayBadge(expanded) + ".")
	return nil
}

func overlayBadge(expanded bool) string {
	if expanded {
		return badgeExpanded.Render("expanded")
	}
	return badgeCollapsed.Render("collapsed")
}

func runOverlayPosition(cmd *cobra.Command, args []string) error {
	client, conn, err := connectHost()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	if err := client.SetOverlayPosition(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to move overlay: %w", err)
	}
	fmt.Printf("Overlay moved to %s.\n", styleCommand.Render(args[0]))
	return nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	client, conn, err := connectHost()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	if err := client.ShowDashboard(ctx); err != nil {
		return fmt.Errorf("failed to show dashboard: %w", err)
	}
	fmt.Println(styleSuccess.Render("Dashboard shown."))
	return nil
}
