package cli

import (
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mydecisions/deskhost/internal/config"
)

var (
	startDev      bool
	startHeadless bool
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the host if it is not running",
	RunE:  runStart,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show host status",
	RunE:  runStatus,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the host",
	RunE:  runStop,
}

func init() {
	startCmd.Flags().BoolVar(&startDev, "dev", false, "Load window content from the development servers")
	startCmd.Flags().BoolVar(&startHeadless, "headless", false, "Run without a display")
}

func runStart(cmd *cobra.Command, args []string) error {
	running, info, err := config.IsHostRunning()
	if err != nil {
		return fmt.Errorf("failed to check host status: %w", err)
	}

	if running && info != nil {
		fmt.Printf("Host is already running (PID %d, %s).\n", info.PID, info.Addr())
		return nil
	}

	var hostArgs []string
	if startDev {
		hostArgs = append(hostArgs, "--dev")
	}
	if startHeadless {
		hostArgs = append(hostArgs, "--headless")
	}

	fmt.Print("Starting host...")
	if err := EnsureHost(hostArgs...); err != nil {
		fmt.Println()
		return err
	}

	// Fetch fresh status to display
	_, fresh, err := GetHostStatus()
	if err != nil || fresh == nil {
		fmt.Println(" " + styleSuccess.Render("started") + ".")
		return nil
	}

	fmt.Printf(" %s (PID %d, %s).\n", styleSuccess.Render("started"), fresh.PID, fresh.Addr)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	running, info, err := GetHostStatus()
	if err != nil {
		return err
	}

	if !running || info == nil {
		fmt.Println("Host is not running.")
		return nil
	}

	writeStatus(os.Stdout, info)
	return nil
}

func writeStatus(w io.Writer, info *HostStatusInfo) {
	mode := "packaged"
	if info.DevMode {
		mode = "dev"
	}

	fmt.Fprintln(w, styleSuccess.Render("Host is running."))
	fmt.Fprintf(w, "  %s  %s\n", styleLabel.Render("Address:"), styleValue.Render(info.Addr))
	fmt.Fprintf(w, "  %s      %s\n", styleLabel.Render("PID:"), styleValue.Render(fmt.Sprint(info.PID)))
	fmt.Fprintf(w, "  %s  %s\n", styleLabel.Render("Content:"), styleValue.Render(mode))
	fmt.Fprintf(w, "  %s  %s %s\n", styleLabel.Render("Started:"),
		styleValue.Render(humanize.Time(info.StartedAt)),
		styleHint.Render("("+info.StartedAt.Local().Format(time.DateTime)+")"))
}

func runStop(cmd *cobra.Command, args []string) error {
	running, info, err := config.IsHostRunning()
	if err != nil {
		return fmt.Errorf("failed to check host status: %w", err)
	}

	if !running || info == nil {
		fmt.Println("Host is not running.")
		return nil
	}

	// SIGTERM goes through the host's coordinated quit.
	process, err := os.FindProcess(info.PID)
	if err != nil {
		return fmt.Errorf("failed to find host process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send stop signal: %w", err)
	}

	// Poll for shutdown (max 5 seconds)
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		stillRunning, _, err := config.IsHostRunning()
		if err == nil && !stillRunning {
			fmt.Println("Host stopped.")
			return nil
		}
	}

	return fmt.Errorf("host did not stop within timeout")
}
