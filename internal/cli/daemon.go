package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/mydecisions/deskhost/internal/config"
)

// HostBinary is the name of the host executable.
const HostBinary = "mydecisionsd"

// EnsureHost makes sure the host is running, starting it if necessary.
func EnsureHost(args ...string) error {
	running, info, err := config.IsHostRunning()
	if err != nil {
		return fmt.Errorf("failed to check host status: %w", err)
	}

	if running {
		return nil
	}

	// Clean up stale instance info if it exists
	if info != nil {
		_ = config.RemoveInstanceInfo(info.PID)
	}

	return startHost(args...)
}

// startHost starts the host process in the background.
func startHost(args ...string) error {
	hostPath, err := findHostBinary()
	if err != nil {
		return err
	}

	cmd := exec.Command(hostPath, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start host: %w", err)
	}
	// Reap the child if it exits while we wait.
	go func() { _ = cmd.Wait() }()

	// Wait for the host to publish its address (max 5 seconds)
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		running, _, err := config.IsHostRunning()
		if err == nil && running {
			return nil
		}
	}

	return fmt.Errorf("host failed to start within timeout")
}

// findHostBinary locates the mydecisionsd binary.
func findHostBinary() (string, error) {
	// Same directory as this executable first, so side-by-side installs match.
	if execPath, err := os.Executable(); err == nil {
		hostPath := filepath.Join(filepath.Dir(execPath), HostBinary)
		if _, err := os.Stat(hostPath); err == nil {
			return hostPath, nil
		}
	}

	if path, err := exec.LookPath(HostBinary); err == nil {
		return path, nil
	}

	// Try build directory
	if _, err := os.Stat("./build/" + HostBinary); err == nil {
		return "./build/" + HostBinary, nil
	}

	return "", fmt.Errorf("%s not found. Install or build it first", HostBinary)
}

// GetHostStatus returns the host status.
func GetHostStatus() (bool, *HostStatusInfo, error) {
	running, info, err := config.IsHostRunning()
	if err != nil {
		return false, nil, err
	}

	if !running || info == nil {
		return false, nil, nil
	}

	return true, &HostStatusInfo{
		Addr:      info.Addr(),
		PID:       info.PID,
		StartedAt: info.StartedAt,
		DevMode:   info.DevMode,
	}, nil
}

// HostStatusInfo contains host status information.
type HostStatusInfo struct {
	Addr      string
	PID       int
	StartedAt time.Time
	DevMode   bool
}
