package config

import (
	"os"
	"syscall"

	"github.com/mydecisions/deskhost/internal/models"
)

// LoadInstanceInfo loads the running host's info from ~/.mydecisions/instance.yaml.
// Returns nil if the file doesn't exist.
func LoadInstanceInfo() (*models.InstanceInfo, error) {
	path, err := GlobalInstanceFile()
	if err != nil {
		return nil, err
	}

	if !FileExists(path) {
		return nil, nil
	}

	var info models.InstanceInfo
	if err := LoadYAML(path, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SaveInstanceInfo saves the host's info to ~/.mydecisions/instance.yaml.
func SaveInstanceInfo(info *models.InstanceInfo) error {
	if err := EnsureGlobalDir(); err != nil {
		return err
	}

	path, err := GlobalInstanceFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, info)
}

// RemoveInstanceInfo removes the instance.yaml file if it belongs to pid.
// A file written by another process is left alone.
func RemoveInstanceInfo(pid int) error {
	info, err := LoadInstanceInfo()
	if err != nil || info == nil {
		return err
	}
	if info.PID != pid {
		return nil
	}

	path, err := GlobalInstanceFile()
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// IsHostRunning checks if the host process is still running.
// Returns true if instance.yaml exists and the PID is alive.
func IsHostRunning() (bool, *models.InstanceInfo, error) {
	info, err := LoadInstanceInfo()
	if err != nil {
		return false, nil, err
	}
	if info == nil {
		return false, nil, nil
	}

	process, err := os.FindProcess(info.PID)
	if err != nil {
		return false, info, nil
	}

	// Signal 0 only checks that the process exists.
	if err := process.Signal(syscall.Signal(0)); err != nil {
		_ = RemoveInstanceInfo(info.PID)
		return false, info, nil
	}

	return true, info, nil
}
