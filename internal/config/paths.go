// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalDirName is the name of the global MyDecisions directory.
	GlobalDirName = ".mydecisions"

	// LogsDirName is the name of the logs directory.
	LogsDirName = "logs"

	// RunDirName holds the instance lock and activation requests.
	RunDirName = "run"
)

// File names
const (
	InstanceFileName  = "instance.yaml"
	SettingsFileName  = "settings.yaml"
	TelemetryFileName = "telemetry.yaml"
	HostLogFileName   = "host.log"
)

// GlobalDir returns the path to the global MyDecisions directory (~/.mydecisions/).
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

func globalPath(elem ...string) (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, elem...)...), nil
}

// GlobalInstanceFile returns the path to the instance.yaml file.
func GlobalInstanceFile() (string, error) {
	return globalPath(InstanceFileName)
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	return globalPath(SettingsFileName)
}

// GlobalTelemetryFile returns the path to the telemetry.yaml file.
func GlobalTelemetryFile() (string, error) {
	return globalPath(TelemetryFileName)
}

// GlobalLogsDir returns the path to the logs directory.
func GlobalLogsDir() (string, error) {
	return globalPath(LogsDirName)
}

// GlobalRunDir returns the path to the runtime directory.
func GlobalRunDir() (string, error) {
	return globalPath(RunDirName)
}

// DefaultHostLogFile returns the path to the host log file.
func DefaultHostLogFile() (string, error) {
	return globalPath(LogsDirName, HostLogFileName)
}

// EnsureGlobalDir creates the global MyDecisions directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// EnsureGlobalRunDir creates the runtime directory if it doesn't exist.
func EnsureGlobalRunDir() (string, error) {
	dir, err := GlobalRunDir()
	if err != nil {
		return "", err
	}
	return dir, os.MkdirAll(dir, 0o700)
}
