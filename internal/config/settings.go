package config

import (
	"fmt"

	"github.com/mydecisions/deskhost/internal/models"
)

// LoadSettings loads the global settings from ~/.mydecisions/settings.yaml.
// If the file doesn't exist, returns default settings. Keys absent from the
// file keep their defaults.
func LoadSettings() (*models.Settings, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	return LoadSettingsFrom(path)
}

// LoadSettingsFrom loads and validates settings from an explicit path.
func LoadSettingsFrom(path string) (*models.Settings, error) {
	settings, err := LoadYAMLOrDefault(path, models.NewSettings)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return settings, nil
}

// SaveSettings saves the global settings to ~/.mydecisions/settings.yaml.
func SaveSettings(settings *models.Settings) error {
	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}
