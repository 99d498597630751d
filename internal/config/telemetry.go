package config

import (
	"time"

	"github.com/google/uuid"

	"github.com/mydecisions/deskhost/internal/models"
)

// LoadOrCreateTelemetryState returns the persisted install id, creating one on
// first use.
func LoadOrCreateTelemetryState() (*models.TelemetryState, error) {
	path, err := GlobalTelemetryFile()
	if err != nil {
		return nil, err
	}

	if FileExists(path) {
		var state models.TelemetryState
		if err := LoadYAML(path, &state); err == nil && state.InstallID != "" {
			return &state, nil
		}
	}

	state := &models.TelemetryState{
		InstallID: uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	if err := SaveYAML(path, state); err != nil {
		return nil, err
	}
	return state, nil
}
