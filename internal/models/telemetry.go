package models

import "time"

// TelemetryState identifies this installation to the analytics backend.
// This corresponds to ~/.mydecisions/telemetry.yaml.
type TelemetryState struct {
	InstallID string    `yaml:"install_id"`
	CreatedAt time.Time `yaml:"created_at"`
}
