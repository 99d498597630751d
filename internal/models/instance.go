package models

import "time"

// InstanceInfo describes the running host process.
// This corresponds to ~/.mydecisions/instance.yaml.
type InstanceInfo struct {
	Version    int       `yaml:"version"`
	Host       string    `yaml:"host"`
	Port       int       `yaml:"port"`
	PID        int       `yaml:"pid"`
	StartedAt  time.Time `yaml:"started_at"`
	InstanceID string    `yaml:"instance_id"`
	DevMode    bool      `yaml:"dev_mode"`
}

// NewInstanceInfo creates instance info for the current process.
func NewInstanceInfo(host string, port, pid int, instanceID string) *InstanceInfo {
	return &InstanceInfo{
		Version:    1,
		Host:       host,
		Port:       port,
		PID:        pid,
		StartedAt:  time.Now().UTC(),
		InstanceID: instanceID,
	}
}

// Addr returns the command channel address.
func (i *InstanceInfo) Addr() string {
	return joinHostPort(i.Host, i.Port)
}
