// Package models defines the data types shared across systrayctl.
package models

import "time"

// Backends for talking to the service manager.
const (
	BackendSystemctl = "systemctl"
	BackendDBus      = "dbus"
)

// Service-manager scopes.
const (
	ScopeSystem = "system"
	ScopeUser   = "user"
)

// NotificationConfig holds desktop notification settings.
type NotificationConfig struct {
	AppName string        `yaml:"app_name"`
	Title   string        `yaml:"title"`
	Timeout time.Duration `yaml:"timeout"`
}

// Settings represents the controller configuration.
// This corresponds to $XDG_CONFIG_HOME/systrayctl/config.yaml.
type Settings struct {
	Version        int           `yaml:"version"`
	Backend        string        `yaml:"backend"` // "systemctl" | "dbus"
	Scope          string        `yaml:"scope"`   // "system" | "user"
	PollInterval   time.Duration `yaml:"poll_interval"`
	QueryTimeout   time.Duration `yaml:"query_timeout"`
	ControlTimeout time.Duration `yaml:"control_timeout"`
	// CollapseUnknown reproduces the legacy policy of showing failed queries as inactive.
	CollapseUnknown bool               `yaml:"collapse_unknown"`
	Notification    NotificationConfig `yaml:"notification"`
	Services        []ServiceEntry     `yaml:"services"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:        1,
		Backend:        BackendSystemctl,
		Scope:          ScopeSystem,
		PollInterval:   5000 * time.Millisecond,
		QueryTimeout:   3 * time.Second,
		ControlTimeout: 30 * time.Second,
		Notification: NotificationConfig{
			AppName: "Systrayctl",
			Title:   "Systemctl Tray",
			Timeout: 2000 * time.Millisecond,
		},
		Services: []ServiceEntry{
			{Label: "Ollama", Unit: "ollama.service"},
			{Label: "Stable Diffusion", Unit: "stable-diffusion-webui.service"},
		},
	}
}

// StaleAfter is how old a status entry may get before it is flagged as stale.
func (s *Settings) StaleAfter() time.Duration {
	return 3 * s.PollInterval
}
