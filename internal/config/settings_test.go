package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systrayctl/systrayctl/internal/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSettingsFromFile(t *testing.T) {
	path := writeConfig(t, `
version: 1
backend: dbus
scope: user
poll_interval: 2s
query_timeout: 500ms
services:
  - label: Syncthing
    unit: syncthing.service
  - label: Ollama
    unit: ollama.service
`)

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, models.BackendDBus, s.Backend)
	assert.Equal(t, models.ScopeUser, s.Scope)
	assert.Equal(t, 2*time.Second, s.PollInterval)
	assert.Equal(t, 500*time.Millisecond, s.QueryTimeout)
	// Not in the file: keeps the default.
	assert.Equal(t, 30*time.Second, s.ControlTimeout)
	assert.Equal(t, "Systemctl Tray", s.Notification.Title)

	require.Len(t, s.Services, 2)
	assert.Equal(t, models.ServiceEntry{Label: "Syncthing", Unit: "syncthing.service"}, s.Services[0])
}

func TestLoadSettingsMissingExplicitFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadSettingsDefaultsWhenAbsent(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, models.NewSettings(), s)
	assert.Equal(t, 5000*time.Millisecond, s.PollInterval)
}

func TestLoadSettingsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "services: [unterminated\n")
	_, err := LoadSettings(path)
	require.Error(t, err)

	var ve *ValidationError
	assert.False(t, errors.As(err, &ve), "parse errors are not validation errors")
}

func TestLoadSettingsValidationCarriesPath(t *testing.T) {
	path := writeConfig(t, `
services:
  - label: A
    unit: same.service
  - label: B
    unit: same.service
`)

	_, err := LoadSettings(path)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, path, ve.Path)
	assert.Contains(t, err.Error(), "duplicate unit")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *models.Settings)
		problem string
	}{
		{
			name:   "defaults are valid",
			mutate: func(s *models.Settings) {},
		},
		{
			name:    "unknown backend",
			mutate:  func(s *models.Settings) { s.Backend = "upstart" },
			problem: "backend",
		},
		{
			name:    "unknown scope",
			mutate:  func(s *models.Settings) { s.Scope = "global" },
			problem: "scope",
		},
		{
			name:    "zero poll interval",
			mutate:  func(s *models.Settings) { s.PollInterval = 0 },
			problem: "poll_interval",
		},
		{
			name:    "negative query timeout",
			mutate:  func(s *models.Settings) { s.QueryTimeout = -time.Second },
			problem: "query_timeout",
		},
		{
			name:    "zero control timeout",
			mutate:  func(s *models.Settings) { s.ControlTimeout = 0 },
			problem: "control_timeout",
		},
		{
			name:    "no services",
			mutate:  func(s *models.Settings) { s.Services = nil },
			problem: "at least one service",
		},
		{
			name: "empty unit",
			mutate: func(s *models.Settings) {
				s.Services = []models.ServiceEntry{{Label: "A"}}
			},
			problem: "empty unit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.NewSettings()
			tt.mutate(s)

			err := Validate(s)
			if tt.problem == "" {
				require.NoError(t, err)
				return
			}

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, err.Error(), tt.problem)
		})
	}
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	s := models.NewSettings()
	s.Backend = "nope"
	s.PollInterval = 0
	s.ControlTimeout = 0

	var ve *ValidationError
	require.ErrorAs(t, Validate(s), &ve)
	assert.Len(t, ve.Problems, 3)
}

func TestMarshalYAMLRoundTripsDurations(t *testing.T) {
	data, err := MarshalYAML(models.NewSettings())
	require.NoError(t, err)
	assert.Contains(t, string(data), "poll_interval: 5s")
	assert.Contains(t, string(data), "unit: ollama.service")
}
