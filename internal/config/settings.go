package config

import (
	"fmt"
	"strings"

	"github.com/systrayctl/systrayctl/internal/models"
	"github.com/systrayctl/systrayctl/internal/registry"
)

// ValidationError lists every problem found in a configuration.
// It is fatal: the controller must not start with an invalid config.
type ValidationError struct {
	Path     string
	Problems []string
}

func (e *ValidationError) Error() string {
	where := "configuration"
	if e.Path != "" {
		where = e.Path
	}
	return fmt.Sprintf("invalid %s:\n  - %s", where, strings.Join(e.Problems, "\n  - "))
}

// LoadSettings loads settings from path (or the default location when empty).
// If the file doesn't exist, returns default settings.
func LoadSettings(path string) (*models.Settings, error) {
	resolved, err := ResolveFile(path)
	if err != nil {
		return nil, err
	}
	if path != "" && !FileExists(resolved) {
		return nil, fmt.Errorf("config file %s not found", resolved)
	}

	settings, err := LoadYAMLOrDefault(resolved, models.NewSettings)
	if err != nil {
		return nil, err
	}
	if err := Validate(settings); err != nil {
		if ve, ok := err.(*ValidationError); ok {
			ve.Path = resolved
		}
		return nil, err
	}
	return settings, nil
}

// Validate checks settings and returns a *ValidationError describing all problems.
func Validate(s *models.Settings) error {
	var problems []string

	switch s.Backend {
	case models.BackendSystemctl, models.BackendDBus:
	default:
		problems = append(problems, fmt.Sprintf("backend: unknown backend %q (want %q or %q)",
			s.Backend, models.BackendSystemctl, models.BackendDBus))
	}

	switch s.Scope {
	case models.ScopeSystem, models.ScopeUser:
	default:
		problems = append(problems, fmt.Sprintf("scope: unknown scope %q (want %q or %q)",
			s.Scope, models.ScopeSystem, models.ScopeUser))
	}

	if s.PollInterval <= 0 {
		problems = append(problems, "poll_interval: must be positive")
	}
	if s.QueryTimeout <= 0 {
		problems = append(problems, "query_timeout: must be positive")
	}
	if s.ControlTimeout <= 0 {
		problems = append(problems, "control_timeout: must be positive")
	}
	if s.Notification.Timeout < 0 {
		problems = append(problems, "notification.timeout: must not be negative")
	}

	if len(s.Services) == 0 {
		problems = append(problems, "services: at least one service is required")
	} else if _, err := registry.New(s.Services); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			problems = append(problems, line)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
