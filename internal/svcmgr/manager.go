package svcmgr

import (
	"context"
	"fmt"

	"github.com/systrayctl/systrayctl/internal/models"
)

// Manager is a service-manager backend: a status query plus start/stop control.
type Manager interface {
	IsActive(ctx context.Context, unit string) (string, error)
	Control(ctx context.Context, unit string, action models.Action) error
	Close() error
}

// Open creates the backend named by settings.
func Open(backend, scope string) (Manager, error) {
	switch backend {
	case models.BackendSystemctl, "":
		return NewSystemctl(scope), nil
	case models.BackendDBus:
		return NewDBus(scope)
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}
