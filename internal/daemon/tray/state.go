// Package tray implements the system tray icon and menu for the controller.
package tray

import (
	"github.com/systrayctl/systrayctl/internal/core"
	"github.com/systrayctl/systrayctl/internal/models"
)

// DaemonState is what the tray needs from the running controller.
type DaemonState interface {
	Services() []models.ServiceEntry
	Snapshot() *core.Snapshot
	Submit(req models.Request) error
	RequestShutdown()
}
