// Package presenter turns controller snapshots into what adapters display:
// menu titles, enabled actions, tooltip text and an aggregate icon state.
package presenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/systrayctl/systrayctl/internal/core"
	"github.com/systrayctl/systrayctl/internal/models"
)

// Status markers shown in front of each service label.
const (
	markerActive   = "▶️"
	markerInactive = "⛔"
	markerUnknown  = "❔"
	markerLoading  = "…"
)

// IconState summarizes all services for the tray icon.
type IconState int

// Aggregate icon states.
const (
	IconLoading IconState = iota
	IconAllActive
	IconSomeActive
	IconNoneActive
	IconDegraded // at least one Unknown
)

// Affordances decides which actions are offered for unit.
// Start is offered unless the service is Active, Stop only when it is.
// Unknown offers both so the user can act while the manager is unreachable.
// Nothing is offered until the first poll has reported on the unit.
func Affordances(snap *core.Snapshot, unit string) (start, stop bool) {
	e, ok := snap.Lookup(unit)
	if !ok {
		return false, false
	}
	switch e.Status {
	case models.StatusActive:
		return false, true
	case models.StatusInactive:
		return true, false
	default:
		return true, true
	}
}

// Marker returns the status marker for unit.
func Marker(snap *core.Snapshot, unit string) string {
	e, ok := snap.Lookup(unit)
	if !ok {
		return markerLoading
	}
	switch e.Status {
	case models.StatusActive:
		return markerActive
	case models.StatusInactive:
		return markerInactive
	default:
		return markerUnknown
	}
}

// MenuTitle renders the submenu title for svc.
func MenuTitle(svc models.ServiceEntry, snap *core.Snapshot) string {
	return fmt.Sprintf("%s %s", Marker(snap, svc.Unit), svc.Label)
}

// StatusText is the per-service word used in the tooltip.
func StatusText(snap *core.Snapshot, unit string, now time.Time, staleAfter time.Duration) string {
	e, ok := snap.Lookup(unit)
	if !ok {
		return "Loading"
	}
	text := e.Status.String()
	if e.Stale(now, staleAfter) {
		text += " (stale)"
	}
	return text
}

// Tooltip renders the aggregate tooltip.
func Tooltip(services []models.ServiceEntry, snap *core.Snapshot, now time.Time, staleAfter time.Duration) string {
	if !snap.Loaded() {
		return "Initializing..."
	}
	lines := make([]string, 0, len(services))
	for _, svc := range services {
		lines = append(lines, fmt.Sprintf("%s: %s", svc.Label, StatusText(snap, svc.Unit, now, staleAfter)))
	}
	return "Service Status:\n" + strings.Join(lines, "\n")
}

// Aggregate computes the icon state for services.
func Aggregate(services []models.ServiceEntry, snap *core.Snapshot) IconState {
	if !snap.Loaded() {
		return IconLoading
	}
	active := 0
	for _, svc := range services {
		e, ok := snap.Lookup(svc.Unit)
		if !ok {
			return IconLoading
		}
		switch e.Status {
		case models.StatusUnknown:
			return IconDegraded
		case models.StatusActive:
			active++
		}
	}
	switch {
	case active == 0:
		return IconNoneActive
	case active == len(services):
		return IconAllActive
	default:
		return IconSomeActive
	}
}
