package models

import "fmt"

// ServiceEntry pairs a display label with a service-manager unit name.
// Entries are built once from configuration and never mutated.
type ServiceEntry struct {
	Label string `yaml:"label"`
	Unit  string `yaml:"unit"`
}

// Status is the activation state shown to the user.
type Status string

// Service statuses.
const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusUnknown  Status = "unknown" // the query failed or timed out
)

// String returns the capitalized form used in tooltips and tables.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusInactive:
		return "Inactive"
	default:
		return "Unknown"
	}
}

// Action is a mutating service-manager operation.
type Action string

// Supported actions.
const (
	ActionStart Action = "start"
	ActionStop  Action = "stop"
)

// Valid reports whether a is one of the supported actions.
func (a Action) Valid() bool {
	return a == ActionStart || a == ActionStop
}

// ParseAction converts a user-supplied verb into an Action.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// Request is an immutable description of one user-initiated action.
type Request struct {
	Unit   string
	Action Action
}
