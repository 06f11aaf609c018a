package tui

import "github.com/systrayctl/systrayctl/internal/core"

// SnapshotMsg carries a freshly published snapshot.
type SnapshotMsg struct {
	Snapshot *core.Snapshot
}

// OutcomeMsg carries the result of a queued action.
type OutcomeMsg struct {
	Outcome core.Outcome
}

// tickMsg re-renders relative timestamps.
type tickMsg struct{}
