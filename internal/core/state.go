// Package core implements the state-synchronization loop: polling service
// state into a shared table and dispatching user actions against it.
package core

import (
	"sync/atomic"
	"time"

	"github.com/systrayctl/systrayctl/internal/models"
)

// Entry is the last observed state of one service.
type Entry struct {
	Status      models.Status
	State       string // raw word from the service manager, empty on error
	Err         error  // set when Status is Unknown
	LastUpdated time.Time
}

// Stale reports whether the entry is older than maxAge at now.
func (e Entry) Stale(now time.Time, maxAge time.Duration) bool {
	return maxAge > 0 && now.Sub(e.LastUpdated) > maxAge
}

// Snapshot is an immutable view of every service's state after one poll cycle.
type Snapshot struct {
	Seq         uint64
	CompletedAt time.Time
	entries     map[string]Entry
}

var emptySnapshot = &Snapshot{entries: map[string]Entry{}}

// NewSnapshot builds a snapshot from entries, copying the map.
func NewSnapshot(seq uint64, completedAt time.Time, entries map[string]Entry) *Snapshot {
	m := make(map[string]Entry, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return &Snapshot{Seq: seq, CompletedAt: completedAt, entries: m}
}

// Lookup returns the entry for unit. ok is false until the unit has been polled.
func (s *Snapshot) Lookup(unit string) (Entry, bool) {
	e, ok := s.entries[unit]
	return e, ok
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Loaded reports whether at least one poll cycle has completed.
func (s *Snapshot) Loaded() bool {
	return s.Seq > 0
}

// Entries returns a copy of the entries keyed by unit.
func (s *Snapshot) Entries() map[string]Entry {
	out := make(map[string]Entry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// Table is the shared state table. Readers get whole snapshots; writers
// replace the whole snapshot, so no reader ever sees a half-written cycle.
type Table struct {
	current atomic.Pointer[Snapshot]
	seq     atomic.Uint64
}

// NewTable creates an empty table.
func NewTable() *Table {
	t := &Table{}
	t.current.Store(emptySnapshot)
	return t
}

// Snapshot returns the latest published snapshot.
func (t *Table) Snapshot() *Snapshot {
	return t.current.Load()
}

// nextSeq reserves a sequence number for a poll cycle about to start.
func (t *Table) nextSeq() uint64 {
	return t.seq.Add(1)
}

// publish stores snap unless a cycle that started later already published.
// It reports whether snap became current.
func (t *Table) publish(snap *Snapshot) bool {
	for {
		cur := t.current.Load()
		if cur.Seq > snap.Seq {
			return false
		}
		if t.current.CompareAndSwap(cur, snap) {
			return true
		}
	}
}
