package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systrayctl/systrayctl/internal/models"
)

func TestTableStartsEmpty(t *testing.T) {
	table := NewTable()
	snap := table.Snapshot()

	require.NotNil(t, snap)
	assert.False(t, snap.Loaded())
	assert.Equal(t, 0, snap.Len())

	_, ok := snap.Lookup("svc1")
	assert.False(t, ok, "no entry before the first poll")
}

func TestTablePublishKeepsNewest(t *testing.T) {
	table := NewTable()

	older := table.nextSeq()
	newer := table.nextSeq()

	newSnap := &Snapshot{Seq: newer, entries: map[string]Entry{"svc1": {Status: models.StatusActive}}}
	oldSnap := &Snapshot{Seq: older, entries: map[string]Entry{"svc1": {Status: models.StatusInactive}}}

	require.True(t, table.publish(newSnap))
	require.False(t, table.publish(oldSnap), "an older cycle must not overwrite a newer one")

	e, ok := table.Snapshot().Lookup("svc1")
	require.True(t, ok)
	assert.Equal(t, models.StatusActive, e.Status)
}

func TestSnapshotEntriesIsCopy(t *testing.T) {
	snap := &Snapshot{Seq: 1, entries: map[string]Entry{"svc1": {Status: models.StatusActive}}}

	m := snap.Entries()
	m["svc1"] = Entry{Status: models.StatusInactive}
	delete(m, "svc1")

	e, ok := snap.Lookup("svc1")
	require.True(t, ok)
	assert.Equal(t, models.StatusActive, e.Status)
}

func TestEntryStale(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	e := Entry{LastUpdated: now.Add(-20 * time.Second)}

	assert.True(t, e.Stale(now, 15*time.Second))
	assert.False(t, e.Stale(now, 30*time.Second))
	assert.False(t, e.Stale(now, 0), "zero window disables staleness")
}
