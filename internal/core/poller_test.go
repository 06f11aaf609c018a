package core

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systrayctl/systrayctl/internal/models"
	"github.com/systrayctl/systrayctl/internal/svcmgr"
)

func TestRefreshEntryPerService(t *testing.T) {
	m := newFakeManager()
	m.set("svc1", queryResult{state: "active"})
	m.set("svc2", queryResult{state: "inactive"})
	m.set("svc3", queryResult{err: errBus})

	reg := testRegistry()
	p := NewPoller(reg, m, NewTable(), PollerOptions{QueryTimeout: time.Second})

	snap := p.Refresh(context.Background())
	require.True(t, snap.Loaded())
	assert.Equal(t, reg.Len(), snap.Len())

	for _, svc := range reg.Entries() {
		e, ok := snap.Lookup(svc.Unit)
		require.True(t, ok, svc.Unit)
		assert.Contains(t, []models.Status{models.StatusActive, models.StatusInactive, models.StatusUnknown}, e.Status)
	}
	assert.Same(t, snap, p.Table().Snapshot())
}

func TestRefreshStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		result queryResult
		want   models.Status
	}{
		{"active", queryResult{state: "active"}, models.StatusActive},
		{"inactive", queryResult{state: "inactive"}, models.StatusInactive},
		{"failed is inactive", queryResult{state: "failed"}, models.StatusInactive},
		{"activating is inactive", queryResult{state: "activating"}, models.StatusInactive},
		{"error is unknown", queryResult{err: errBus}, models.StatusUnknown},
		{"query error is unknown", queryResult{err: &svcmgr.QueryError{Unit: "svc1", Err: errBus}}, models.StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newFakeManager()
			m.set("svc1", tt.result)
			p := NewPoller(testRegistry(), m, NewTable(), PollerOptions{})

			e, ok := p.Refresh(context.Background()).Lookup("svc1")
			require.True(t, ok)
			assert.Equal(t, tt.want, e.Status)
			if tt.want == models.StatusUnknown {
				assert.Error(t, e.Err)
				assert.Empty(t, e.State)
			}
		})
	}
}

func TestRefreshIsolatesFailures(t *testing.T) {
	m := newFakeManager()
	m.set("svc1", queryResult{state: "active"})
	m.set("svc2", queryResult{block: true})
	m.set("svc3", queryResult{state: "inactive"})

	p := NewPoller(testRegistry(), m, NewTable(), PollerOptions{QueryTimeout: 50 * time.Millisecond})
	snap := p.Refresh(context.Background())

	a, _ := snap.Lookup("svc1")
	b, _ := snap.Lookup("svc2")
	c, _ := snap.Lookup("svc3")
	assert.Equal(t, models.StatusActive, a.Status)
	assert.Equal(t, models.StatusUnknown, b.Status)
	assert.Equal(t, models.StatusInactive, c.Status)
}

func TestRefreshTimeoutIsUnknownNotInactive(t *testing.T) {
	m := newFakeManager()
	m.set("svc2", queryResult{block: true})

	p := NewPoller(testRegistry(), m, NewTable(), PollerOptions{QueryTimeout: 20 * time.Millisecond})

	var snap *Snapshot
	require.NotPanics(t, func() { snap = p.Refresh(context.Background()) })

	e, ok := snap.Lookup("svc2")
	require.True(t, ok)
	assert.Equal(t, models.StatusUnknown, e.Status)
	assert.ErrorIs(t, e.Err, context.DeadlineExceeded)
}

type panickyQuerier struct{}

func (panickyQuerier) IsActive(ctx context.Context, unit string) (string, error) {
	if unit == "svc2" {
		panic("boom")
	}
	return "active", nil
}

func TestRefreshRecoversFromPanickingBackend(t *testing.T) {
	p := NewPoller(testRegistry(), panickyQuerier{}, NewTable(), PollerOptions{})

	snap := p.Refresh(context.Background())
	a, _ := snap.Lookup("svc1")
	b, _ := snap.Lookup("svc2")
	assert.Equal(t, models.StatusActive, a.Status)
	assert.Equal(t, models.StatusUnknown, b.Status)
}

type lateQuerier struct{}

func (lateQuerier) IsActive(ctx context.Context, unit string) (string, error) {
	<-ctx.Done()
	time.Sleep(5 * time.Millisecond)
	return "active", nil
}

func TestRefreshDistrustsLateAnswers(t *testing.T) {
	p := NewPoller(testRegistry(), lateQuerier{}, NewTable(), PollerOptions{QueryTimeout: 10 * time.Millisecond})
	e, _ := p.Refresh(context.Background()).Lookup("svc1")
	assert.Equal(t, models.StatusUnknown, e.Status)
}

func TestRefreshCollapseUnknown(t *testing.T) {
	m := newFakeManager()
	m.set("svc1", queryResult{err: errBus})

	p := NewPoller(testRegistry(), m, NewTable(), PollerOptions{CollapseUnknown: true})
	e, _ := p.Refresh(context.Background()).Lookup("svc1")

	assert.Equal(t, models.StatusInactive, e.Status)
	assert.Error(t, e.Err, "the cause is kept even when collapsed")
}

func TestRefreshTimestamps(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	m := newFakeManager()
	m.set("svc1", queryResult{state: "active"})

	p := NewPoller(testRegistry(), m, NewTable(), PollerOptions{Now: func() time.Time { return now }})
	snap := p.Refresh(context.Background())

	e, _ := snap.Lookup("svc1")
	assert.Equal(t, now, e.LastUpdated)
	assert.Equal(t, now, snap.CompletedAt)
}

func TestOnChangeCalledPerPublish(t *testing.T) {
	m := newFakeManager()
	p := NewPoller(testRegistry(), m, NewTable(), PollerOptions{})

	var calls atomic.Int32
	var last atomic.Pointer[Snapshot]
	p.OnChange(func(s *Snapshot) {
		calls.Add(1)
		last.Store(s)
	})

	p.Refresh(context.Background())
	snap := p.Refresh(context.Background())

	assert.Equal(t, int32(2), calls.Load())
	assert.Same(t, snap, last.Load())
	assert.Equal(t, uint64(2), snap.Seq)
}

func TestRefreshCancelledCycleIsNotPublished(t *testing.T) {
	m := newFakeManager()
	m.set("svc1", queryResult{state: "active"})
	m.set("svc2", queryResult{state: "active"})
	m.set("svc3", queryResult{state: "active"})

	p := NewPoller(testRegistry(), m, NewTable(), PollerOptions{QueryTimeout: time.Second})
	first := p.Refresh(context.Background())
	require.True(t, first.Loaded())

	var calls atomic.Int32
	p.OnChange(func(*Snapshot) { calls.Add(1) })

	m.set("svc2", queryResult{block: true})
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	got := p.Refresh(ctx)

	assert.Same(t, first, got)
	assert.Same(t, first, p.Table().Snapshot())
	assert.Zero(t, calls.Load())
	for _, unit := range []string{"svc1", "svc2", "svc3"} {
		e, ok := got.Lookup(unit)
		require.True(t, ok, unit)
		assert.Equal(t, models.StatusActive, e.Status, unit)
		assert.NoError(t, e.Err, unit)
	}
}

func TestRefreshWithCancelledContextBeforeFirstPoll(t *testing.T) {
	m := newFakeManager()
	p := NewPoller(testRegistry(), m, NewTable(), PollerOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap := p.Refresh(ctx)
	assert.False(t, snap.Loaded())
	assert.Zero(t, snap.Len())
	assert.Zero(t, m.queries)
}
