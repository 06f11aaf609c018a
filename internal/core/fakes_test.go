package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/systrayctl/systrayctl/internal/models"
	"github.com/systrayctl/systrayctl/internal/registry"
)

type queryResult struct {
	state string
	err   error
	block bool // wait for ctx to end
}

type fakeManager struct {
	mu         sync.Mutex
	results    map[string]queryResult
	controlErr error
	controls   []models.Request
	queries    int
}

func newFakeManager() *fakeManager {
	return &fakeManager{results: map[string]queryResult{}}
}

func (f *fakeManager) set(unit string, r queryResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[unit] = r
}

func (f *fakeManager) IsActive(ctx context.Context, unit string) (string, error) {
	f.mu.Lock()
	r := f.results[unit]
	f.queries++
	f.mu.Unlock()

	if r.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return r.state, r.err
}

// Control records the request and, on success, flips the unit's state the
// way a real manager would.
func (f *fakeManager) Control(ctx context.Context, unit string, action models.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.controls = append(f.controls, models.Request{Unit: unit, Action: action})
	if f.controlErr != nil {
		return f.controlErr
	}
	switch action {
	case models.ActionStart:
		f.results[unit] = queryResult{state: "active"}
	case models.ActionStop:
		f.results[unit] = queryResult{state: "inactive"}
	}
	return nil
}

func (f *fakeManager) controlCalls() []models.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Request(nil), f.controls...)
}

type notification struct {
	title   string
	body    string
	timeout time.Duration
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (n *fakeNotifier) Notify(title, body string, timeout time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{title, body, timeout})
	return n.err
}

func (n *fakeNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
}

type countingRefresher struct {
	mu    sync.Mutex
	inner Refresher
	count int
}

func (c *countingRefresher) Refresh(ctx context.Context) *Snapshot {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
	return c.inner.Refresh(ctx)
}

func (c *countingRefresher) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

var errBus = errors.New("bus unavailable")

func testRegistry() *registry.Registry {
	r, err := registry.New([]models.ServiceEntry{
		{Label: "Service One", Unit: "svc1"},
		{Label: "Service Two", Unit: "svc2"},
		{Label: "Service Three", Unit: "svc3"},
	})
	if err != nil {
		panic(err)
	}
	return r
}
