package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/systrayctl/systrayctl/internal/models"
	"github.com/systrayctl/systrayctl/internal/registry"
	"github.com/systrayctl/systrayctl/internal/svcmgr"
)

// DefaultQueryTimeout bounds a single status query.
const DefaultQueryTimeout = 3 * time.Second

// Querier reports a unit's activation state word ("active", "inactive", ...).
type Querier interface {
	IsActive(ctx context.Context, unit string) (string, error)
}

// PollerOptions configures a Poller.
type PollerOptions struct {
	QueryTimeout time.Duration
	// CollapseUnknown maps failed queries to Inactive instead of Unknown.
	CollapseUnknown bool
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// Poller queries every registered service and publishes the results.
type Poller struct {
	registry *registry.Registry
	querier  Querier
	table    *Table
	opts     PollerOptions

	mu       sync.RWMutex
	onChange []func(*Snapshot)
}

// NewPoller creates a poller writing into table.
func NewPoller(reg *registry.Registry, q Querier, table *Table, opts PollerOptions) *Poller {
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = DefaultQueryTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Poller{
		registry: reg,
		querier:  q,
		table:    table,
		opts:     opts,
	}
}

// OnChange registers fn to be called after each published snapshot.
// Callbacks run on the polling goroutine and must not block.
func (p *Poller) OnChange(fn func(*Snapshot)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = append(p.onChange, fn)
}

// Table returns the table the poller writes to.
func (p *Poller) Table() *Table {
	return p.table
}

// Refresh runs one poll cycle and returns the resulting snapshot. It never
// fails: a query error only marks that one service Unknown.
// If a newer cycle finished first, the newer snapshot is returned instead.
// A cycle whose ctx is cancelled (shutdown) is dropped unpublished and the
// current snapshot is returned.
func (p *Poller) Refresh(ctx context.Context) *Snapshot {
	seq := p.table.nextSeq()
	entries := make(map[string]Entry, p.registry.Len())

	for _, svc := range p.registry.Entries() {
		if ctx.Err() != nil {
			break
		}
		entries[svc.Unit] = p.query(ctx, svc)
	}
	if err := ctx.Err(); err != nil {
		log.Debug().Uint64("seq", seq).Err(err).Msg("poll cycle cancelled, not publishing")
		return p.table.Snapshot()
	}

	snap := &Snapshot{
		Seq:         seq,
		CompletedAt: p.opts.Now(),
		entries:     entries,
	}
	if !p.table.publish(snap) {
		log.Debug().Uint64("seq", seq).Msg("discarding stale poll result")
		return p.table.Snapshot()
	}

	p.mu.RLock()
	callbacks := append([]func(*Snapshot){}, p.onChange...)
	p.mu.RUnlock()
	for _, fn := range callbacks {
		fn(snap)
	}
	return snap
}

func (p *Poller) query(ctx context.Context, svc models.ServiceEntry) Entry {
	qctx, cancel := context.WithTimeout(ctx, p.opts.QueryTimeout)
	defer cancel()

	state, err := p.safeQuery(qctx, svc.Unit)
	entry := Entry{State: state, LastUpdated: p.opts.Now()}

	switch {
	case err != nil:
		entry.State = ""
		entry.Err = err
		entry.Status = models.StatusUnknown
		if p.opts.CollapseUnknown {
			entry.Status = models.StatusInactive
		}
		log.Debug().Str("unit", svc.Unit).Err(err).Msg("status query failed")
	case state == "active":
		entry.Status = models.StatusActive
	default:
		entry.Status = models.StatusInactive
	}
	return entry
}

// safeQuery converts a panicking backend into a query error so one bad
// service can't take down the cycle.
func (p *Poller) safeQuery(ctx context.Context, unit string) (state string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &svcmgr.QueryError{Unit: unit, Err: errors.New("query panicked")}
			log.Error().Str("unit", unit).Interface("panic", r).Msg("status query panicked")
		}
	}()

	state, err = p.querier.IsActive(ctx, unit)
	if err == nil && ctx.Err() != nil {
		// The backend ignored the deadline; don't trust a late answer.
		return "", &svcmgr.QueryError{Unit: unit, Err: ctx.Err(), TimedOut: errors.Is(ctx.Err(), context.DeadlineExceeded)}
	}
	return state, err
}
