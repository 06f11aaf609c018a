// Package daemon wires the registry, poller, dispatcher, scheduler and
// backends into one running controller instance.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/systrayctl/systrayctl/internal/config"
	"github.com/systrayctl/systrayctl/internal/core"
	"github.com/systrayctl/systrayctl/internal/daemon/watcher"
	"github.com/systrayctl/systrayctl/internal/models"
	"github.com/systrayctl/systrayctl/internal/notify"
	"github.com/systrayctl/systrayctl/internal/registry"
	"github.com/systrayctl/systrayctl/internal/svcmgr"
)

// DefaultQueueSize is how many clicks may wait behind a running action.
const DefaultQueueSize = 8

// Submit errors.
var (
	ErrQueueFull = errors.New("action queue is full")
	ErrStopped   = errors.New("controller is stopped")
)

// Options overrides the collaborators New would otherwise build from settings.
type Options struct {
	// Manager is the service-manager backend; opened from settings when nil.
	Manager svcmgr.Manager
	// Notifier receives action outcomes; desktop + log when nil.
	Notifier notify.Notifier
	// ConfigPath enables the config-change watcher when set.
	ConfigPath string
	QueueSize  int
}

// Daemon is one running controller.
type Daemon struct {
	settings   *models.Settings
	registry   *registry.Registry
	table      *core.Table
	poller     *core.Poller
	dispatcher *core.Dispatcher
	scheduler  *core.Scheduler
	manager    svcmgr.Manager
	notifier   notify.Notifier
	watcher    *watcher.Watcher
	closers    []func() error

	requests chan models.Request
	quit     chan struct{}
	wg       sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	onOutcome []func(core.Outcome)
}

// New builds a controller from validated settings.
func New(settings *models.Settings, opts Options) (*Daemon, error) {
	if err := config.Validate(settings); err != nil {
		return nil, err
	}
	reg, err := registry.New(settings.Services)
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		settings: settings,
		registry: reg,
		table:    core.NewTable(),
		quit:     make(chan struct{}),
	}

	d.manager = opts.Manager
	if d.manager == nil {
		m, err := svcmgr.Open(settings.Backend, settings.Scope)
		if err != nil {
			return nil, err
		}
		d.manager = m
		d.closers = append(d.closers, m.Close)
	}

	d.notifier = opts.Notifier
	if d.notifier == nil {
		desktop, closeFn := notify.Desktop(settings.Notification.AppName, "")
		d.notifier = notify.Multi{desktop, notify.Log{}}
		d.closers = append(d.closers, closeFn)
	}

	d.poller = core.NewPoller(reg, d.manager, d.table, core.PollerOptions{
		QueryTimeout:    settings.QueryTimeout,
		CollapseUnknown: settings.CollapseUnknown,
	})
	d.dispatcher = core.NewDispatcher(reg, d.manager, d.notifier, d.poller, core.DispatcherOptions{
		ControlTimeout:      settings.ControlTimeout,
		NotifyTitle:         settings.Notification.Title,
		NotificationTimeout: settings.Notification.Timeout,
	})

	d.scheduler, err = core.NewScheduler(d.poller, settings.PollInterval)
	if err != nil {
		d.close()
		return nil, err
	}

	if opts.ConfigPath != "" && config.FileExists(opts.ConfigPath) {
		w, err := watcher.New(opts.ConfigPath, watcher.DefaultDebounce)
		if err != nil {
			log.Warn().Err(err).Msg("config watcher unavailable")
		} else {
			d.watcher = w
		}
	}

	size := opts.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	d.requests = make(chan models.Request, size)

	return d, nil
}

// Start launches the request worker, the poll scheduler (first poll runs
// immediately), and the config watcher.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return ErrStopped
	}
	if d.started {
		return nil
	}

	d.wg.Add(1)
	go d.work()

	if err := d.scheduler.Start(ctx); err != nil {
		return err
	}

	if d.watcher != nil {
		if err := d.watcher.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to watch config file")
		} else {
			d.wg.Add(1)
			go d.watchConfig()
		}
	}

	d.started = true
	log.Info().
		Int("services", d.registry.Len()).
		Dur("interval", d.scheduler.Interval()).
		Str("backend", d.settings.Backend).
		Str("scope", d.settings.Scope).
		Msg("controller started")
	return nil
}

// Stop shuts down in order: poll timer first, then the worker (after any
// in-flight action), the config watcher, and finally backend connections.
func (d *Daemon) Stop() error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	d.mu.Unlock()

	var errs []error
	if err := d.scheduler.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
	}

	close(d.quit)
	if d.watcher != nil {
		d.watcher.Stop()
	}
	d.wg.Wait()

	if err := d.close(); err != nil {
		errs = append(errs, err)
	}
	log.Info().Msg("controller stopped")
	return errors.Join(errs...)
}

func (d *Daemon) close() error {
	var errs []error
	for _, c := range d.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

// Submit queues a request for the worker without blocking the caller.
func (d *Daemon) Submit(req models.Request) error {
	if !d.registry.Contains(req.Unit) {
		return fmt.Errorf("%w: %q", core.ErrUnregistered, req.Unit)
	}
	if !req.Action.Valid() {
		return fmt.Errorf("%w: %q", core.ErrUnknownAction, req.Action)
	}

	d.mu.Lock()
	stopped := d.stopped
	d.mu.Unlock()
	if stopped {
		return ErrStopped
	}

	select {
	case d.requests <- req:
		return nil
	default:
		log.Warn().Str("unit", req.Unit).Str("action", string(req.Action)).Msg("dropping action, queue full")
		return ErrQueueFull
	}
}

// work executes queued requests one at a time, off the UI goroutine.
// In-flight actions are bounded by the control timeout, not by shutdown.
func (d *Daemon) work() {
	defer d.wg.Done()
	for {
		select {
		case <-d.quit:
			return
		case req := <-d.requests:
			out, err := d.dispatcher.Submit(context.Background(), req)
			if err != nil {
				log.Error().Err(err).Str("unit", req.Unit).Msg("request rejected")
				continue
			}
			d.emitOutcome(out)
		}
	}
}

func (d *Daemon) watchConfig() {
	defer d.wg.Done()
	for {
		select {
		case <-d.quit:
			return
		case ev := <-d.watcher.Events():
			log.Info().Str("component", "watcher").Str("path", ev.Path).Stringer("event", ev.Type).Msg("config file changed")
			body := "Configuration changed. Restart systrayctl to apply it."
			if ev.Type == watcher.EventConfigRemoved {
				body = "Configuration file removed. Defaults apply on next start."
			}
			if err := d.notifier.Notify(d.settings.Notification.Title, body, d.settings.Notification.Timeout); err != nil {
				log.Warn().Err(err).Msg("notification failed")
			}
		}
	}
}

func (d *Daemon) emitOutcome(out core.Outcome) {
	d.mu.Lock()
	fns := append([]func(core.Outcome){}, d.onOutcome...)
	d.mu.Unlock()
	for _, fn := range fns {
		fn(out)
	}
}

// OnOutcome registers fn to run after each queued action completes.
func (d *Daemon) OnOutcome(fn func(core.Outcome)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onOutcome = append(d.onOutcome, fn)
}

// OnChange registers fn to run after each published snapshot.
func (d *Daemon) OnChange(fn func(*core.Snapshot)) {
	d.poller.OnChange(fn)
}

// Execute runs an action synchronously on the caller's goroutine.
func (d *Daemon) Execute(ctx context.Context, unit string, action models.Action) (core.Outcome, error) {
	return d.dispatcher.Execute(ctx, unit, action)
}

// Refresh runs a poll cycle now.
func (d *Daemon) Refresh(ctx context.Context) *core.Snapshot {
	return d.poller.Refresh(ctx)
}

// Snapshot returns the latest state.
func (d *Daemon) Snapshot() *core.Snapshot {
	return d.table.Snapshot()
}

// Services returns the registered services in configuration order.
func (d *Daemon) Services() []models.ServiceEntry {
	return d.registry.Entries()
}

// Registry returns the service registry.
func (d *Daemon) Registry() *registry.Registry {
	return d.registry
}

// Settings returns the settings the controller was built from.
func (d *Daemon) Settings() *models.Settings {
	return d.settings
}
