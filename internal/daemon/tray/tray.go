package tray

import (
	"sync"
	"time"

	"github.com/getlantern/systray"
	"github.com/rs/zerolog/log"

	"github.com/systrayctl/systrayctl/internal/core"
	"github.com/systrayctl/systrayctl/internal/models"
	"github.com/systrayctl/systrayctl/internal/presenter"
)

// serviceItems are the menu items for one service.
type serviceItems struct {
	svc   models.ServiceEntry
	menu  *systray.MenuItem
	start *systray.MenuItem
	stop  *systray.MenuItem
}

// Tray renders controller state into the system tray.
type Tray struct {
	state      DaemonState
	staleAfter time.Duration
	onStart    func()
	onExit     func()

	mu       sync.Mutex
	ready    bool
	items    []serviceItems
	quitItem *systray.MenuItem
	icon     presenter.IconState
	now      func() time.Time
	done     chan struct{}
}

// New creates a tray for state. Entries older than staleAfter are marked stale.
func New(state DaemonState, staleAfter time.Duration) *Tray {
	return &Tray{
		state:      state,
		staleAfter: staleAfter,
		icon:       -1,
		now:        time.Now,
		done:       make(chan struct{}),
	}
}

// Run starts the system tray. This blocks the calling goroutine (must be main).
// onStartFn is called when the tray is ready (start the controller here).
// onExitFn is called when the tray exits (cleanup here).
func (t *Tray) Run(onStartFn, onExitFn func()) {
	t.onStart = onStartFn
	t.onExit = onExitFn
	systray.Run(t.onReady, t.onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetIcon(iconData(presenter.IconLoading))
	systray.SetTooltip("Initializing...")

	services := t.state.Services()
	items := make([]serviceItems, 0, len(services))
	for _, svc := range services {
		menu := systray.AddMenuItem(presenter.MenuTitle(svc, t.state.Snapshot()), svc.Unit)
		si := serviceItems{
			svc:   svc,
			menu:  menu,
			start: menu.AddSubMenuItem("Start", "Start "+svc.Unit),
			stop:  menu.AddSubMenuItem("Stop", "Stop "+svc.Unit),
		}
		si.start.Disable()
		si.stop.Disable()
		items = append(items, si)
	}

	systray.AddSeparator()
	quitItem := systray.AddMenuItem("Quit", "Quit systrayctl")

	t.mu.Lock()
	t.items = items
	t.quitItem = quitItem
	t.ready = true
	t.mu.Unlock()

	for _, si := range items {
		go t.forward(si.start.ClickedCh, models.Request{Unit: si.svc.Unit, Action: models.ActionStart})
		go t.forward(si.stop.ClickedCh, models.Request{Unit: si.svc.Unit, Action: models.ActionStop})
	}
	go t.handleQuit()
	go t.redrawLoop(t.redrawInterval())

	if t.onStart != nil {
		t.onStart()
	}

	// The first poll may have finished before the menu existed.
	t.Update(t.state.Snapshot())
}

func (t *Tray) onQuit() {
	close(t.done)
	if t.onExit != nil {
		t.onExit()
	}
}

// redrawInterval is how often the tray re-renders without a new snapshot,
// so stale entries get flagged even when polls stall.
func (t *Tray) redrawInterval() time.Duration {
	if d := t.staleAfter / 3; d > 0 {
		return d
	}
	return time.Second
}

func (t *Tray) redrawLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	t.redrawOn(ticker.C, func() { t.Update(t.state.Snapshot()) })
}

// redrawOn calls redraw for every tick until the tray quits.
func (t *Tray) redrawOn(ticks <-chan time.Time, redraw func()) {
	for {
		select {
		case <-t.done:
			return
		case <-ticks:
			redraw()
		}
	}
}

// forward turns clicks on one menu item into requests. Each goroutine owns
// its own copy of req.
func (t *Tray) forward(clicks <-chan struct{}, req models.Request) {
	for range clicks {
		log.Debug().Str("unit", req.Unit).Str("action", string(req.Action)).Msg("menu click")
		if err := t.state.Submit(req); err != nil {
			log.Warn().Err(err).Str("unit", req.Unit).Msg("failed to queue action")
		}
	}
}

func (t *Tray) handleQuit() {
	t.mu.Lock()
	quit := t.quitItem
	t.mu.Unlock()

	<-quit.ClickedCh
	t.state.RequestShutdown()
}

// Update refreshes menu titles, enabled actions, tooltip and icon.
// Safe to call from any goroutine, before or after the tray is ready.
func (t *Tray) Update(snap *core.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.ready {
		return
	}

	services := make([]models.ServiceEntry, 0, len(t.items))
	for _, si := range t.items {
		services = append(services, si.svc)
		si.menu.SetTitle(presenter.MenuTitle(si.svc, snap))

		start, stop := presenter.Affordances(snap, si.svc.Unit)
		setEnabled(si.start, start)
		setEnabled(si.stop, stop)
	}

	systray.SetTooltip(presenter.Tooltip(services, snap, t.now(), t.staleAfter))

	if state := presenter.Aggregate(services, snap); state != t.icon {
		systray.SetIcon(iconData(state))
		t.icon = state
	}
}

func setEnabled(item *systray.MenuItem, enabled bool) {
	if enabled {
		item.Enable()
	} else {
		item.Disable()
	}
}
