package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/systrayctl/systrayctl/internal/core"
	"github.com/systrayctl/systrayctl/internal/daemon"
	"github.com/systrayctl/systrayctl/internal/daemon/tray"
	"github.com/systrayctl/systrayctl/internal/models"
)

var (
	runForegroundFlag bool
	runInterval       time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the tray controller",
	Long: `Run the tray controller. The tray icon shows the aggregate state of all
configured services; each service gets a submenu with Start and Stop.

With --foreground no tray is shown and state changes are only logged.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runForegroundFlag, "foreground", false, "run without a system tray (log state changes only)")
	runCmd.Flags().DurationVar(&runInterval, "interval", 0, "override poll_interval (e.g. 5s)")
}

func runRun(cmd *cobra.Command, args []string) error {
	settings, path, err := loadSettings()
	if err != nil {
		return err
	}
	if runInterval > 0 {
		settings.PollInterval = runInterval
	}

	d, err := daemon.New(settings, daemon.Options{ConfigPath: path})
	if err != nil {
		return err
	}

	if runForegroundFlag {
		log.Info().Msg("Running in foreground mode (no system tray)")
		return runForeground(d)
	}
	log.Info().Msg("Running with system tray")
	return runWithTray(d)
}

// runForeground runs the controller without a system tray, blocking on signals.
func runForeground(d *daemon.Daemon) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	changes := newChangeLogger(d.Services())
	d.OnChange(changes.Update)

	if err := d.Start(ctx); err != nil {
		_ = d.Stop()
		return err
	}

	<-ctx.Done()
	log.Info().Msg("Received signal, shutting down...")
	return d.Stop()
}

// runWithTray runs the controller with a system tray icon on the main goroutine.
// systray.Run must occupy the main goroutine on macOS (Cocoa requirement).
func runWithTray(d *daemon.Daemon) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t := tray.New(&trayState{Daemon: d}, d.Settings().StaleAfter())
	d.OnChange(t.Update)

	var runErr error

	onStart := func() {
		if err := d.Start(ctx); err != nil {
			runErr = err
			tray.Quit()
			return
		}

		// Quit the tray on SIGINT/SIGTERM
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			log.Info().Stringer("signal", sig).Msg("Received signal, shutting down...")
			tray.Quit()
		}()
	}

	onExit := func() {
		cancel()
		if err := d.Stop(); err != nil && runErr == nil {
			runErr = err
		}
	}

	// This blocks the main goroutine until tray exits.
	t.Run(onStart, onExit)
	return runErr
}

// trayState adapts the controller to tray.DaemonState.
type trayState struct {
	*daemon.Daemon
}

func (s *trayState) RequestShutdown() {
	log.Info().Msg("Quit requested from tray")
	tray.Quit()
}

// changeLogger is the headless adapter: it logs status transitions.
type changeLogger struct {
	services []models.ServiceEntry

	mu   sync.Mutex
	last map[string]models.Status
}

func newChangeLogger(services []models.ServiceEntry) *changeLogger {
	return &changeLogger{services: services, last: make(map[string]models.Status)}
}

// Update logs every service whose status differs from the previous snapshot.
func (c *changeLogger) Update(snap *core.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, svc := range c.services {
		e, ok := snap.Lookup(svc.Unit)
		if !ok {
			continue
		}
		prev, seen := c.last[svc.Unit]
		if seen && prev == e.Status {
			continue
		}
		c.last[svc.Unit] = e.Status

		ev := log.Info()
		if e.Status == models.StatusUnknown {
			ev = log.Warn().Err(e.Err)
		}
		ev.Str("unit", svc.Unit).
			Str("label", svc.Label).
			Stringer("status", e.Status).
			Str("state", e.State).
			Msg("service status")
	}
}
