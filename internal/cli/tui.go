package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/systrayctl/systrayctl/internal/daemon"
	"github.com/systrayctl/systrayctl/internal/notify"
	"github.com/systrayctl/systrayctl/internal/tui"
)

var tuiLogFile string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Control services from an interactive terminal UI",
	Args:  cobra.NoArgs,
	// Log lines would corrupt the alt screen; runTUI redirects them to --log-file.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLog(io.Discard)
	},
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiLogFile, "log-file", "", "write logs to this file")
}

// openLogFile opens path for appending. An empty path discards logs.
// The returned close function points the logger back at io.Discard first.
func openLogFile(path string) (io.Writer, func() error, error) {
	if path == "" {
		return io.Discard, func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() error {
		initLog(io.Discard)
		return f.Close()
	}, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	w, closeLog, err := openLogFile(tuiLogFile)
	if err != nil {
		return err
	}
	defer closeLog()
	initLog(w)

	settings, path, err := loadSettings()
	if err != nil {
		return err
	}

	// Outcomes are shown in the status line; the desktop still gets a notification.
	desktop, closeDesktop := notify.Desktop(settings.Notification.AppName, "")
	defer closeDesktop()

	d, err := daemon.New(settings, daemon.Options{ConfigPath: path, Notifier: desktop})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		_ = d.Stop()
		return err
	}

	runErr := tui.Run(d, settings.StaleAfter())
	cancel()
	return errors.Join(runErr, d.Stop())
}
