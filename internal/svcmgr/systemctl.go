package svcmgr

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/systrayctl/systrayctl/internal/models"
)

// waitDelay bounds how long a killed systemctl may keep its output pipes open.
const waitDelay = 500 * time.Millisecond

// exitNoSuchUnit is what `systemctl is-active` returns for a unit that does not exist.
const exitNoSuchUnit = 4

// knownStates are the words `systemctl is-active` prints alongside a non-zero exit.
var knownStates = map[string]bool{
	"inactive":     true,
	"failed":       true,
	"activating":   true,
	"deactivating": true,
	"reloading":    true,
	"maintenance":  true,
	"refreshing":   true,
}

// Systemctl drives the service manager through the systemctl binary.
type Systemctl struct {
	// Binary is the systemctl executable; defaults to "systemctl" on PATH.
	Binary string
	// User targets the per-user manager (systemctl --user).
	User bool
}

// NewSystemctl creates a systemctl backend for the given scope.
func NewSystemctl(scope string) *Systemctl {
	return &Systemctl{Binary: "systemctl", User: scope == models.ScopeUser}
}

func (s *Systemctl) args(verb, unit string) []string {
	if s.User {
		return []string{"--user", verb, unit}
	}
	return []string{verb, unit}
}

func (s *Systemctl) binary() string {
	if s.Binary == "" {
		return "systemctl"
	}
	return s.Binary
}

// IsActive runs `systemctl is-active <unit>` and returns the state word it prints.
// Non-zero exits that still print a recognised state are not errors: that is
// how systemctl reports anything other than "active".
func (s *Systemctl) IsActive(ctx context.Context, unit string) (string, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, s.binary(), s.args("is-active", unit)...)
	cmd.Stdout = &stdout
	cmd.Stderr = nil
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	state := strings.TrimSpace(stdout.String())

	if err == nil {
		return state, nil
	}
	if timedOut(ctx, err) {
		return "", &QueryError{Unit: unit, Err: context.DeadlineExceeded, TimedOut: true}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() != exitNoSuchUnit && knownStates[state] {
		return state, nil
	}
	return "", &QueryError{Unit: unit, Err: err}
}

// Control runs `systemctl <action> <unit>`.
func (s *Systemctl) Control(ctx context.Context, unit string, action models.Action) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.binary(), s.args(string(action), unit)...)
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if err == nil {
		return nil
	}

	cerr := &ControlError{Unit: unit, Action: action, ExitCode: -1, Err: err}
	if timedOut(ctx, err) {
		cerr.TimedOut = true
		cerr.Err = context.DeadlineExceeded
		return cerr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cerr.ExitCode = exitErr.ExitCode()
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			cerr.Err = errors.New(msg)
		}
	}
	return cerr
}

// Close is a no-op; systemctl holds no resources between calls.
func (s *Systemctl) Close() error { return nil }
