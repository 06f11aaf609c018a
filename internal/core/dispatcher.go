package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/systrayctl/systrayctl/internal/models"
	"github.com/systrayctl/systrayctl/internal/registry"
)

// DefaultControlTimeout bounds a single start/stop call.
const DefaultControlTimeout = 30 * time.Second

// Dispatcher errors. Both are rejected before any external call is made.
var (
	ErrUnregistered  = errors.New("unit is not registered")
	ErrUnknownAction = errors.New("unknown action")
)

// Controller performs a mutating service-manager call.
type Controller interface {
	Control(ctx context.Context, unit string, action models.Action) error
}

// Notifier shows a message to the user. Delivery is best effort.
type Notifier interface {
	Notify(title, body string, timeout time.Duration) error
}

// Refresher re-reads service state; satisfied by *Poller.
type Refresher interface {
	Refresh(ctx context.Context) *Snapshot
}

// Outcome is the result of one dispatched action as reported by the
// service manager. It says nothing about the state afterwards; read the
// snapshot for that.
type Outcome struct {
	RequestID string
	Unit      string
	Action    models.Action
	Success   bool
	Err       error
	Message   string
	Snapshot  *Snapshot
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	ControlTimeout      time.Duration
	NotifyTitle         string
	NotificationTimeout time.Duration
}

// Dispatcher executes start/stop requests and reports their outcome.
type Dispatcher struct {
	registry   *registry.Registry
	controller Controller
	notifier   Notifier
	refresher  Refresher
	opts       DispatcherOptions
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(reg *registry.Registry, c Controller, n Notifier, r Refresher, opts DispatcherOptions) *Dispatcher {
	if opts.ControlTimeout <= 0 {
		opts.ControlTimeout = DefaultControlTimeout
	}
	if opts.NotifyTitle == "" {
		opts.NotifyTitle = "Systemctl Tray"
	}
	return &Dispatcher{
		registry:   reg,
		controller: c,
		notifier:   n,
		refresher:  r,
		opts:       opts,
	}
}

// SuccessMessage is the notification body for a successful action.
// The verb is suffixed with "ed" verbatim, so "stop" reads "stoped".
func SuccessMessage(unit string, action models.Action) string {
	return fmt.Sprintf("%s %sed successfully", unit, action)
}

// FailureMessage is the notification body for a failed action.
func FailureMessage(unit string, action models.Action) string {
	return fmt.Sprintf("Failed to %s %s", action, unit)
}

// Execute runs action against unit, notifies the user, and refreshes state.
// The returned error is non-nil only for rejected requests (unregistered
// unit, unknown action); service-manager failures are reported in Outcome.
func (d *Dispatcher) Execute(ctx context.Context, unit string, action models.Action) (Outcome, error) {
	if !d.registry.Contains(unit) {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnregistered, unit)
	}
	if !action.Valid() {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	out := Outcome{
		RequestID: uuid.NewString(),
		Unit:      unit,
		Action:    action,
	}
	logger := log.With().
		Str("request_id", out.RequestID).
		Str("unit", unit).
		Str("action", string(action)).
		Logger()

	logger.Info().Msg("dispatching")
	start := time.Now()

	cctx, cancel := context.WithTimeout(ctx, d.opts.ControlTimeout)
	err := d.controller.Control(cctx, unit, action)
	cancel()

	if err != nil {
		out.Err = err
		out.Message = FailureMessage(unit, action)
		logger.Warn().Err(err).Dur("took", time.Since(start)).Msg("action failed")
	} else {
		out.Success = true
		out.Message = SuccessMessage(unit, action)
		logger.Info().Dur("took", time.Since(start)).Msg("action succeeded")
	}

	if nerr := d.notifier.Notify(d.opts.NotifyTitle, out.Message, d.opts.NotificationTimeout); nerr != nil {
		logger.Warn().Err(nerr).Msg("notification failed")
	}

	// The manager's own verdict is not the state; always re-read it.
	out.Snapshot = d.refresher.Refresh(ctx)
	return out, nil
}

// Submit is a convenience for executing a Request value.
func (d *Dispatcher) Submit(ctx context.Context, req models.Request) (Outcome, error) {
	return d.Execute(ctx, req.Unit, req.Action)
}
