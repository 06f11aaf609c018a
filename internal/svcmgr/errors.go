// Package svcmgr talks to the init system's service manager.
package svcmgr

import (
	"context"
	"errors"
	"fmt"

	"github.com/systrayctl/systrayctl/internal/models"
)

// QueryError is returned when a status query fails or times out.
type QueryError struct {
	Unit     string
	Err      error
	TimedOut bool
}

func (e *QueryError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("query %s: timed out", e.Unit)
	}
	return fmt.Sprintf("query %s: %v", e.Unit, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// ControlError is returned when a start/stop request fails or times out.
// ExitCode is -1 when no exit status is available.
type ControlError struct {
	Unit     string
	Action   models.Action
	ExitCode int
	Err      error
	TimedOut bool
}

func (e *ControlError) Error() string {
	switch {
	case e.TimedOut:
		return fmt.Sprintf("%s %s: timed out", e.Action, e.Unit)
	case e.ExitCode > 0:
		return fmt.Sprintf("%s %s: exit status %d: %v", e.Action, e.Unit, e.ExitCode, e.Err)
	default:
		return fmt.Sprintf("%s %s: %v", e.Action, e.Unit, e.Err)
	}
}

func (e *ControlError) Unwrap() error { return e.Err }

// timedOut reports whether ctx ended because of its deadline.
func timedOut(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
}
