package svcmgr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/systrayctl/systrayctl/internal/models"
)

const (
	systemdDest      = "org.freedesktop.systemd1"
	systemdPath      = dbus.ObjectPath("/org/freedesktop/systemd1")
	managerInterface = "org.freedesktop.systemd1.Manager"
	unitInterface    = "org.freedesktop.systemd1.Unit"
	jobInterface     = "org.freedesktop.systemd1.Job"
	propertiesGet    = "org.freedesktop.DBus.Properties.Get"
	errUnknownObject = "org.freedesktop.DBus.Error.UnknownObject"

	jobPollInterval = 100 * time.Millisecond
)

// callFunc invokes method on the systemd object at path and stores the reply in ret.
type callFunc func(ctx context.Context, path dbus.ObjectPath, method string, args []interface{}, ret ...interface{}) error

// DBus talks to systemd directly over D-Bus instead of spawning systemctl.
type DBus struct {
	conn *dbus.Conn
	call callFunc
}

// NewDBus connects to the system bus, or the session bus for the user scope.
func NewDBus(scope string) (*DBus, error) {
	var (
		conn *dbus.Conn
		err  error
	)
	if scope == models.ScopeUser {
		conn, err = dbus.ConnectSessionBus()
	} else {
		conn, err = dbus.ConnectSystemBus()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s bus: %w", scope, err)
	}

	return &DBus{
		conn: conn,
		call: func(ctx context.Context, path dbus.ObjectPath, method string, args []interface{}, ret ...interface{}) error {
			return conn.Object(systemdDest, path).CallWithContext(ctx, method, 0, args...).Store(ret...)
		},
	}, nil
}

func (d *DBus) property(ctx context.Context, path dbus.ObjectPath, iface, name string) (string, error) {
	var v dbus.Variant
	if err := d.call(ctx, path, propertiesGet, []interface{}{iface, name}, &v); err != nil {
		return "", err
	}
	s, ok := v.Value().(string)
	if !ok {
		return "", fmt.Errorf("property %s.%s: unexpected type %T", iface, name, v.Value())
	}
	return s, nil
}

func (d *DBus) unitPath(ctx context.Context, unit string) (dbus.ObjectPath, error) {
	var path dbus.ObjectPath
	if err := d.call(ctx, systemdPath, managerInterface+".LoadUnit", []interface{}{unit}, &path); err != nil {
		return "", err
	}
	return path, nil
}

func (d *DBus) activeState(ctx context.Context, unit string) (string, error) {
	path, err := d.unitPath(ctx, unit)
	if err != nil {
		return "", err
	}

	load, err := d.property(ctx, path, unitInterface, "LoadState")
	if err != nil {
		return "", err
	}
	if load == "not-found" {
		return "", fmt.Errorf("unit %s not found", unit)
	}
	return d.property(ctx, path, unitInterface, "ActiveState")
}

// IsActive returns the unit's ActiveState property ("active", "inactive", ...).
func (d *DBus) IsActive(ctx context.Context, unit string) (string, error) {
	state, err := d.activeState(ctx, unit)
	if err != nil {
		if timedOut(ctx, err) {
			return "", &QueryError{Unit: unit, Err: context.DeadlineExceeded, TimedOut: true}
		}
		return "", &QueryError{Unit: unit, Err: err}
	}
	return state, nil
}

// Control queues a start/stop job and waits for it to leave the job queue,
// then checks the resulting unit state the way systemctl does.
func (d *DBus) Control(ctx context.Context, unit string, action models.Action) error {
	fail := func(err error) error {
		if timedOut(ctx, err) {
			return &ControlError{Unit: unit, Action: action, ExitCode: -1, Err: context.DeadlineExceeded, TimedOut: true}
		}
		return &ControlError{Unit: unit, Action: action, ExitCode: -1, Err: err}
	}

	var method string
	switch action {
	case models.ActionStart:
		method = managerInterface + ".StartUnit"
	case models.ActionStop:
		method = managerInterface + ".StopUnit"
	default:
		return fail(fmt.Errorf("unsupported action %q", action))
	}

	var job dbus.ObjectPath
	if err := d.call(ctx, systemdPath, method, []interface{}{unit, "replace"}, &job); err != nil {
		return fail(err)
	}
	if err := d.waitJob(ctx, job); err != nil {
		return fail(err)
	}

	state, err := d.activeState(ctx, unit)
	if err != nil {
		return fail(err)
	}
	if state == "failed" {
		return fail(errors.New("unit entered failed state"))
	}
	if action == models.ActionStart && state != "active" && state != "activating" && state != "reloading" {
		return fail(fmt.Errorf("unit is %s after start", state))
	}
	return nil
}

// waitJob polls the job object until systemd drops it (job finished).
// Any error other than UnknownObject is a failure, not completion.
func (d *DBus) waitJob(ctx context.Context, job dbus.ObjectPath) error {
	ticker := time.NewTicker(jobPollInterval)
	defer ticker.Stop()

	for {
		if _, err := d.property(ctx, job, jobInterface, "State"); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if isUnknownObject(err) {
				return nil
			}
			return fmt.Errorf("wait for job %s: %w", job, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func isUnknownObject(err error) bool {
	var de dbus.Error
	if errors.As(err, &de) {
		return de.Name == errUnknownObject
	}
	var dep *dbus.Error
	if errors.As(err, &dep) {
		return dep.Name == errUnknownObject
	}
	return false
}

// Close releases the bus connection.
func (d *DBus) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}
