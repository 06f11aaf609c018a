package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog/log"
)

const (
	notificationsDest   = "org.freedesktop.Notifications"
	notificationsPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	notificationsNotify = "org.freedesktop.Notifications.Notify"

	// callTimeout bounds the D-Bus round trip, not how long the popup stays up.
	callTimeout = 2 * time.Second
)

// DBus sends freedesktop notifications over the session bus. Unlike beeep it
// honours the per-notification expiry timeout.
type DBus struct {
	conn    *dbus.Conn
	appName string
	icon    string
}

// NewDBus connects to the session bus.
func NewDBus(appName, icon string) (*DBus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &DBus{conn: conn, appName: appName, icon: icon}, nil
}

// expireMillis converts a timeout into the Notify expire_timeout argument.
// Non-positive timeouts use the server default (-1).
func expireMillis(timeout time.Duration) int32 {
	if timeout <= 0 {
		return -1
	}
	return int32(timeout.Milliseconds())
}

// Notify shows a notification.
func (n *DBus) Notify(title, body string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	var id uint32
	err := n.conn.Object(notificationsDest, notificationsPath).CallWithContext(ctx, notificationsNotify, 0,
		n.appName,
		uint32(0),
		n.icon,
		title,
		body,
		[]string{},
		map[string]dbus.Variant{},
		expireMillis(timeout),
	).Store(&id)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

// Close releases the bus connection.
func (n *DBus) Close() error {
	return n.conn.Close()
}

// Beeep sends notifications through gen2brain/beeep, which works on
// platforms without a freedesktop notification server.
type Beeep struct {
	icon string
}

// NewBeeep creates a beeep notifier and sets the application name it reports.
func NewBeeep(appName, icon string) *Beeep {
	beeep.AppName = appName
	return &Beeep{icon: icon}
}

// Notify shows a notification. beeep has no expiry control, so timeout is ignored.
func (b *Beeep) Notify(title, body string, timeout time.Duration) error {
	return beeep.Notify(title, body, b.icon)
}

// Desktop returns the best available desktop notifier: the freedesktop D-Bus
// service when reachable, beeep otherwise. The returned close func releases
// any connection.
func Desktop(appName, icon string) (Notifier, func() error) {
	n, err := NewDBus(appName, icon)
	if err == nil {
		return n, n.Close
	}
	log.Debug().Str("component", "notify").Err(err).Msg("falling back to beeep notifications")
	return NewBeeep(appName, icon), func() error { return nil }
}
