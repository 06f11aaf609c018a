// Package notify delivers user-visible messages: desktop notifications,
// log lines, or anything else that implements Notifier.
package notify

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Notifier shows a message to the user.
type Notifier interface {
	Notify(title, body string, timeout time.Duration) error
}

// Func adapts a function to Notifier.
type Func func(title, body string, timeout time.Duration) error

// Notify calls f.
func (f Func) Notify(title, body string, timeout time.Duration) error {
	return f(title, body, timeout)
}

// Multi fans a notification out to every notifier. Each one is attempted
// even if an earlier one fails.
type Multi []Notifier

// Notify delivers to all notifiers and joins their errors.
func (m Multi) Notify(title, body string, timeout time.Duration) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(title, body, timeout); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Log writes notifications to the structured log. Used headless and as a
// record next to desktop notifications.
type Log struct{}

// Notify logs the message.
func (Log) Notify(title, body string, timeout time.Duration) error {
	log.Info().Str("component", "notify").Str("title", title).Msg(body)
	return nil
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu       sync.Mutex
	Messages []Message
}

// Message is a recorded notification.
type Message struct {
	Title   string
	Body    string
	Timeout time.Duration
}

// Notify records the message.
func (r *Recorder) Notify(title, body string, timeout time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, Message{Title: title, Body: body, Timeout: timeout})
	return nil
}

// All returns a copy of the recorded messages.
func (r *Recorder) All() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.Messages...)
}
