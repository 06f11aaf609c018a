// Package watcher watches the configuration file for edits.
package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// EventType represents the type of configuration change.
type EventType int

// Event types for configuration changes.
const (
	EventConfigChanged EventType = iota
	EventConfigRemoved
)

func (t EventType) String() string {
	switch t {
	case EventConfigChanged:
		return "changed"
	case EventConfigRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event represents a configuration file change.
type Event struct {
	Type EventType
	Path string
}

// DefaultDebounce coalesces the burst of events an editor produces on save.
const DefaultDebounce = 250 * time.Millisecond

// Watcher watches a single configuration file.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	path       string
	eventsChan chan Event
	done       chan struct{}
	stopOnce   sync.Once
	debounce   time.Duration
	timerMu    sync.Mutex
	timer      *time.Timer
	pending    EventType
}

// New creates a watcher for the config file at path.
func New(path string, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		fsWatcher:  fsWatcher,
		path:       abs,
		eventsChan: make(chan Event, 8),
		done:       make(chan struct{}),
		debounce:   debounce,
	}, nil
}

// Events returns the channel for receiving events.
func (w *Watcher) Events() <-chan Event {
	return w.eventsChan
}

// Start starts the watcher. The containing directory is watched rather than
// the file itself so atomic saves (write tmp, rename over) are seen.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.processEvents()

	log.Debug().Str("component", "watcher").Str("path", w.path).Msg("watching config file")
	return nil
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.timerMu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.timerMu.Unlock()
	})
}

// processEvents processes file system events.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn().Str("component", "watcher").Err(err).Msg("watcher error")
		}
	}
}

// handleEvent filters events down to the config file and debounces them.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	var typ EventType
	switch {
	case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
		// Rename covers atomic saves, but also a move away; the debounce
		// settles which one it was by checking the file afterwards.
		typ = EventConfigChanged
	case event.Op&fsnotify.Remove != 0:
		typ = EventConfigRemoved
	default:
		return
	}

	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	w.pending = typ
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

// fire emits the debounced event.
func (w *Watcher) fire() {
	w.timerMu.Lock()
	typ := w.pending
	w.timer = nil
	w.timerMu.Unlock()

	if typ == EventConfigChanged && !fileExists(w.path) {
		typ = EventConfigRemoved
	}

	select {
	case w.eventsChan <- Event{Type: typ, Path: w.path}:
	case <-w.done:
	default:
		log.Debug().Str("component", "watcher").Msg("event channel full, dropping config event")
	}
}
