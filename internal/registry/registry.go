// Package registry holds the static set of services the controller manages.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/systrayctl/systrayctl/internal/models"
)

// Registry validation errors.
var (
	ErrEmptyLabel     = errors.New("empty label")
	ErrEmptyUnit      = errors.New("empty unit")
	ErrDuplicateUnit  = errors.New("duplicate unit")
	ErrDuplicateLabel = errors.New("duplicate label")
)

// Registry is an ordered, read-only mapping from label to unit.
type Registry struct {
	entries []models.ServiceEntry
	byUnit  map[string]int
	byLabel map[string]int
}

// New builds a registry from entries, preserving their order.
// All problems are reported together so a bad config can be fixed in one pass.
func New(entries []models.ServiceEntry) (*Registry, error) {
	r := &Registry{
		entries: make([]models.ServiceEntry, 0, len(entries)),
		byUnit:  make(map[string]int, len(entries)),
		byLabel: make(map[string]int, len(entries)),
	}

	var errs []error
	for i, e := range entries {
		e.Label = strings.TrimSpace(e.Label)
		e.Unit = strings.TrimSpace(e.Unit)

		if e.Label == "" {
			errs = append(errs, fmt.Errorf("services[%d]: %w", i, ErrEmptyLabel))
		}
		if e.Unit == "" {
			errs = append(errs, fmt.Errorf("services[%d]: %w", i, ErrEmptyUnit))
		}
		if e.Label == "" || e.Unit == "" {
			continue
		}
		if _, ok := r.byUnit[e.Unit]; ok {
			errs = append(errs, fmt.Errorf("services[%d]: %w %q", i, ErrDuplicateUnit, e.Unit))
			continue
		}
		if _, ok := r.byLabel[e.Label]; ok {
			errs = append(errs, fmt.Errorf("services[%d]: %w %q", i, ErrDuplicateLabel, e.Label))
			continue
		}

		r.byUnit[e.Unit] = len(r.entries)
		r.byLabel[e.Label] = len(r.entries)
		r.entries = append(r.entries, e)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// Entries returns a copy of the registered entries in configuration order.
func (r *Registry) Entries() []models.ServiceEntry {
	out := make([]models.ServiceEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of registered services.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Lookup finds an entry by unit name.
func (r *Registry) Lookup(unit string) (models.ServiceEntry, bool) {
	i, ok := r.byUnit[unit]
	if !ok {
		return models.ServiceEntry{}, false
	}
	return r.entries[i], true
}

// Contains reports whether unit is registered.
func (r *Registry) Contains(unit string) bool {
	_, ok := r.byUnit[unit]
	return ok
}

// Resolve finds an entry by unit name or, failing that, by label.
// Used by the CLI, where users type whichever they remember.
func (r *Registry) Resolve(name string) (models.ServiceEntry, bool) {
	if e, ok := r.Lookup(name); ok {
		return e, true
	}
	if i, ok := r.byLabel[name]; ok {
		return r.entries[i], true
	}
	// "ollama" for "ollama.service"
	if i, ok := r.byUnit[name+".service"]; ok {
		return r.entries[i], true
	}
	return models.ServiceEntry{}, false
}
