// Package tui implements the interactive terminal UI for systrayctl.
package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/systrayctl/systrayctl/internal/core"
	"github.com/systrayctl/systrayctl/internal/models"
)

// Controller is what the TUI needs from the running controller.
type Controller interface {
	Services() []models.ServiceEntry
	Snapshot() *core.Snapshot
	Submit(req models.Request) error
	Refresh(ctx context.Context) *core.Snapshot
	OnChange(fn func(*core.Snapshot))
	OnOutcome(fn func(core.Outcome))
}

// programRef is a shared reference to the tea.Program for goroutine sends.
// It's set after tea.NewProgram but before p.Run().
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) Set(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Clear nils out the program reference, preventing post-exit sends.
func (r *programRef) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = nil
}

// Run launches the TUI against ctrl. It blocks until the user quits.
func Run(ctrl Controller, staleAfter time.Duration) error {
	ref := &programRef{}

	ctrl.OnChange(func(s *core.Snapshot) { ref.Send(SnapshotMsg{Snapshot: s}) })
	ctrl.OnOutcome(func(o core.Outcome) { ref.Send(OutcomeMsg{Outcome: o}) })

	p := tea.NewProgram(NewModel(ctrl, staleAfter), tea.WithAltScreen())

	// Store program reference for goroutine sends
	ref.Set(p)
	defer ref.Clear()

	_, err := p.Run()
	return err
}
