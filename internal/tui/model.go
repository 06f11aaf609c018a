package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/systrayctl/systrayctl/internal/core"
	"github.com/systrayctl/systrayctl/internal/models"
	"github.com/systrayctl/systrayctl/internal/presenter"
)

const tickInterval = time.Second

// Model is the root Bubble Tea model.
type Model struct {
	ctrl       Controller
	services   []models.ServiceEntry
	snap       *core.Snapshot
	staleAfter time.Duration
	now        func() time.Time

	cursor    int
	message   string
	messageOK bool
	help      help.Model
	width     int
	quitting  bool
}

// NewModel creates the root model for ctrl.
func NewModel(ctrl Controller, staleAfter time.Duration) Model {
	return Model{
		ctrl:       ctrl,
		services:   ctrl.Services(),
		snap:       ctrl.Snapshot(),
		staleAfter: staleAfter,
		now:        time.Now,
		help:       help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m Model) refreshCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return SnapshotMsg{Snapshot: ctrl.Refresh(context.Background())}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		return m, tickCmd()

	case SnapshotMsg:
		m.applySnapshot(msg.Snapshot)
		return m, nil

	case OutcomeMsg:
		m.message = msg.Outcome.Message
		m.messageOK = msg.Outcome.Success
		m.applySnapshot(msg.Outcome.Snapshot)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// applySnapshot ignores snapshots older than the one on screen.
func (m *Model) applySnapshot(s *core.Snapshot) {
	if s == nil {
		return
	}
	if m.snap != nil && s.Seq < m.snap.Seq {
		return
	}
	m.snap = s
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.services)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Start):
		m.submit(models.ActionStart)
	case key.Matches(msg, keys.Stop):
		m.submit(models.ActionStop)
	case key.Matches(msg, keys.Refresh):
		m.message = "Refreshing..."
		m.messageOK = true
		return m, m.refreshCmd()
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) submit(action models.Action) {
	if len(m.services) == 0 {
		return
	}
	svc := m.services[m.cursor]
	start, stop := presenter.Affordances(m.snap, svc.Unit)
	allowed := start
	if action == models.ActionStop {
		allowed = stop
	}
	if !allowed {
		m.message = fmt.Sprintf("%s: %s is not available while %s", svc.Label, action, m.statusWord(svc))
		m.messageOK = false
		return
	}
	if err := m.ctrl.Submit(models.Request{Unit: svc.Unit, Action: action}); err != nil {
		m.message = fmt.Sprintf("%s: %v", svc.Label, err)
		m.messageOK = false
		return
	}
	m.message = fmt.Sprintf("Requested %s of %s...", action, svc.Unit)
	m.messageOK = true
}

func (m Model) statusWord(svc models.ServiceEntry) string {
	return strings.ToLower(presenter.StatusText(m.snap, svc.Unit, m.now(), m.staleAfter))
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Service Status"))
	b.WriteString("\n\n")

	labelWidth := 0
	for _, svc := range m.services {
		labelWidth = max(labelWidth, len(svc.Label))
	}

	now := m.now()
	for i, svc := range m.services {
		cursor := "  "
		label := labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, svc.Label))
		if i == m.cursor {
			cursor = "> "
			label = selectedStyle.Render(fmt.Sprintf("%-*s", labelWidth, svc.Label))
		}
		status := presenter.StatusText(m.snap, svc.Unit, now, m.staleAfter)
		fmt.Fprintf(&b, "%s%s %s  %s  %s\n",
			cursor,
			presenter.Marker(m.snap, svc.Unit),
			label,
			statusStyle(m.snap, svc.Unit).Render(fmt.Sprintf("%-18s", status)),
			unitStyle.Render(svc.Unit),
		)
	}

	b.WriteString("\n")
	if m.snap != nil && m.snap.Loaded() {
		ago := now.Sub(m.snap.CompletedAt).Truncate(time.Second)
		b.WriteString(dimStyle.Render(fmt.Sprintf("updated %s ago", ago)))
	} else {
		b.WriteString(dimStyle.Render("Initializing..."))
	}
	b.WriteString("\n")

	if m.message != "" {
		style := messageStyle
		if !m.messageOK {
			style = errorStyle
		}
		b.WriteString(style.Render(m.message))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}

func statusStyle(snap *core.Snapshot, unit string) lipgloss.Style {
	e, ok := snap.Lookup(unit)
	if !ok {
		return dimStyle
	}
	switch e.Status {
	case models.StatusActive:
		return statusActiveStyle
	case models.StatusInactive:
		return statusInactiveStyle
	default:
		return statusUnknownStyle
	}
}
