package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/juststeveking/lookout/internal/monitor"
)

// sparkWidth is the number of recent samples drawn per card
const sparkWidth = 24

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showDetail {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "esc", "enter":
				m.showDetail = false
				return m, nil
			}
		}
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			if m.monitorCancel != nil {
				m.monitorCancel()
			}
			return m, tea.Quit
		case "r":
			if m.refreshing || m.registry == nil {
				return m, nil
			}
			m.refreshing = true
			return m, tea.Batch(refresh(m.registry), m.spinner.Tick)
		case "enter":
			if len(m.entries) > 0 {
				m.showDetail = true
			}
		case "left", "h", "up", "k", "shift+tab":
			m.moveSelection(-1)
		case "right", "l", "down", "j", "tab":
			m.moveSelection(1)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case snapshotMsg:
		m.apply(monitor.Snapshot(msg))
		return m, waitForSnapshot(m.updates)

	case refreshedMsg:
		m.refreshing = false
		m.apply(monitor.Snapshot(msg))

	case spinner.TickMsg:
		// Only keep spinning while something is pending
		if !m.waiting() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		return m, doTick()
	}

	return m, nil
}

// apply replaces the displayed state with snap
func (m *Model) apply(snap monitor.Snapshot) {
	if snap.Updated.Before(m.updated) {
		return
	}
	m.updated = snap.Updated
	m.entries = snap.Observers

	if m.registry != nil {
		for _, e := range snap.Observers {
			m.history[e.ID] = recentValues(m.registry, e.ID, sparkWidth)
		}
	}
	m.clampSelection()
}

// waiting reports whether a check is outstanding
func (m Model) waiting() bool {
	return m.updated.IsZero() || m.refreshing
}

// recentValues returns the last n samples of id; invalid samples are -1
func recentValues(r *monitor.Registry, id string, n int) []int32 {
	items := r.History(id)
	if len(items) > n {
		items = items[len(items)-n:]
	}

	out := make([]int32, len(items))
	for i, it := range items {
		if !it.Valid {
			out[i] = -1
			continue
		}
		out[i] = it.Value
	}
	return out
}

// moveSelection moves the selected index with wrap-around
func (m *Model) moveSelection(delta int) {
	if len(m.entries) == 0 {
		return
	}
	m.selectedIndex = (m.selectedIndex + delta) % len(m.entries)
	if m.selectedIndex < 0 {
		m.selectedIndex += len(m.entries)
	}
}

// clampSelection ensures selection stays within range
func (m *Model) clampSelection() {
	if len(m.entries) == 0 {
		m.selectedIndex = 0
		return
	}
	if m.selectedIndex >= len(m.entries) {
		m.selectedIndex = len(m.entries) - 1
	}
	if m.selectedIndex < 0 {
		m.selectedIndex = 0
	}
}
