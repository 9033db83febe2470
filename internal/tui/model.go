package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/juststeveking/lookout/internal/monitor"
)

// Model represents the TUI application state
type Model struct {
	registry      *monitor.Registry
	updates       <-chan monitor.Snapshot
	monitorCancel func()

	entries       []monitor.Entry
	history       map[string][]int32
	updated       time.Time
	width         int
	height        int
	quitting      bool
	refreshing    bool
	spinner       spinner.Model
	selectedIndex int
	showDetail    bool
}

// NewModel creates a dashboard over r. updates delivers the snapshot of
// every completed poll cycle; cancel stops the poller on quit.
func NewModel(r *monitor.Registry, updates <-chan monitor.Snapshot, cancel func()) Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(colorChecking)

	return Model{
		registry:      r,
		updates:       updates,
		monitorCancel: cancel,
		history:       make(map[string][]int32),
		spinner:       s,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForSnapshot(m.updates),
		m.spinner.Tick,
		tea.EnterAltScreen,
		doTick(),
	)
}

// snapshotMsg wraps a registry snapshot for Bubble Tea
type snapshotMsg monitor.Snapshot

// refreshedMsg carries the snapshot of a manual refresh
type refreshedMsg monitor.Snapshot

// waitForSnapshot listens for poll cycle snapshots
func waitForSnapshot(updates <-chan monitor.Snapshot) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

// refresh runs an out-of-band update of the registry
func refresh(r *monitor.Registry) tea.Cmd {
	return func() tea.Msg {
		r.Update(context.Background())
		return refreshedMsg(r.Snapshot())
	}
}

// tickMsg is sent on every tick
type tickMsg time.Time

// doTick returns a command that waits for the next tick
func doTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
