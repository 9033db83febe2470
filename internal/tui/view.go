package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/juststeveking/lookout/internal/monitor"
)

var (
	colorAccent    = lipgloss.Color("#04D9FF") // Neon Cyan
	colorHealthy   = lipgloss.Color("#00FF94") // Neon Green
	colorUnhealthy = lipgloss.Color("#FF0055") // Neon Red
	colorBroken    = lipgloss.Color("#FF9E3B") // Orange
	colorChecking  = lipgloss.Color("#FFD700") // Gold
	colorValue     = lipgloss.Color("#7AA2F7") // Soft Blue
	colorMuted     = lipgloss.Color("#565f89") // Muted Blue
	colorSubtle    = lipgloss.Color("#24283b") // Dark Blue
	colorCard      = lipgloss.Color("#16161e") // Very Dark Blue
	colorText      = lipgloss.Color("#c0caf5") // Light Blue/White

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginTop(1).
			MarginBottom(1)

	healthyStyle = lipgloss.NewStyle().
			Foreground(colorHealthy).
			Bold(true)

	unhealthyStyle = lipgloss.NewStyle().
			Foreground(colorUnhealthy).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorValue).
			Bold(true)

	// Base card style (border color will be overridden)
	baseCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Background(colorCard).
			Padding(0, 1).
			MarginRight(1).
			MarginBottom(1)

	metadataStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText)

	secondaryStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// indexed pairs an entry with its position in the registry
type indexed struct {
	index int
	entry monitor.Entry
}

// View renders the TUI with full-screen grid layout
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	if width < 40 {
		width = 80
	}

	if m.showDetail && len(m.entries) > 0 {
		return m.renderDetail(width)
	}

	cols := 2
	if width > 160 {
		cols = 3
	}
	if width > 200 {
		cols = 4
	}
	cardWidth := (width - 4) / cols
	if cardWidth < 20 {
		cardWidth = 20
		cols = 1
	}

	var b strings.Builder
	b.WriteString(m.renderHeader(width))
	b.WriteString("\n")

	if m.updated.IsZero() {
		b.WriteString("\n")
		centerText := m.spinner.View() + " Waiting for the first check..."
		padding := (width - lipgloss.Width(centerText)) / 2
		if padding > 0 {
			b.WriteString(strings.Repeat(" ", padding))
		}
		b.WriteString(metadataStyle.Render(centerText))
		b.WriteString("\n")
	} else {
		var failing, running, values, unknown []indexed
		for i, e := range m.entries {
			item := indexed{index: i, entry: e}
			switch e.Status {
			case monitor.StatusBroken, monitor.StatusDown:
				failing = append(failing, item)
			case monitor.StatusRunning:
				running = append(running, item)
			case monitor.StatusValue:
				values = append(values, item)
			default:
				unknown = append(unknown, item)
			}
		}

		groups := []struct {
			title string
			items []indexed
		}{
			{"✗ Failing", failing},
			{"✓ Running", running},
			{"◆ Readings", values},
			{"? Unknown", unknown},
		}
		for _, g := range groups {
			if len(g.items) == 0 {
				continue
			}
			b.WriteString("\n" + headerStyle.Render(fmt.Sprintf("%s (%d)", g.title, len(g.items))) + "\n")
			b.WriteString(m.renderGrid(g.items, cardWidth, cols))
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter(width))
	b.WriteString("\n")

	return b.String()
}

// renderHeader renders the title and status counters
func (m Model) renderHeader(width int) string {
	running, failing, values := 0, 0, 0
	for _, e := range m.entries {
		switch e.Status {
		case monitor.StatusRunning:
			running++
		case monitor.StatusBroken, monitor.StatusDown:
			failing++
		case monitor.StatusValue:
			values++
		}
	}

	titleRendered := titleStyle.Render("LOOKOUT")

	var stats string
	if len(m.entries) > 0 {
		stats = fmt.Sprintf("%s  %s  %s",
			healthyStyle.Render(fmt.Sprintf("● %d", running)),
			unhealthyStyle.Render(fmt.Sprintf("● %d", failing)),
			valueStyle.Render(fmt.Sprintf("● %d", values)),
		)
	}

	availableWidth := width - lipgloss.Width(titleRendered) - lipgloss.Width(stats) - 2
	if availableWidth < 0 {
		availableWidth = 0
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleRendered,
		strings.Repeat(" ", availableWidth),
		stats,
	)

	return header + "\n" + lipgloss.NewStyle().Foreground(colorSubtle).Render(strings.Repeat("━", width))
}

// renderFooter renders the update time, key help and summary
func (m Model) renderFooter(width int) string {
	updated := "never"
	if !m.updated.IsZero() {
		updated = m.updated.Format("15:04:05")
	}
	if m.refreshing {
		updated = m.spinner.View() + " refreshing"
	}

	left := fmt.Sprintf(" Updated %s │ Refresh: r  Details: enter  Quit: q", updated)

	right := "No observers "
	if len(m.entries) > 0 {
		healthy := 0
		for _, e := range m.entries {
			if e.Status == monitor.StatusRunning || e.Status == monitor.StatusValue {
				healthy++
			}
		}
		right = fmt.Sprintf("%d/%d OK ", healthy, len(m.entries))
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return lipgloss.NewStyle().
		Foreground(colorMuted).
		BorderTop(true).
		BorderForeground(colorSubtle).
		Width(width).
		PaddingTop(1).
		Render(left + strings.Repeat(" ", gap) + right)
}

// renderGrid renders cards in rows of cols
func (m Model) renderGrid(items []indexed, cardWidth int, cols int) string {
	var rows []string
	for i := 0; i < len(items); i += cols {
		end := i + cols
		if end > len(items) {
			end = len(items)
		}

		var rowCards []string
		for _, item := range items[i:end] {
			rowCards = append(rowCards, m.renderCard(item, cardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rowCards...))
	}

	return strings.Join(rows, "\n")
}

// renderCard renders one observer
func (m Model) renderCard(item indexed, width int) string {
	e := item.entry
	var b strings.Builder

	name := e.Name
	maxNameLen := width - 6
	if maxNameLen > 1 && len([]rune(name)) > maxNameLen {
		name = string([]rune(name)[:maxNameLen-1]) + "…"
	}
	b.WriteString(fmt.Sprintf("%s %s", statusIcon(e.Status), nameStyle.Render(name)))
	b.WriteString("\n")

	b.WriteString(secondaryStyle.Render(describe(e)))
	b.WriteString("\n")

	b.WriteString(lipgloss.NewStyle().Foreground(statusColor(e.Status)).Render(sparkline(m.history[e.ID])))

	style := baseCardStyle.Width(width).BorderForeground(statusColor(e.Status))
	if item.index == m.selectedIndex {
		style = style.Border(lipgloss.DoubleBorder()).BorderForeground(colorAccent)
	}
	return style.Render(b.String())
}

// renderDetail renders the selected observer full screen
func (m Model) renderDetail(width int) string {
	e := m.entries[m.selectedIndex]

	var b strings.Builder
	b.WriteString(titleStyle.Render(e.Name))
	b.WriteString("\n")
	rows := [][2]string{
		{"ID", e.ID},
		{"Status", string(e.Status)},
		{"Current", describe(e)},
		{"Samples", fmt.Sprintf("%d", e.Samples)},
		{"Updated", m.updated.Format(time.RFC1123)},
	}
	for _, row := range rows {
		b.WriteString(metadataStyle.Render(fmt.Sprintf("%-8s ", row[0])))
		b.WriteString(row[1])
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(statusColor(e.Status)).Render(sparkline(m.history[e.ID])))
	b.WriteString("\n\n")
	b.WriteString(secondaryStyle.Render("esc / enter to close"))

	return lipgloss.Place(
		width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2).
			Render(b.String()),
	)
}

// describe returns the one-line summary of an entry
func describe(e monitor.Entry) string {
	switch e.Status {
	case monitor.StatusRunning:
		return fmt.Sprintf("active • %d ms", e.Value)
	case monitor.StatusValue:
		if e.Unit == "" {
			return fmt.Sprintf("%d", e.Value)
		}
		return fmt.Sprintf("%d %s", e.Value, e.Unit)
	case monitor.StatusBroken:
		return "broken"
	case monitor.StatusDown:
		return "failed"
	default:
		return "waiting..."
	}
}

// statusIcon returns the icon for a status
func statusIcon(status monitor.Status) string {
	switch status {
	case monitor.StatusRunning:
		return "✓"
	case monitor.StatusBroken:
		return "!"
	case monitor.StatusDown:
		return "✗"
	case monitor.StatusValue:
		return "◆"
	default:
		return "?"
	}
}

func statusColor(status monitor.Status) lipgloss.Color {
	switch status {
	case monitor.StatusRunning:
		return colorHealthy
	case monitor.StatusBroken:
		return colorBroken
	case monitor.StatusDown:
		return colorUnhealthy
	case monitor.StatusValue:
		return colorValue
	default:
		return colorSubtle
	}
}

// sparkline draws values scaled to their maximum; negative values mark
// samples without a reading
func sparkline(values []int32) string {
	var max int32
	for _, v := range values {
		if v > max {
			max = v
		}
	}

	var b strings.Builder
	for _, v := range values {
		switch {
		case v < 0:
			b.WriteRune('·')
		case max == 0:
			b.WriteRune(sparkRunes[0])
		default:
			b.WriteRune(sparkRunes[int(int64(v)*int64(len(sparkRunes)-1)/int64(max))])
		}
	}
	return b.String()
}
