package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/juststeveking/lookout/internal/logging"
	"github.com/juststeveking/lookout/internal/monitor"
	"github.com/spf13/cobra"
)

var (
	checkStyles = map[monitor.Status]lipgloss.Style{
		monitor.StatusRunning: lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF94")).Bold(true),
		monitor.StatusBroken:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF9E3B")).Bold(true),
		monitor.StatusDown:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0055")).Bold(true),
		monitor.StatusValue:   lipgloss.NewStyle().Foreground(lipgloss.Color("#7AA2F7")).Bold(true),
		monitor.StatusUnknown: lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89")),
	}

	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04D9FF")).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run every observer once and print the results",
	Long: `Run a single poll cycle against every configured observer and print a
table of the results. Exits non-zero when any observer is broken or down.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}

		log, err := logging.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logging.Flush(log)

		reg, err := newRegistry(cfg, log)
		if err != nil {
			return err
		}

		reg.Update(cmd.Context())
		snap := reg.Snapshot()

		printSnapshot(cmd.OutOrStdout(), snap)

		if n := failing(snap); n > 0 {
			return fmt.Errorf("%d of %d observers failing", n, len(snap.Observers))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// printSnapshot renders snap as a table
func printSnapshot(w io.Writer, snap monitor.Snapshot) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))).
		Headers("ID", "NAME", "STATUS", "VALUE", "SAMPLES").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})

	for _, e := range snap.Observers {
		t.Row(e.ID, e.Name, checkStyles[e.Status].Render(string(e.Status)), formatValue(e), fmt.Sprintf("%d", e.Samples))
	}

	fmt.Fprintln(w, t.Render())
}

// formatValue shows latency for running observers and the reading for
// value observers
func formatValue(e monitor.Entry) string {
	switch e.Status {
	case monitor.StatusRunning:
		return fmt.Sprintf("%d ms", e.Value)
	case monitor.StatusValue:
		if e.Unit == "" {
			return fmt.Sprintf("%d", e.Value)
		}
		return fmt.Sprintf("%d %s", e.Value, e.Unit)
	default:
		return "-"
	}
}

// failing counts observers that are broken or down
func failing(snap monitor.Snapshot) int {
	n := 0
	for _, e := range snap.Observers {
		if e.Status == monitor.StatusBroken || e.Status == monitor.StatusDown {
			n++
		}
	}
	return n
}
