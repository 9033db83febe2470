package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/juststeveking/lookout/internal/logging"
	"github.com/juststeveking/lookout/internal/monitor"
	"github.com/juststeveking/lookout/internal/tui"
	"github.com/spf13/cobra"
)

var (
	watchLogFile string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll locally and show a live terminal dashboard",
	Long: `Run the poll loop in this terminal and show every observer in a live
dashboard. History is restored and saved like the status page server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}

		// The dashboard owns the terminal; logs go to a file or nowhere
		var logOut io.Writer = io.Discard
		if watchLogFile != "" {
			f, err := os.OpenFile(watchLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer f.Close()
			logOut = f
		}

		log, err := logging.NewWithWriter(cfg.LogLevel, logOut)
		if err != nil {
			return err
		}
		defer logging.Flush(log)

		reg, err := newRegistry(cfg, log)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		updates := make(chan monitor.Snapshot, 1)
		poller := newPoller(cfg, reg, log).WithAfterUpdate(func(ctx context.Context, snap monitor.Snapshot) {
			// Drop a stale pending snapshot in favour of the newest
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- snap:
			default:
			}
		})

		// Start polling in background
		go poller.Run(ctx)

		model := tui.NewModel(reg, updates, cancel)
		p := tea.NewProgram(model, tea.WithAltScreen())

		_, runErr := p.Run()

		cancel()
		<-poller.Done()

		if runErr != nil {
			return fmt.Errorf("failed to start TUI: %w", runErr)
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "append logs to this file while the dashboard runs")
	rootCmd.AddCommand(watchCmd)
}
