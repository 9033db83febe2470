package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/juststeveking/lookout/internal/config"
	"github.com/juststeveking/lookout/internal/monitor"
	"github.com/spf13/cobra"
)

var (
	observerID   string
	observerName string
	observerType string
	observerHost string
	observerPort int
	observerPath string
)

var observerAddCmd = &cobra.Command{
	Use:   "observer:add",
	Short: "Add a new observer to the configuration",
	Long: `Add a new observer to your lookout configuration.

Examples:
  lookout observer:add --id API --name "Public API" --type web --host api.internal --port 80
  lookout observer:add --id CACHE --type redis --host 127.0.0.1 --port 6379
  lookout observer:add --id MAILER --type badness --path /var/run/mailer.badness
  lookout observer:add --id LOAD --type loadavg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := config.ObserverSpec{
			ID:   strings.ToUpper(observerID),
			Name: observerName,
			Type: strings.ToLower(observerType),
			Host: observerHost,
			Port: observerPort,
			Path: observerPath,
		}

		// Reject types the factory does not know before touching the file
		if _, err := monitor.NewObserver(spec, monitor.Deps{}); err != nil {
			if errors.Is(err, monitor.ErrUnknownType) {
				return fmt.Errorf("%w (use web, router, redis, service, badness or loadavg)", err)
			}
			return err
		}

		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := cfg.AddObserver(spec); err != nil {
			return err
		}

		if err := config.SaveConfig(cfg.Path(), cfg); err != nil {
			return err
		}

		fmt.Printf("✓ Added observer '%s' to %s\n", spec.ID, cfg.Path())

		return nil
	},
}

func init() {
	observerAddCmd.Flags().StringVar(&observerID, "id", "", "observer id, used in settings keys (required)")
	observerAddCmd.Flags().StringVarP(&observerName, "name", "n", "", "display name (defaults to the id)")
	observerAddCmd.Flags().StringVarP(&observerType, "type", "t", "", "observer type: web, router, redis, service, badness, loadavg (required)")
	observerAddCmd.Flags().StringVar(&observerHost, "host", "", "target host for network observers")
	observerAddCmd.Flags().IntVarP(&observerPort, "port", "p", 0, "target port for network observers")
	observerAddCmd.Flags().StringVar(&observerPath, "path", "", "badness file, or load average file for loadavg")

	observerAddCmd.MarkFlagRequired("id")
	observerAddCmd.MarkFlagRequired("type")

	rootCmd.AddCommand(observerAddCmd)
}
