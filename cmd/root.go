package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/juststeveking/lookout/internal/archive"
	"github.com/juststeveking/lookout/internal/config"
	"github.com/juststeveking/lookout/internal/logging"
	"github.com/juststeveking/lookout/internal/monitor"
	"github.com/juststeveking/lookout/internal/notify"
	"github.com/juststeveking/lookout/internal/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "lookout",
	Short: "Keep an eye on the services your host depends on",
	Long: `Lookout periodically probes the services and system metrics your host
depends on, keeps a bounded history of every reading and serves a status
page with live status blocks and history charts.

Configure your observers in a single config file, then launch lookout to
start polling and serving the status page.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}

		log, err := logging.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logging.Flush(log)

		// Setup context with cancellation on OS signals
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		notifier := notify.NewNotifier(cfg.Notify)
		reg, err := newRegistry(cfg, log, monitor.WithTransitionHook(func(o monitor.Observer, from, to monitor.Result) {
			notifier.NotifyStatusChange(notify.Transition{
				Name:  o.Name(),
				From:  notify.Status(from.Status),
				To:    notify.Status(to.Status),
				Value: to.Value,
			})
		}))
		if err != nil {
			return err
		}

		poller := newPoller(cfg, reg, log)

		if path := cfg.ArchivePath(); path != "" {
			arc, err := archive.Open(path, log.Named("archive"))
			if err != nil {
				return fmt.Errorf("failed to open archive: %w", err)
			}
			defer arc.Close()

			poller.WithAfterUpdate(func(ctx context.Context, snap monitor.Snapshot) {
				if err := arc.Record(context.WithoutCancel(ctx), snap); err != nil {
					log.Warn("failed to archive results", zap.Error(err))
				}
			})
		}

		// Start polling in background
		go poller.Run(ctx)

		server := web.NewServer(cfg.Listen, web.NewRouter(reg, log.Named("web")))
		serveErr := web.Serve(ctx, server, log.Named("web"))

		cancel()
		<-poller.Done()

		if serveErr != nil {
			return fmt.Errorf("status page stopped: %w", serveErr)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ~/.config/lookout/config.yml)")
}

// loadConfig reads and validates the config file. With autoInit, a missing
// default config is created first.
func loadConfig(autoInit bool) (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		if autoInit && configFile == "" && errors.Is(err, os.ErrNotExist) {
			fmt.Println("Config not found, creating default config...")
			if initErr := config.InitConfig(false); initErr != nil {
				return nil, fmt.Errorf("failed to create default config: %w", initErr)
			}
			// Try loading again
			cfg, err = config.LoadConfig(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config after creation: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to load config: %w (run 'lookout init' to create one)", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrNoObservers) {
			return nil, fmt.Errorf("%w (run 'lookout observer:add' to add one)", err)
		}
		return nil, err
	}

	return cfg, nil
}

// newRegistry builds the registry for cfg and restores its history file
func newRegistry(cfg *config.Config, log *zap.Logger, opts ...monitor.Option) (*monitor.Registry, error) {
	_, _, timeout := cfg.Durations()

	reg := monitor.NewRegistry(cfg.RegistryPrefix(), log.Named("registry"), opts...)
	if err := monitor.Configure(reg, cfg, monitor.Deps{Timeout: timeout}); err != nil {
		return nil, fmt.Errorf("failed to configure observers: %w", err)
	}

	if path := cfg.HistoryPath(); path != "" {
		err := monitor.LoadHistory(reg, path)
		switch {
		case err == nil:
			log.Info("history restored", zap.String("path", path))
		case errors.Is(err, os.ErrNotExist):
			log.Debug("no history file yet", zap.String("path", path))
		default:
			log.Warn("failed to restore history", zap.String("path", path), zap.Error(err))
		}
	}

	return reg, nil
}

// newPoller creates the poll loop for reg, saving history when configured
func newPoller(cfg *config.Config, reg *monitor.Registry, log *zap.Logger) *monitor.Poller {
	check, save, _ := cfg.Durations()

	poller := monitor.NewPoller(reg, check, log.Named("poller"))
	if path := cfg.HistoryPath(); path != "" {
		poller.WithSave(save, func() error {
			return monitor.SaveHistory(reg, path)
		})
	}
	return poller
}
