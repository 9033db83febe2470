package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/juststeveking/lookout/internal/config"
	"github.com/spf13/cobra"
)

var (
	forceRemove bool
)

var observerRemoveCmd = &cobra.Command{
	Use:   "observer:remove <id>",
	Short: "Remove an observer from configuration",
	Long: `Remove an observer by id from your lookout configuration. Its samples
stay in the history file until the next save.

Example:
  lookout observer:remove API
  lookout observer:remove CACHE --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if cfg.FindObserver(id) == nil {
			return fmt.Errorf("observer '%s' not found", id)
		}

		// Confirm removal unless --force is used
		if !forceRemove {
			confirmed := false
			err := huh.NewConfirm().
				Title(fmt.Sprintf("Remove observer '%s'?", id)).
				Value(&confirmed).
				Run()
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		if err := cfg.RemoveObserver(id); err != nil {
			return err
		}

		if err := config.SaveConfig(cfg.Path(), cfg); err != nil {
			return err
		}

		fmt.Printf("✓ Removed observer '%s' from %s\n", id, cfg.Path())

		return nil
	},
}

func init() {
	observerRemoveCmd.Flags().BoolVarP(&forceRemove, "force", "f", false, "skip confirmation prompt")
	rootCmd.AddCommand(observerRemoveCmd)
}
