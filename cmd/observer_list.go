package cmd

import (
	"fmt"

	"github.com/juststeveking/lookout/internal/config"
	"github.com/spf13/cobra"
)

var observerListCmd = &cobra.Command{
	Use:   "observer:list",
	Short: "List all configured observers",
	Long:  `Display all observers currently configured in lookout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if len(cfg.Observers) == 0 {
			fmt.Println("No observers configured yet.")
			fmt.Println("\nAdd an observer with:")
			fmt.Println("  lookout observer:add --id <ID> --type <type>")
			return nil
		}

		fmt.Printf("Configured observers (%d):\n\n", len(cfg.Observers))

		for _, o := range cfg.Observers {
			fmt.Printf("  • %s (%s)\n", o.ID, o.Type)
			if o.Name != "" {
				fmt.Printf("    Name: %s\n", o.Name)
			}
			if target := describeTarget(o); target != "" {
				fmt.Printf("    Target: %s\n", target)
			}
			fmt.Println()
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(observerListCmd)
}

// describeTarget returns what an observer points at
func describeTarget(o config.ObserverSpec) string {
	switch {
	case o.Host != "" || o.Port != 0:
		return fmt.Sprintf("%s:%d", o.Host, o.Port)
	case o.Path != "":
		return o.Path
	default:
		return ""
	}
}
