package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/juststeveking/lookout/internal/config"
	"github.com/spf13/cobra"
)

var observerShowCmd = &cobra.Command{
	Use:   "observer:show <id>",
	Short: "Show details of a specific observer",
	Long: `Display the configuration of a specific observer, including the
settings that apply to it.

Example:
  lookout observer:show REDIS`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		found := cfg.FindObserver(args[0])
		if found == nil {
			return fmt.Errorf("observer '%s' not found", args[0])
		}

		fmt.Printf("Observer: %s\n", found.ID)
		fmt.Println("─────────────────────────────────────")
		fmt.Printf("Type:             %s\n", found.Type)

		if found.Name != "" {
			fmt.Printf("Name:             %s\n", found.Name)
		}
		if found.Host != "" {
			fmt.Printf("Host:             %s\n", found.Host)
		}
		if found.Port > 0 {
			fmt.Printf("Port:             %d\n", found.Port)
		}
		if found.Path != "" {
			fmt.Printf("Path:             %s\n", found.Path)
		}

		// Settings override the fields above at startup
		var keys []string
		for _, s := range cfg.Stream() {
			if strings.EqualFold(s.Key, found.ID) || strings.HasPrefix(s.Key, strings.ToUpper(found.ID)+".") {
				keys = append(keys, fmt.Sprintf("  %s = %s", s.Key, s.Value))
			}
		}
		if len(keys) > 0 {
			sort.Strings(keys)
			fmt.Println("\nSettings:")
			fmt.Println(strings.Join(keys, "\n"))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(observerShowCmd)
}
