package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/juststeveking/lookout/internal/config"
	"github.com/spf13/cobra"
)

var (
	forceInit bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize lookout configuration",
	Long: `Create a new lookout configuration file at ~/.config/lookout/config.yml
with sensible defaults. Edit this file to add your observers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		overwrite := forceInit
		if config.Exists() && !forceInit {
			err := huh.NewConfirm().
				Title(fmt.Sprintf("Overwrite the existing config at %s?", configPath)).
				Affirmative("Overwrite").
				Negative("Keep").
				Value(&overwrite).
				Run()
			if err != nil {
				return err
			}
			if !overwrite {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		if err := config.InitConfig(overwrite); err != nil {
			return err
		}

		if overwrite {
			fmt.Printf("✓ Configuration reset at %s\n", configPath)
		} else {
			fmt.Printf("✓ Configuration initialized at %s\n", configPath)
		}

		fmt.Println("\nEdit the config file to add your observers, then run:")
		fmt.Println("  lookout")

		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite existing configuration without asking")
	rootCmd.AddCommand(initCmd)
}
