package cmd

import (
	"fmt"
	"time"

	"github.com/juststeveking/lookout/internal/archive"
	"github.com/juststeveking/lookout/internal/logging"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Summarise the stored history",
	Long: `Print how many samples the history file holds per observer and the
time range they cover. When an archive database is configured, its row
counts are printed as well.`,
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

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "History file: %s\n\n", cfg.HistoryPath())

		for _, o := range reg.Observers() {
			items := reg.History(o.ID())
			if len(items) == 0 {
				fmt.Fprintf(out, "  • %-12s %s: no samples\n", o.ID(), o.Name())
				continue
			}

			valid := 0
			for _, it := range items {
				if it.Valid {
					valid++
				}
			}

			fmt.Fprintf(out, "  • %-12s %s: %d samples (%d with readings), %s to %s\n",
				o.ID(), o.Name(), len(items), valid,
				items[0].Time.Local().Format(time.DateTime),
				items[len(items)-1].Time.Local().Format(time.DateTime),
			)
		}

		path := cfg.ArchivePath()
		if path == "" {
			return nil
		}

		arc, err := archive.Open(path, log.Named("archive"))
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer arc.Close()

		counts, err := arc.Counts(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\nArchive: %s\n\n", path)
		if len(counts) == 0 {
			fmt.Fprintln(out, "  No archived results yet.")
			return nil
		}
		for _, c := range counts {
			fmt.Fprintf(out, "  • %-12s %d results, %s to %s\n",
				c.ObserverID, c.Samples,
				c.First.Local().Format(time.DateTime),
				c.Last.Local().Format(time.DateTime),
			)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
