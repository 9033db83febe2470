package cmd

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/juststeveking/lookout/internal/monitor"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var (
	statusRemote  string
	statusTimeout time.Duration
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status reported by a running lookout",
	Long: `Fetch /status.json from a running lookout instance and print the
current status of every observer.

Example:
  lookout status --remote http://monitor.internal:8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: statusTimeout}

		url := strings.TrimRight(statusRemote, "/") + "/status.json"
		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", monitor.UserAgent)

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to reach %s: %w", statusRemote, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, url)
		}

		snap, err := parseStatus(body)
		if err != nil {
			return err
		}

		printSnapshot(cmd.OutOrStdout(), snap)
		if !snap.Updated.IsZero() {
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", snap.Updated.Local().Format(time.RFC1123))
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVarP(&statusRemote, "remote", "r", "http://127.0.0.1:8080", "base URL of the lookout instance")
	statusCmd.Flags().DurationVar(&statusTimeout, "timeout", 10*time.Second, "request timeout")
	rootCmd.AddCommand(statusCmd)
}

// parseStatus reads the snapshot out of a /status.json response
func parseStatus(body []byte) (monitor.Snapshot, error) {
	var snap monitor.Snapshot

	if !gjson.ValidBytes(body) {
		return snap, fmt.Errorf("invalid status response")
	}

	res := gjson.ParseBytes(body)
	if !res.Get("status").Bool() {
		return snap, fmt.Errorf("remote reported an error: %s", res.Get("error").String())
	}

	if updated := res.Get("value.updated"); updated.Exists() {
		if t, err := time.Parse(time.RFC3339Nano, updated.String()); err == nil && t.Year() > 1 {
			snap.Updated = t
		}
	}

	res.Get("value.observers").ForEach(func(_, o gjson.Result) bool {
		snap.Observers = append(snap.Observers, monitor.Entry{
			ID:      o.Get("id").String(),
			Name:    o.Get("name").String(),
			Unit:    o.Get("unit").String(),
			Status:  monitor.Status(o.Get("status").String()),
			Value:   int32(o.Get("value").Int()),
			Samples: int(o.Get("samples").Int()),
		})
		return true
	})

	return snap, nil
}
