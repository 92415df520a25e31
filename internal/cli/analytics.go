package cli

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/khanglvm/workflow-hub/internal/storage"
)

// statsReader is implemented by stores that can aggregate search history.
type statsReader interface {
	GetSearchStats(since time.Time) (storage.SearchStats, error)
}

// NewAnalyticsCmd creates the analytics command group.
func NewAnalyticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Inspect and prune search history",
		Long: `Searches are recorded with a SHA256 hash of the query (never the raw
text), the classified intent and the number of results.

Commands:
  stats    Show search counts by intent
  cleanup  Delete history older than the retention period`,
	}

	cmd.AddCommand(newAnalyticsStatsCmd())
	cmd.AddCommand(newAnalyticsCleanupCmd())

	return cmd
}

func newAnalyticsStatsCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show search statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			reader, ok := rt.store.(statsReader)
			if !ok {
				return fmt.Errorf("storage driver %q does not support search statistics", rt.cfg.Storage.Driver)
			}

			stats, err := reader.GetSearchStats(time.Now().AddDate(0, 0, -days))
			if err != nil {
				return fmt.Errorf("failed to read search history: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Searches in the last %d days: %d\n", days, stats.Total)
			if stats.Total == 0 {
				return nil
			}
			fmt.Fprintf(out, "Zero-result searches: %d (%.1f%%)\n\n", stats.ZeroResults,
				float64(stats.ZeroResults)/float64(stats.Total)*100)

			tbl := table.New("Intent", "Searches").WithWriter(out)
			for _, intent := range slices.Sorted(maps.Keys(stats.ByIntent)) {
				tbl.AddRow(intent, stats.ByIntent[intent])
			}
			tbl.Print()
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 7, "Window in days")
	return cmd
}

func newAnalyticsCleanupCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete old search history",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if !cmd.Flags().Changed("days") {
				days = rt.cfg.Analytics.RetentionDays
			}
			if days <= 0 {
				return fmt.Errorf("retention must be at least 1 day")
			}

			if err := rt.store.Cleanup(time.Duration(days) * 24 * time.Hour); err != nil {
				return fmt.Errorf("cleanup failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Search history older than %d days removed\n", days)
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 0, "Retention in days (default from config)")
	return cmd
}
