package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanglvm/workflow-hub/internal/config"
	"github.com/khanglvm/workflow-hub/internal/storage"
)

// NewVerifyCmd creates the 'verify' command for verifying configuration.
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify configuration and storage",
		Long: `Verify that the configuration is valid and that the configured
workflow store can be opened and queried.`,
		Example: `  workflow-hub verify
  workflow-hub verify --config ./workflow-hub.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd)
		},
	}

	return cmd
}

// runVerify validates the configuration and probes the store.
func runVerify(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	fmt.Fprintf(out, "✓ Config file: %s\n", path)
	fmt.Fprintf(out, "✓ Storage driver: %s\n", cfg.Storage.Driver)
	fmt.Fprintf(out, "✓ Search limits: default %d, max %d\n", cfg.Search.DefaultLimit, cfg.Search.MaxLimit)

	rt, err := setup(cmd)
	if err != nil {
		fmt.Fprintf(out, "✗ Storage: %v\n", err)
		return err
	}
	defer rt.Close()

	if cfg.Storage.Driver == config.DriverSQLite {
		if s, ok := rt.store.(*storage.SQLiteStorage); ok {
			fmt.Fprintf(out, "✓ Database: %s\n", s.Path())
		}
	}

	workflows, err := rt.store.ListWorkflows(cmd.Context(), storage.ListOptions{Limit: 1})
	if err != nil {
		fmt.Fprintf(out, "✗ Storage query failed: %v\n", err)
		return err
	}
	if len(workflows) == 0 {
		fmt.Fprintln(out, "✓ Storage reachable (no workflows yet)")
	} else {
		fmt.Fprintf(out, "✓ Storage reachable (latest: %s)\n", workflows[0].Name)
	}

	return nil
}
