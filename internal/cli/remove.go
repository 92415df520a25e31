package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanglvm/workflow-hub/internal/storage"
)

// NewRemoveCmd creates the 'remove' command for deleting workflows.
func NewRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a workflow",
		Long:    `Delete a workflow from the store by its ID.`,
		Example: `  workflow-hub remove 3f2b6c1e-8d7a-4c55-9f0e-2a1b3c4d5e6f
  workflow-hub rm 3f2b6c1e-8d7a-4c55-9f0e-2a1b3c4d5e6f`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd, args[0])
		},
	}

	return cmd
}

// runRemove deletes a workflow by ID.
func runRemove(cmd *cobra.Command, id string) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.store.DeleteWorkflow(cmd.Context(), id); err != nil {
		if errors.Is(err, storage.ErrWorkflowNotFound) {
			return fmt.Errorf("workflow '%s' not found", id)
		}
		return fmt.Errorf("failed to remove workflow: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed workflow '%s'\n", id)
	return nil
}
