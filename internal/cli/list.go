package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/khanglvm/workflow-hub/internal/storage"
)

// NewListCmd creates the 'list' command for listing stored workflows.
func NewListCmd() *cobra.Command {
	var (
		jsonOutput bool
		limit      int
		offset     int
		owner      string
		publicOnly bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored workflows",
		Long:    `Display stored workflows, newest first.`,
		Example: `  workflow-hub list
  workflow-hub ls --limit 50
  workflow-hub list --owner alice
  workflow-hub list --public --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := storage.ListOptions{
				Limit:      limit,
				Offset:     offset,
				CreatedBy:  owner,
				OnlyPublic: publicOnly,
			}
			return runList(cmd, opts, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum workflows to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of workflows to skip")
	cmd.Flags().StringVar(&owner, "owner", "", "Only workflows created by this user")
	cmd.Flags().BoolVar(&publicOnly, "public", false, "Only public workflows")

	return cmd
}

// runList displays stored workflows.
func runList(cmd *cobra.Command, opts storage.ListOptions, jsonOutput bool) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	workflows, err := rt.store.ListWorkflows(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("failed to list workflows: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		if workflows == nil {
			workflows = []storage.Workflow{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(workflows)
	}

	if len(workflows) == 0 {
		fmt.Fprintln(out, "No workflows stored.")
		fmt.Fprintln(out, "Run 'workflow-hub add' or 'workflow-hub import <file>' to add some.")
		return nil
	}

	fmt.Fprintf(out, "Workflows (%d):\n\n", len(workflows))

	tbl := table.New("ID", "Name", "Category", "Tags", "Owner", "Public", "Created").WithWriter(out)
	for _, wf := range workflows {
		tbl.AddRow(wf.ID, wf.Name, wf.Category, strings.Join(wf.Tags, ","), wf.CreatedBy, wf.IsPublic, wf.CreatedAt.Format("2006-01-02"))
	}
	tbl.Print()

	return nil
}
