package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanglvm/workflow-hub/internal/catalog"
	"github.com/khanglvm/workflow-hub/internal/storage"
)

// NewImportCmd creates the 'import' command for loading YAML catalogs.
func NewImportCmd() *cobra.Command {
	var (
		owner  string
		public bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import workflows from a YAML catalog",
		Long: `Import workflows from a YAML file holding a "workflows:" list or a single
workflow. Use "-" to read from stdin.

Every workflow is validated before anything is saved. Workflows that carry
an id replace the stored workflow with the same id.`,
		Example: `  workflow-hub import catalog.yaml
  cat catalog.yaml | workflow-hub import - --as alice --public`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := catalog.Options{CreatedBy: owner}
			if cmd.Flags().Changed("public") {
				opts.IsPublic = &public
			}
			return runImport(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&owner, "as", "", "Override the owner of every workflow")
	cmd.Flags().BoolVar(&public, "public", false, "Override the visibility of every workflow")

	return cmd
}

func runImport(cmd *cobra.Command, path string, opts catalog.Options) error {
	var (
		workflows []storage.Workflow
		err       error
	)
	if path == "-" {
		workflows, err = catalog.LoadReader(cmd.InOrStdin(), opts)
	} else {
		workflows, err = catalog.Load(path, opts)
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	saved, err := catalog.Import(cmd.Context(), rt.store, workflows)
	out := cmd.OutOrStdout()
	for _, wf := range saved {
		fmt.Fprintf(out, "  ✓ %s (%s)\n", wf.Name, wf.ID)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Imported %d workflow(s)\n", len(saved))
	return nil
}
