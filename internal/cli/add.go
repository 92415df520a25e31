package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanglvm/workflow-hub/internal/catalog"
	"github.com/khanglvm/workflow-hub/internal/storage"
)

// NewAddCmd creates the 'add' command for storing workflows.
//
// Supports two modes:
// 1. Interactive: Paste a YAML workflow document, preview, confirm
// 2. Flags: Specify --description, --category, --tag directly
func NewAddCmd() *cobra.Command {
	var (
		description string
		category    string
		tags        []string
		public      bool
		owner       string
		noConfirm   bool
	)

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add workflow(s) - paste YAML or use flags",
		Long: `Add workflows to the shared store.

INTERACTIVE MODE:
  Paste a YAML document holding one workflow or a "workflows:" list.
  The workflows are validated and previewed before saving.

FLAG MODE:
  Give the workflow name as an argument and describe it with flags.`,
		Example: `  # Interactive mode - paste YAML when prompted
  workflow-hub add

  # Flag mode
  workflow-hub add "Slack Notification Bot" \
    --description "Sends alerts to Slack channels" \
    --category notification --tag slack --tag alerts --public --as alice`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := catalog.Options{CreatedBy: owner}
			if cmd.Flags().Changed("public") {
				opts.IsPublic = &public
			}

			if len(args) == 0 {
				return runAddInteractive(cmd, opts, noConfirm)
			}

			wf := storage.Workflow{
				Name:        args[0],
				Description: description,
				Category:    category,
				Tags:        tags,
				CreatedBy:   owner,
				IsPublic:    public,
			}
			return runAddWithFlags(cmd, wf)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "What the workflow does")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Workflow category (default General)")
	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "Tag (repeatable)")
	cmd.Flags().BoolVar(&public, "public", false, "Make the workflow visible to everyone")
	cmd.Flags().StringVar(&owner, "as", "", "Owner of the workflow")
	cmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")

	return cmd
}

// runAddInteractive reads a YAML document, previews it and saves on confirmation.
func runAddInteractive(cmd *cobra.Command, opts catalog.Options, noConfirm bool) error {
	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())

	fmt.Fprintln(out, "📋 Paste a workflow YAML document (press Enter on an empty line when done):")
	fmt.Fprintln(out)

	input := readMultilineInput(in)
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("no input provided")
	}

	workflows, err := catalog.Parse([]byte(input), opts)
	if err != nil {
		return fmt.Errorf("failed to parse workflows: %w", err)
	}

	fmt.Fprintf(out, "\n📦 Found %d workflow(s):\n\n", len(workflows))
	for _, wf := range workflows {
		fmt.Fprintf(out, "  %s\n", colorGreen(wf.Name))
		fmt.Fprintf(out, "    Category: %s\n", wf.Category)
		if len(wf.Tags) > 0 {
			fmt.Fprintf(out, "    Tags:     %s\n", strings.Join(wf.Tags, ", "))
		}
		fmt.Fprintf(out, "    Public:   %t\n\n", wf.IsPublic)
	}

	if !noConfirm {
		fmt.Fprint(out, "Add these workflows? [Y/n] ")
		response, _ := in.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))

		if response != "" && response != "y" && response != "yes" {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	saved, err := catalog.Import(cmd.Context(), rt.store, workflows)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n✓ Added %d workflow(s)\n", len(saved))
	return nil
}

// runAddWithFlags stores a single workflow described by flags.
func runAddWithFlags(cmd *cobra.Command, wf storage.Workflow) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	saved, err := rt.store.SaveWorkflow(cmd.Context(), wf)
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added workflow '%s' (id: %s)\n", saved.Name, saved.ID)
	return nil
}

// readMultilineInput reads lines until an empty line or EOF.
func readMultilineInput(r *bufio.Reader) string {
	var lines []string

	for {
		line, err := r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			if err != nil || len(lines) > 0 {
				break
			}
			continue
		}
		lines = append(lines, line)

		if err != nil {
			break
		}
	}

	return strings.Join(lines, "\n")
}

// colorGreen returns text with green ANSI color.
func colorGreen(s string) string {
	return "\033[32m" + s + "\033[0m"
}
