package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/khanglvm/workflow-hub/internal/analytics"
	"github.com/khanglvm/workflow-hub/internal/metrics"
	"github.com/khanglvm/workflow-hub/internal/search"
)

// NewSearchCmd creates the 'search' command.
func NewSearchCmd() *cobra.Command {
	var (
		category   string
		tags       []string
		public     bool
		owner      string
		limit      int
		requester  string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search workflows by relevance",
		Long: `Rank the workflows visible to you against a natural-language query.

Private workflows are only visible to their creator; pass --as to search
as a specific user.`,
		Example: `  workflow-hub search "slack alerts"
  workflow-hub search "process csv" --category data-processing --limit 5
  workflow-hub search notification --as alice --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := search.Request{
				Query:       strings.Join(args, " "),
				RequesterID: requester,
			}
			if cmd.Flags().Changed("limit") {
				req.Limit = search.IntPtr(limit)
			}

			filters := search.Filters{Category: category, Tags: tags, CreatedBy: owner}
			if cmd.Flags().Changed("public") {
				filters.IsPublic = search.BoolPtr(public)
			}
			if filters.Category != "" || len(filters.Tags) > 0 || filters.IsPublic != nil || filters.CreatedBy != "" {
				req.Filters = &filters
			}

			return runSearch(cmd, req, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only workflows in this category")
	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "Only workflows with this tag (repeatable)")
	cmd.Flags().BoolVar(&public, "public", false, "Only public (true) or private (false) workflows")
	cmd.Flags().StringVar(&owner, "owner", "", "Only workflows created by this user")
	cmd.Flags().IntVarP(&limit, "limit", "n", search.DefaultLimit, "Maximum results")
	cmd.Flags().StringVar(&requester, "as", "", "Search as this user")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runSearch(cmd *cobra.Command, req search.Request, jsonOutput bool) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	svc, err := rt.searchService()
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := svc.Search(cmd.Context(), req)
	if err != nil {
		return err
	}
	metrics.RecordSearch("cli", metrics.StatusOK, time.Since(start).Seconds(), resp.TotalCount)

	tracker := newTracker(rt)
	tracker.Track(analytics.NewSearchEvent(req.Query, resp.QueryAnalysis.Intent, resp.TotalCount))
	tracker.Stop()

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	printSearch(out, req.Query, resp)
	return nil
}

// printSearch renders a response as a table followed by match reasons.
func printSearch(w io.Writer, query string, resp *search.Response) {
	a := resp.QueryAnalysis
	fmt.Fprintf(w, "Query: %q (intent: %s", query, a.Intent)
	if len(a.Keywords) > 0 {
		fmt.Fprintf(w, ", keywords: %s", strings.Join(a.Keywords, ", "))
	}
	fmt.Fprintln(w, ")")

	if resp.TotalCount == 0 {
		fmt.Fprintln(w, "No matching workflows.")
		if len(a.CategorySuggestions) > 0 {
			fmt.Fprintf(w, "Try browsing: %s\n", strings.Join(a.CategorySuggestions, ", "))
		}
		return
	}
	fmt.Fprintln(w)

	tbl := table.New("#", "Score", "ID", "Name", "Category", "Tags").WithWriter(w)
	for i, r := range resp.Results {
		tbl.AddRow(i+1, fmt.Sprintf("%.0f", r.RelevanceScore), r.WorkflowID, r.Name, r.Category, strings.Join(r.Tags, ","))
	}
	tbl.Print()

	fmt.Fprintln(w)
	for i, r := range resp.Results {
		fmt.Fprintf(w, "  %d. %s\n", i+1, r.MatchReason)
	}

	if len(a.CategorySuggestions) > 0 {
		fmt.Fprintf(w, "\nRelated categories: %s\n", strings.Join(a.CategorySuggestions, ", "))
	}
}
