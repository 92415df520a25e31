package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanglvm/workflow-hub/internal/benchmark"
	"github.com/khanglvm/workflow-hub/internal/storage"
)

// NewBenchmarkCmd creates the 'benchmark' command for search latency testing.
func NewBenchmarkCmd() *cobra.Command {
	var (
		jsonOutput bool
		useStore   bool
		opts       benchmark.Options
	)

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Measure search latency and throughput",
		Long: `Run a fixed query mix through the search service and report latency
percentiles and throughput.

By default the benchmark searches a synthetic in-memory corpus, which
isolates the ranking cost. With --store it searches the configured
database, which includes candidate fetching.`,
		Example: `  # Synthetic corpus
  workflow-hub benchmark

  # Larger corpus, more parallelism
  workflow-hub benchmark --workflows 10000 --concurrency 32

  # Against the configured store, as JSON
  workflow-hub benchmark --store --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, opts, useStore, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().BoolVar(&useStore, "store", false, "Search the configured store instead of a synthetic corpus")
	cmd.Flags().IntVarP(&opts.Workflows, "workflows", "w", benchmark.DefaultWorkflows, "Synthetic corpus size")
	cmd.Flags().IntVarP(&opts.Searches, "searches", "n", benchmark.DefaultSearches, "Total searches to run")
	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "c", benchmark.DefaultConcurrency, "Searches in flight at once")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "Synthetic corpus seed")
	cmd.Flags().StringVar(&opts.RequesterID, "as", "", "Search as this user")

	return cmd
}

// runBenchmark executes the benchmark and prints the result.
func runBenchmark(cmd *cobra.Command, opts benchmark.Options, useStore, jsonOutput bool) error {
	var (
		result *benchmark.Result
		err    error
	)

	if useStore {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		workflows, err := rt.store.FetchCandidates(cmd.Context(), storage.CandidateQuery{RequesterID: opts.RequesterID})
		if err != nil {
			return fmt.Errorf("failed to count workflows: %w", err)
		}
		if len(workflows) == 0 {
			return fmt.Errorf("no workflows visible. Run 'workflow-hub import <file>' first")
		}

		result, err = benchmark.RunWith(cmd.Context(), rt.store, len(workflows), opts)
		if err != nil {
			return err
		}
	} else {
		result, err = benchmark.Run(cmd.Context(), opts)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, benchmark.FormatResult(result))
	fmt.Fprintln(out)
	return nil
}
