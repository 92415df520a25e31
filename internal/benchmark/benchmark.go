/*
Package benchmark measures search latency and throughput for workflow-hub.

It runs a fixed query mix against a search service, either over a synthetic
in-memory corpus or over a configured store, and reports latency
percentiles. Latencies include candidate fetching, so runs against a real
database show the full cost of a search.
*/
package benchmark

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/khanglvm/workflow-hub/internal/search"
	"github.com/khanglvm/workflow-hub/internal/storage"
)

// Defaults for Options zero values.
const (
	DefaultWorkflows   = 1000
	DefaultSearches    = 500
	DefaultConcurrency = 8
)

// DefaultQueries is the query mix used when Options.Queries is empty.
var DefaultQueries = []string{
	"slack alerts",
	"send notification to team",
	"process csv data",
	"transform analytics report",
	"sync api webhook",
	"email digest",
	"create automation for deploys",
	"find backup workflow",
	"integration",
	"nonexistent zebra query",
}

// Options controls a benchmark run.
type Options struct {
	// Workflows is the synthetic corpus size. Ignored by RunWith.
	Workflows int

	// Searches is the total number of searches to run.
	Searches int

	// Concurrency is the number of searches in flight at once.
	Concurrency int

	// Seed makes the synthetic corpus reproducible.
	Seed uint64

	// Queries overrides DefaultQueries.
	Queries []string

	// RequesterID is passed on every search.
	RequesterID string
}

func (o Options) withDefaults() Options {
	if o.Workflows <= 0 {
		o.Workflows = DefaultWorkflows
	}
	if o.Searches <= 0 {
		o.Searches = DefaultSearches
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if len(o.Queries) == 0 {
		o.Queries = DefaultQueries
	}
	return o
}

// Result summarizes a benchmark run.
type Result struct {
	Workflows   int           `json:"workflows"`
	Searches    int           `json:"searches"`
	Concurrency int           `json:"concurrency"`
	Elapsed     time.Duration `json:"elapsedNs"`
	P50         time.Duration `json:"p50Ns"`
	P95         time.Duration `json:"p95Ns"`
	P99         time.Duration `json:"p99Ns"`
	Max         time.Duration `json:"maxNs"`
	Throughput  float64       `json:"searchesPerSecond"`
	AvgResults  float64       `json:"avgResults"`
}

// Run benchmarks search over a synthetic corpus of opts.Workflows records.
func Run(ctx context.Context, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	source := NewMemorySource(GenerateCorpus(opts.Workflows, opts.Seed))
	return RunWith(ctx, source, len(source.workflows), opts)
}

// RunWith benchmarks search over source. corpusSize is reported as-is.
func RunWith(ctx context.Context, source search.CandidateSource, corpusSize int, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	svc, err := search.NewService(source, search.Config{}, nil)
	if err != nil {
		return nil, err
	}

	latencies := make([]time.Duration, opts.Searches)
	var (
		mu           sync.Mutex
		totalResults int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	start := time.Now()
	for i := 0; i < opts.Searches; i++ {
		g.Go(func() error {
			req := search.Request{
				Query:       opts.Queries[i%len(opts.Queries)],
				RequesterID: opts.RequesterID,
			}

			t := time.Now()
			resp, err := svc.Search(gCtx, req)
			latencies[i] = time.Since(t)
			if err != nil {
				return fmt.Errorf("search %q: %w", req.Query, err)
			}

			mu.Lock()
			totalResults += resp.TotalCount
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	slices.Sort(latencies)

	return &Result{
		Workflows:   corpusSize,
		Searches:    opts.Searches,
		Concurrency: opts.Concurrency,
		Elapsed:     elapsed,
		P50:         percentile(latencies, 50),
		P95:         percentile(latencies, 95),
		P99:         percentile(latencies, 99),
		Max:         latencies[len(latencies)-1],
		Throughput:  float64(opts.Searches) / elapsed.Seconds(),
		AvgResults:  float64(totalResults) / float64(opts.Searches),
	}, nil
}

// percentile returns the nearest-rank percentile of sorted latencies.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(p/100*float64(len(sorted))+0.5) - 1
	rank = max(0, min(rank, len(sorted)-1))
	return sorted[rank]
}

// MemorySource serves a fixed corpus. It applies only the visibility part
// of a candidate query, leaving the other filters to the search service.
type MemorySource struct {
	workflows []storage.Workflow
}

// NewMemorySource wraps workflows as a search.CandidateSource.
func NewMemorySource(workflows []storage.Workflow) *MemorySource {
	return &MemorySource{workflows: workflows}
}

// FetchCandidates returns the workflows visible to q.RequesterID.
func (m *MemorySource) FetchCandidates(ctx context.Context, q storage.CandidateQuery) ([]storage.Workflow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]storage.Workflow, 0, len(m.workflows))
	for _, wf := range m.workflows {
		if wf.IsPublic || (q.RequesterID != "" && wf.CreatedBy == q.RequesterID) {
			out = append(out, wf)
		}
	}
	return out, nil
}

// corpusTemplate seeds one family of synthetic workflows.
type corpusTemplate struct {
	subject  string
	action   string
	category string
	tags     []string
}

var corpusTemplates = []corpusTemplate{
	{"Slack", "Send alerts to a Slack channel", "notification", []string{"slack", "alerts"}},
	{"Email", "Send a daily email digest", "communication", []string{"email", "digest"}},
	{"CSV", "Process and clean CSV data files", "data-processing", []string{"csv", "etl"}},
	{"Analytics", "Transform events into an analytics report", "data-processing", []string{"analytics", "report"}},
	{"Webhook", "Sync records through an API webhook", "integration", []string{"api", "webhook"}},
	{"Deploy", "Notify the team when a deploy finishes", "notification", []string{"deploy", "ci"}},
	{"Backup", "Back up a database to object storage", "operations", []string{"backup", "s3"}},
	{"Invoice", "Generate invoices from billing data", "finance", []string{"billing"}},
}

var owners = []string{"alice", "bob", "carol", "dave"}

// GenerateCorpus builds n deterministic workflows. Roughly three in four
// are public.
func GenerateCorpus(n int, seed uint64) []storage.Workflow {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	workflows := make([]storage.Workflow, 0, n)
	for i := 0; i < n; i++ {
		tmpl := corpusTemplates[rng.IntN(len(corpusTemplates))]
		created := base.Add(time.Duration(rng.IntN(365*24)) * time.Hour)

		workflows = append(workflows, storage.Workflow{
			ID:          fmt.Sprintf("bench-%05d", i),
			Name:        fmt.Sprintf("%s Workflow %d", tmpl.subject, i),
			Description: tmpl.action,
			Category:    tmpl.category,
			Tags:        slices.Clone(tmpl.tags),
			CreatedBy:   owners[rng.IntN(len(owners))],
			IsPublic:    rng.IntN(4) != 0,
			Version:     storage.DefaultVersion,
			CreatedAt:   created,
			UpdatedAt:   created,
		})
	}
	return workflows
}

// FormatResult formats the benchmark result for display.
func FormatResult(r *Result) string {
	var sb strings.Builder

	sb.WriteString("╔══════════════════════════════════════════════════════════════╗\n")
	sb.WriteString("║              SEARCH LATENCY BENCHMARK RESULTS                ║\n")
	sb.WriteString("╠══════════════════════════════════════════════════════════════╣\n")
	sb.WriteString("║                                                              ║\n")
	sb.WriteString("║  📊 WORKLOAD                                                 ║\n")
	sb.WriteString(fmt.Sprintf("║     Workflows:   %-44d║\n", r.Workflows))
	sb.WriteString(fmt.Sprintf("║     Searches:    %-44d║\n", r.Searches))
	sb.WriteString(fmt.Sprintf("║     Concurrency: %-44d║\n", r.Concurrency))
	sb.WriteString("║                                                              ║\n")
	sb.WriteString("╠══════════════════════════════════════════════════════════════╣\n")
	sb.WriteString("║                                                              ║\n")
	sb.WriteString("║  ⏱  LATENCY                                                  ║\n")
	sb.WriteString(fmt.Sprintf("║     p50: %-52s║\n", r.P50.Round(time.Microsecond)))
	sb.WriteString(fmt.Sprintf("║     p95: %-52s║\n", r.P95.Round(time.Microsecond)))
	sb.WriteString(fmt.Sprintf("║     p99: %-52s║\n", r.P99.Round(time.Microsecond)))
	sb.WriteString(fmt.Sprintf("║     max: %-52s║\n", r.Max.Round(time.Microsecond)))
	sb.WriteString("║                                                              ║\n")
	sb.WriteString("╠══════════════════════════════════════════════════════════════╣\n")
	sb.WriteString("║                                                              ║\n")
	sb.WriteString("║  🚀 THROUGHPUT                                               ║\n")
	sb.WriteString(fmt.Sprintf("║     Searches/sec: %-43.1f║\n", r.Throughput))
	sb.WriteString(fmt.Sprintf("║     Avg results:  %-43.1f║\n", r.AvgResults))
	sb.WriteString(fmt.Sprintf("║     Wall time:    %-43s║\n", r.Elapsed.Round(time.Millisecond)))
	sb.WriteString("║                                                              ║\n")
	sb.WriteString("╚══════════════════════════════════════════════════════════════╝\n")

	return sb.String()
}
