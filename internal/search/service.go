package search

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/khanglvm/workflow-hub/internal/storage"
)

// CandidateSource fetches workflows that may match a search. Implementations
// may apply any subset of the query's filters; the service re-checks all of
// them.
type CandidateSource interface {
	FetchCandidates(ctx context.Context, q storage.CandidateQuery) ([]storage.Workflow, error)
}

// Config tunes result limits. Zero values fall back to DefaultLimit and
// MaxLimit; MaxLimit is never exceeded.
type Config struct {
	DefaultLimit int
	MaxLimit     int
}

// Service runs searches. It holds no per-search state and is safe for
// concurrent use.
type Service struct {
	source       CandidateSource
	logger       *zerolog.Logger
	defaultLimit int
	maxLimit     int
}

// NewService creates a search service over source.
func NewService(source CandidateSource, cfg Config, logger *zerolog.Logger) (*Service, error) {
	if source == nil {
		return nil, ErrCandidateSourceRequired
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	maxLimit := cfg.MaxLimit
	if maxLimit <= 0 || maxLimit > MaxLimit {
		maxLimit = MaxLimit
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	defaultLimit = min(defaultLimit, maxLimit)

	return &Service{
		source:       source,
		logger:       logger,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

type scored struct {
	wf    storage.Workflow
	score float64
}

// Search ranks the workflows visible to req.RequesterID against req.Query.
// A search with no matches succeeds with an empty result list.
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	query := strings.ToLower(req.Query)
	analysis := AnalyzeQuery(query)
	filters := req.filters()

	candidates, err := s.source.FetchCandidates(ctx, req.candidateQuery())
	if err != nil {
		s.logger.Error().Err(err).Msg("candidate fetch failed")
		return nil, fmt.Errorf("%w: %w", ErrCandidateFetch, err)
	}

	ranked := make([]scored, 0, len(candidates))
	for _, wf := range candidates {
		if !IsEligible(wf, filters, req.RequesterID) {
			continue
		}
		score := Score(wf, query, analysis.Keywords)
		if score > 0 {
			ranked = append(ranked, scored{wf: wf, score: score})
		}
	}

	slices.SortFunc(ranked, compareScored)

	limit := clampLimit(req.Limit, s.defaultLimit, s.maxLimit)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	results := make([]Result, 0, len(ranked))
	for _, c := range ranked {
		results = append(results, Result{
			WorkflowID:     c.wf.ID,
			Name:           c.wf.Name,
			Description:    c.wf.Description,
			Category:       c.wf.Category,
			Tags:           tagsOrEmpty(c.wf.Tags),
			CreatedBy:      c.wf.CreatedBy,
			IsPublic:       c.wf.IsPublic,
			RelevanceScore: c.score,
			MatchReason:    ExplainMatch(c.wf, query, analysis.Keywords),
		})
	}

	s.logger.Debug().
		Str("intent", analysis.Intent).
		Int("candidates", len(candidates)).
		Int("results", len(results)).
		Dur("took", time.Since(start)).
		Msg("search completed")

	return &Response{
		Success:       true,
		Results:       results,
		TotalCount:    len(results),
		QueryAnalysis: analysis,
	}, nil
}

// compareScored orders by score descending, newest first, then by ID.
func compareScored(a, b scored) int {
	if c := cmp.Compare(b.score, a.score); c != 0 {
		return c
	}
	if c := b.wf.CreatedAt.Compare(a.wf.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.wf.ID, b.wf.ID)
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
