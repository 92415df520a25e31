package search

import (
	"strings"

	"github.com/khanglvm/workflow-hub/internal/storage"
)

// Field-match weights for the full query string. Name, description and
// category are tiered: only the first field that matches contributes.
const (
	NameMatchWeight        = 10.0
	DescriptionMatchWeight = 8.0
	CategoryMatchWeight    = 6.0
	TagMatchWeight         = 5.0
)

// Keyword-density weights, applied per keyword and per field.
const (
	NameKeywordWeight        = 3.0
	DescriptionKeywordWeight = 2.0
	CategoryKeywordWeight    = 1.0
)

// Score computes the relevance of wf for query and its extracted keywords.
// All comparisons are case-insensitive substring tests against the query as
// given, surrounding whitespace included. The result is 0 when nothing matched.
func Score(wf storage.Workflow, query string, keywords []string) float64 {
	f := lowerFields(wf)
	q := strings.ToLower(query)

	return fieldMatchScore(f, q) + keywordScore(f, keywords)
}

// lowered holds the lowercased searchable fields of one workflow.
type lowered struct {
	name        string
	description string
	category    string
	tags        []string
}

func lowerFields(wf storage.Workflow) lowered {
	tags := make([]string, len(wf.Tags))
	for i, t := range wf.Tags {
		tags[i] = strings.ToLower(t)
	}
	return lowered{
		name:        strings.ToLower(wf.Name),
		description: strings.ToLower(wf.Description),
		category:    strings.ToLower(wf.Category),
		tags:        tags,
	}
}

func fieldMatchScore(f lowered, q string) float64 {
	if q == "" {
		return 0
	}

	var score float64
	switch {
	case strings.Contains(f.name, q):
		score = NameMatchWeight
	case strings.Contains(f.description, q):
		score = DescriptionMatchWeight
	case strings.Contains(f.category, q):
		score = CategoryMatchWeight
	}

	for _, tag := range f.tags {
		if strings.Contains(tag, q) {
			score += TagMatchWeight
			break
		}
	}

	return score
}

func keywordScore(f lowered, keywords []string) float64 {
	var score float64
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(f.name, kw) {
			score += NameKeywordWeight
		}
		if strings.Contains(f.description, kw) {
			score += DescriptionKeywordWeight
		}
		if strings.Contains(f.category, kw) {
			score += CategoryKeywordWeight
		}
	}
	return score
}
