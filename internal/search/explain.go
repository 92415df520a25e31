package search

import (
	"strings"

	"github.com/khanglvm/workflow-hub/internal/storage"
)

const (
	reasonSeparator = " • "
	reasonFallback  = "General relevance to your search"
)

// ExplainMatch describes in plain language why wf matched. It uses the same
// substring tests as Score but reports every triggered clause regardless of
// weight.
func ExplainMatch(wf storage.Workflow, rawQueryLower string, keywords []string) string {
	f := lowerFields(wf)
	q := strings.ToLower(rawQueryLower)

	var reasons []string

	if q != "" {
		if strings.Contains(f.name, q) {
			reasons = append(reasons, "Title contains your search term")
		}
		if strings.Contains(f.description, q) {
			reasons = append(reasons, "Description matches your query")
		}
		if strings.Contains(f.category, q) {
			reasons = append(reasons, "Category matches your search")
		}
	}

	var tags []string
	for i, tag := range f.tags {
		if tagMatches(tag, q, keywords) {
			tags = append(tags, wf.Tags[i])
		}
	}
	if len(tags) > 0 {
		reasons = append(reasons, "Tagged with: "+strings.Join(tags, ", "))
	}

	var matched []string
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw != "" && (strings.Contains(f.name, kw) || strings.Contains(f.description, kw)) {
			matched = append(matched, kw)
		}
	}
	if len(matched) > 0 {
		reasons = append(reasons, "Contains keywords: "+strings.Join(matched, ", "))
	}

	if len(reasons) == 0 {
		return reasonFallback
	}
	return strings.Join(reasons, reasonSeparator)
}

func tagMatches(tag, q string, keywords []string) bool {
	if q != "" && strings.Contains(tag, q) {
		return true
	}
	for _, kw := range keywords {
		if kw != "" && strings.Contains(tag, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
