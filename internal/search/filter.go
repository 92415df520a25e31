package search

import (
	"strings"

	"github.com/khanglvm/workflow-hub/internal/storage"
)

// IsEligible reports whether wf may be shown to requesterID under filters.
// Private workflows are visible to their creator only; an empty requesterID
// sees public workflows only.
func IsEligible(wf storage.Workflow, filters Filters, requesterID string) bool {
	if !wf.IsPublic && (requesterID == "" || wf.CreatedBy != requesterID) {
		return false
	}

	if filters.Category != "" && !strings.EqualFold(wf.Category, filters.Category) {
		return false
	}
	if filters.IsPublic != nil && wf.IsPublic != *filters.IsPublic {
		return false
	}
	if filters.CreatedBy != "" && wf.CreatedBy != filters.CreatedBy {
		return false
	}
	if len(filters.Tags) > 0 && !hasAnyTag(wf.Tags, filters.Tags) {
		return false
	}

	return true
}

func hasAnyTag(tags, wanted []string) bool {
	for _, w := range wanted {
		for _, t := range tags {
			if t == w {
				return true
			}
		}
	}
	return false
}
