package search

import (
	"testing"

	"github.com/khanglvm/workflow-hub/internal/storage"
)

func TestIsEligible_Visibility(t *testing.T) {
	public := storage.Workflow{ID: "pub", IsPublic: true, CreatedBy: "alice"}
	private := storage.Workflow{ID: "priv", IsPublic: false, CreatedBy: "alice"}
	unowned := storage.Workflow{ID: "orphan", IsPublic: false}

	tests := []struct {
		name      string
		wf        storage.Workflow
		requester string
		want      bool
	}{
		{"public to anonymous", public, "", true},
		{"public to other user", public, "bob", true},
		{"private to owner", private, "alice", true},
		{"private to other user", private, "bob", false},
		{"private to anonymous", private, "", false},
		{"private without owner to anonymous", unowned, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEligible(tt.wf, Filters{}, tt.requester); got != tt.want {
				t.Errorf("IsEligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsEligible_Filters(t *testing.T) {
	wf := storage.Workflow{
		ID:        "wf-1",
		Category:  "Notification",
		Tags:      []string{"slack", "alerts"},
		CreatedBy: "alice",
		IsPublic:  true,
	}

	tests := []struct {
		name    string
		filters Filters
		want    bool
	}{
		{"no filters", Filters{}, true},
		{"category ignores case", Filters{Category: "notification"}, true},
		{"category mismatch", Filters{Category: "integration"}, false},
		{"isPublic true", Filters{IsPublic: BoolPtr(true)}, true},
		{"isPublic false", Filters{IsPublic: BoolPtr(false)}, false},
		{"createdBy match", Filters{CreatedBy: "alice"}, true},
		{"createdBy mismatch", Filters{CreatedBy: "bob"}, false},
		{"tags overlap", Filters{Tags: []string{"email", "slack"}}, true},
		{"tags disjoint", Filters{Tags: []string{"email"}}, false},
		{"tags are exact", Filters{Tags: []string{"Slack"}}, false},
		{"all declared filters must hold", Filters{Category: "notification", Tags: []string{"slack"}, CreatedBy: "bob"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEligible(wf, tt.filters, "carol"); got != tt.want {
				t.Errorf("IsEligible() = %v, want %v", got, tt.want)
			}
		})
	}
}
