package search

import (
	"reflect"
	"testing"
)

func TestAnalyzeQuery_Keywords(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"single word", "slack", []string{"slack"}},
		{"lowercases", "Send SLACK Message", []string{"send", "slack", "message"}},
		{"drops short tokens", "an api to go", []string{"api"}},
		{"drops stopwords", "how to process the data with csv", []string{"process", "data", "csv"}},
		{"deduplicates keeping first occurrence", "data sync data export sync", []string{"data", "sync", "export"}},
		{"collapses whitespace", "  email \t report\n", []string{"email", "report"}},
		{"nothing left", "to be or", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeQuery(tt.query).Keywords
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("keywords = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnalyzeQuery_Intent(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"slack", IntentChat},
		{"chat bot", IntentChat},
		{"notification", IntentNotification},
		{"alert me", IntentNotification},
		{"process csv files", IntentDataProcessing},
		{"transform records", IntentDataProcessing},
		{"api gateway", IntentIntegration},
		{"sync calendars", IntentIntegration},
		{"send email", IntentEmail},
		{"gmail digest", IntentEmail},
		{"daily report", IntentSearch},
		// first rule wins
		{"slack notification", IntentNotification},
		{"email data", IntentDataProcessing},
		// substring test on the full text, not per keyword
		{"metadata", IntentDataProcessing},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := AnalyzeQuery(tt.query).Intent; got != tt.want {
				t.Errorf("intent(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestAnalyzeQuery_CategorySuggestions(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"slack", []string{"notification"}},
		{"csv webhook", []string{"data-processing", "integration"}},
		{"process", []string{"data-processing", "automation"}},
		{"smtp relay", []string{"communication"}},
		{"workflow automation", []string{"automation"}},
		{"daily report", []string{}},
		// membership is by keyword, not substring
		{"slackbot", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := AnalyzeQuery(tt.query).CategorySuggestions
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("suggestions(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestAnalyzeQuery_Deterministic(t *testing.T) {
	first := AnalyzeQuery("sync data to slack via api")
	for i := 0; i < 10; i++ {
		if got := AnalyzeQuery("sync data to slack via api"); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: got %+v, want %+v", i, got, first)
		}
	}
}
