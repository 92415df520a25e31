package search

import "strings"

// Intent labels produced by AnalyzeQuery.
const (
	IntentSearch         = "search"
	IntentNotification   = "notification"
	IntentDataProcessing = "data-processing"
	IntentIntegration    = "integration"
	IntentEmail          = "email"
	IntentChat           = "chat"
)

// QueryAnalysis is the classified form of a raw query.
type QueryAnalysis struct {
	Intent              string   `json:"intent"`
	Keywords            []string `json:"keywords"`
	CategorySuggestions []string `json:"categorySuggestions"`
}

// minKeywordLength is exclusive: tokens must be longer than this.
const minKeywordLength = 2

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "how": {}, "what": {},
	"when": {}, "where": {}, "why": {}, "who": {},
}

// intentRule maps any of its terms, found anywhere in the lowercased query,
// to a label.
type intentRule struct {
	terms []string
	label string
}

// intentRules is evaluated top to bottom; the first matching rule wins.
var intentRules = []intentRule{
	{terms: []string{"notification", "alert", "notify"}, label: IntentNotification},
	{terms: []string{"data", "process", "transform"}, label: IntentDataProcessing},
	{terms: []string{"api", "integration", "sync"}, label: IntentIntegration},
	{terms: []string{"email", "mail"}, label: IntentEmail},
	{terms: []string{"slack", "chat"}, label: IntentChat},
}

// categoryRule suggests category when any keyword is one of vocabulary.
type categoryRule struct {
	vocabulary []string
	category   string
}

var categoryRules = []categoryRule{
	{vocabulary: []string{"slack", "notification", "alert", "notify", "message"}, category: "notification"},
	{vocabulary: []string{"data", "csv", "process", "transform", "analytics"}, category: "data-processing"},
	{vocabulary: []string{"api", "integration", "sync", "webhook"}, category: "integration"},
	{vocabulary: []string{"email", "mail", "smtp"}, category: "communication"},
	{vocabulary: []string{"automation", "workflow", "process"}, category: "automation"},
}

// AnalyzeQuery classifies text into an intent, a keyword list and category
// suggestions. It is pure; callers reject empty input before calling it.
func AnalyzeQuery(text string) QueryAnalysis {
	lower := strings.ToLower(text)
	keywords := extractKeywords(lower)

	return QueryAnalysis{
		Intent:              classifyIntent(lower),
		Keywords:            keywords,
		CategorySuggestions: suggestCategories(keywords),
	}
}

func extractKeywords(lower string) []string {
	keywords := []string{}
	seen := map[string]struct{}{}

	for _, token := range strings.Fields(lower) {
		if len([]rune(token)) <= minKeywordLength {
			continue
		}
		if _, stop := stopwords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}

	return keywords
}

func classifyIntent(lower string) string {
	for _, rule := range intentRules {
		for _, term := range rule.terms {
			if strings.Contains(lower, term) {
				return rule.label
			}
		}
	}
	return IntentSearch
}

func suggestCategories(keywords []string) []string {
	set := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		set[k] = struct{}{}
	}

	suggestions := []string{}
	for _, rule := range categoryRules {
		for _, word := range rule.vocabulary {
			if _, ok := set[word]; ok {
				suggestions = append(suggestions, rule.category)
				break
			}
		}
	}
	return suggestions
}
