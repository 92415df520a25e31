/*
Package search implements relevance-ranked workflow search.

A search analyzes the free-text query into an intent and a keyword list,
fetches candidate workflows from storage, re-checks visibility and filters in
memory, scores every candidate with weighted substring matches, ranks them
and explains each match in plain language. Nothing is cached between
searches: every call works on its own freshly fetched candidate set.
*/
package search

// Result is one ranked workflow returned by a search.
type Result struct {
	WorkflowID     string   `json:"workflowId"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Tags           []string `json:"tags"`
	CreatedBy      string   `json:"createdBy"`
	IsPublic       bool     `json:"isPublic"`
	RelevanceScore float64  `json:"relevanceScore"`
	MatchReason    string   `json:"matchReason"`
}

// Response is the successful outcome of a search.
type Response struct {
	Success       bool          `json:"success"`
	Results       []Result      `json:"results"`
	TotalCount    int           `json:"totalCount"`
	QueryAnalysis QueryAnalysis `json:"queryAnalysis"`
}

// ErrorResponse is the wire shape of a failed search.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewErrorResponse wraps err in the failure envelope.
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{Success: false, Error: err.Error()}
}
