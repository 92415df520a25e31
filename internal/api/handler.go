// Package api exposes workflow search over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog"

	"github.com/khanglvm/workflow-hub/internal/analytics"
	"github.com/khanglvm/workflow-hub/internal/metrics"
	"github.com/khanglvm/workflow-hub/internal/search"
	"github.com/khanglvm/workflow-hub/internal/storage"
)

const transport = "http"

// Searcher runs workflow searches.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Response, error)
}

// WorkflowReader loads single workflows.
type WorkflowReader interface {
	GetWorkflow(ctx context.Context, id string) (storage.Workflow, error)
}

// EventTracker receives completed searches for analytics.
type EventTracker interface {
	Track(event analytics.SearchEvent)
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// WorkflowResponse wraps a single workflow lookup.
type WorkflowResponse struct {
	Success  bool             `json:"success"`
	Workflow storage.Workflow `json:"workflow"`
}

// SearchHandler serves the workflow endpoints.
type SearchHandler struct {
	service Searcher
	reader  WorkflowReader
	tracker EventTracker
	logger  *zerolog.Logger
}

// NewSearchHandler creates a handler. reader and tracker may be nil.
func NewSearchHandler(service Searcher, reader WorkflowReader, tracker EventTracker, logger *zerolog.Logger) *SearchHandler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &SearchHandler{
		service: service,
		reader:  reader,
		tracker: tracker,
		logger:  logger,
	}
}

// Search handles POST /api/v1/workflows/search
func (h *SearchHandler) Search(req *restful.Request, resp *restful.Response) {
	start := time.Now()

	var searchReq search.Request
	if err := req.ReadEntity(&searchReq); err != nil {
		metrics.RecordSearch(transport, metrics.StatusInvalid, time.Since(start).Seconds(), 0)
		writeError(resp, http.StatusBadRequest, err)
		return
	}

	result, err := h.service.Search(req.Request.Context(), searchReq)
	if err != nil {
		status, label := statusFor(err)
		metrics.RecordSearch(transport, label, time.Since(start).Seconds(), 0)
		if status >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Msg("workflow search failed")
		}
		writeError(resp, status, err)
		return
	}

	metrics.RecordSearch(transport, metrics.StatusOK, time.Since(start).Seconds(), result.TotalCount)
	if h.tracker != nil {
		h.tracker.Track(analytics.NewSearchEvent(searchReq.Query, result.QueryAnalysis.Intent, result.TotalCount))
	}

	resp.WriteEntity(result)
}

// GetWorkflow handles GET /api/v1/workflows/{id}. Private workflows are
// reported as missing unless requesterId names their owner.
func (h *SearchHandler) GetWorkflow(req *restful.Request, resp *restful.Response) {
	if h.reader == nil {
		writeError(resp, http.StatusNotImplemented, errors.New("workflow lookup is not configured"))
		return
	}

	id := req.PathParameter("id")
	wf, err := h.reader.GetWorkflow(req.Request.Context(), id)
	if err == nil && !search.IsEligible(wf, search.Filters{}, req.QueryParameter("requesterId")) {
		err = storage.ErrWorkflowNotFound
	}
	if err != nil {
		status, _ := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Str("id", id).Msg("workflow lookup failed")
		}
		writeError(resp, status, err)
		return
	}

	resp.WriteEntity(WorkflowResponse{Success: true, Workflow: wf})
}

// Health handles GET /healthz
func (h *SearchHandler) Health(_ *restful.Request, resp *restful.Response) {
	resp.WriteEntity(HealthResponse{Status: "ok"})
}

// statusFor maps an error to its HTTP status and metrics label.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, search.ErrInvalidQuery):
		return http.StatusBadRequest, metrics.StatusInvalid
	case errors.Is(err, storage.ErrWorkflowNotFound):
		return http.StatusNotFound, metrics.StatusInvalid
	default:
		return http.StatusInternalServerError, metrics.StatusError
	}
}

func writeError(resp *restful.Response, status int, err error) {
	resp.WriteHeaderAndEntity(status, search.NewErrorResponse(err))
}
