package api

import (
	"github.com/emicklei/go-restful/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/khanglvm/workflow-hub/internal/search"
)

// RegisterRoutes mounts the workflow API, health and metrics endpoints.
func RegisterRoutes(container *restful.Container, handler *SearchHandler) {
	ws := new(restful.WebService)
	ws.
		Path("/api/v1/workflows").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.Route(ws.POST("/search").
		To(handler.Search).
		Doc("Relevance-ranked workflow search").
		Reads(search.Request{}).
		Writes(search.Response{}))

	ws.Route(ws.GET("/{id}").
		To(handler.GetWorkflow).
		Doc("Get a single workflow").
		Param(ws.PathParameter("id", "workflow identifier")).
		Param(ws.QueryParameter("requesterId", "identity used for visibility")).
		Writes(WorkflowResponse{}))

	container.Add(ws)

	health := new(restful.WebService)
	health.Path("/healthz").Produces(restful.MIME_JSON)
	health.Route(health.GET("").To(handler.Health).Writes(HealthResponse{}))
	container.Add(health)

	container.Handle("/metrics", promhttp.Handler())
}
