/*
Package mcp implements the MCP server that exposes workflow search to AI clients.

The server uses stdio transport and exposes 3 tools:
  - workflow_search: Relevance-ranked search over shared workflows
  - workflow_get: Fetch one workflow by ID
  - workflow_list: List recent workflows
*/
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/khanglvm/workflow-hub/internal/analytics"
	"github.com/khanglvm/workflow-hub/internal/metrics"
	"github.com/khanglvm/workflow-hub/internal/search"
	"github.com/khanglvm/workflow-hub/internal/storage"
	"github.com/khanglvm/workflow-hub/internal/version"
)

const (
	protocolVersion = "2024-11-05"
	transport       = "mcp"

	// maxLineSize bounds a single JSON-RPC message.
	maxLineSize = 4 * 1024 * 1024
)

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolError      = -32000
)

// Searcher runs workflow searches.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Response, error)
}

// WorkflowStore reads workflows for the get and list tools.
type WorkflowStore interface {
	GetWorkflow(ctx context.Context, id string) (storage.Workflow, error)
	ListWorkflows(ctx context.Context, opts storage.ListOptions) ([]storage.Workflow, error)
}

// EventTracker receives completed searches for analytics.
type EventTracker interface {
	Track(event analytics.SearchEvent)
}

// Server represents the workflow-hub MCP server.
type Server struct {
	service Searcher
	store   WorkflowStore
	tracker EventTracker
	logger  *zerolog.Logger
	in      io.Reader
	out     io.Writer
}

// NewServer creates a new MCP server. tracker and logger may be nil.
func NewServer(service Searcher, store WorkflowStore, tracker EventTracker, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Server{
		service: service,
		store:   store,
		tracker: tracker,
		logger:  logger,
		in:      os.Stdin,
		out:     os.Stdout,
	}
}

// SetIO replaces the stdio streams, mainly for tests.
func (s *Server) SetIO(in io.Reader, out io.Writer) {
	s.in = in
	s.out = out
}

// Run starts the MCP server using stdio transport.
// This blocks until stdin is closed or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		response, err := s.handleRequest(ctx, line)
		if err != nil {
			s.sendError(err)
			continue
		}

		if response != nil {
			s.sendResponse(response)
		}
	}

	return scanner.Err()
}

// MCPRequest represents an incoming MCP JSON-RPC request.
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing MCP JSON-RPC response.
type MCPResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *MCPError `json:"error,omitempty"`
}

// MCPError represents an MCP error.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// handleRequest processes an incoming MCP request. Notifications get no
// response.
func (s *Server) handleRequest(ctx context.Context, data []byte) (*MCPResponse, error) {
	var req MCPRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("invalid JSON-RPC request: %w", err)
	}

	switch {
	case req.Method == "initialize":
		return s.handleInitialize(&req), nil
	case req.Method == "ping":
		return result(&req, map[string]any{}), nil
	case req.Method == "tools/list":
		return s.handleToolsList(&req), nil
	case req.Method == "tools/call":
		return s.handleToolsCall(ctx, &req), nil
	case strings.HasPrefix(req.Method, "notifications/"):
		return nil, nil
	default:
		return errorResponse(&req, codeMethodNotFound, "Method not found"), nil
	}
}

// handleInitialize handles the MCP initialize request.
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return result(req, map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    version.Name,
			"version": version.Get().Version,
		},
	})
}

// handleToolsList returns the available tools with AI-oriented descriptions.
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	requester := map[string]any{
		"type":        "string",
		"description": "Identity of the caller; private workflows are visible to their creator only",
	}

	tools := []map[string]any{
		{
			"name": "workflow_search",
			"description": `Search shared workflows with natural language.

WHEN TO USE: The user wants an existing automation, e.g. "slack alerts", "process csv data", "sync api".

Returns ranked workflows with a relevance score and a plain-language reason for each match, plus the detected intent and suggested categories.`,
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "What the workflow should do",
					},
					"category": map[string]any{
						"type":        "string",
						"description": "Only workflows in this category (case-insensitive)",
					},
					"tags": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Only workflows carrying at least one of these tags",
					},
					"isPublic": map[string]any{
						"type":        "boolean",
						"description": "Only public (true) or only private (false) workflows",
					},
					"createdBy": map[string]any{
						"type":        "string",
						"description": "Only workflows created by this user",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": fmt.Sprintf("Maximum results (1-%d, default %d)", search.MaxLimit, search.DefaultLimit),
					},
					"requesterId": requester,
				},
				"required": []string{"query"},
			},
		},
		{
			"name":        "workflow_get",
			"description": "Get the full record of one workflow by ID.",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Workflow ID from workflow_search results",
					},
					"requesterId": requester,
				},
				"required": []string{"id"},
			},
		},
		{
			"name":        "workflow_list",
			"description": "List the most recent workflows, newest first. Without requesterId only public workflows are listed; with it, the caller's own workflows are listed.",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum workflows to return (default 20)",
					},
					"offset": map[string]any{
						"type":        "integer",
						"description": "Number of workflows to skip",
					},
					"requesterId": requester,
				},
			},
		},
	}

	return result(req, map[string]any{"tools": tools})
}

// toolCallParams is the payload of tools/call.
type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// searchArgs mirrors the workflow_search input schema.
type searchArgs struct {
	Query       string   `json:"query"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	IsPublic    *bool    `json:"isPublic"`
	CreatedBy   string   `json:"createdBy"`
	Limit       *int     `json:"limit"`
	RequesterID string   `json:"requesterId"`
}

type getArgs struct {
	ID          string `json:"id"`
	RequesterID string `json:"requesterId"`
}

type listArgs struct {
	Limit       int    `json:"limit"`
	Offset      int    `json:"offset"`
	RequesterID string `json:"requesterId"`
}

// handleToolsCall dispatches a tool invocation.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params toolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req, codeInvalidParams, fmt.Sprintf("invalid params: %v", err))
	}
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage("{}")
	}

	var (
		text string
		err  error
	)

	switch params.Name {
	case "workflow_search":
		var args searchArgs
		if err := json.Unmarshal(params.Arguments, &args); err != nil {
			return errorResponse(req, codeInvalidParams, fmt.Sprintf("invalid arguments: %v", err))
		}
		text, err = s.execSearch(ctx, args)
	case "workflow_get":
		var args getArgs
		if err := json.Unmarshal(params.Arguments, &args); err != nil {
			return errorResponse(req, codeInvalidParams, fmt.Sprintf("invalid arguments: %v", err))
		}
		text, err = s.execGet(ctx, args)
	case "workflow_list":
		var args listArgs
		if err := json.Unmarshal(params.Arguments, &args); err != nil {
			return errorResponse(req, codeInvalidParams, fmt.Sprintf("invalid arguments: %v", err))
		}
		text, err = s.execList(ctx, args)
	default:
		return errorResponse(req, codeInvalidParams, fmt.Sprintf("Unknown tool: %s", params.Name))
	}

	if err != nil {
		return errorResponse(req, codeToolError, err.Error())
	}

	return result(req, map[string]any{
		"content": []map[string]any{
			{
				"type": "text",
				"text": text,
			},
		},
	})
}

// execSearch runs workflow_search and formats the ranked results.
func (s *Server) execSearch(ctx context.Context, args searchArgs) (string, error) {
	start := time.Now()

	req := search.Request{
		Query:       args.Query,
		Limit:       args.Limit,
		RequesterID: args.RequesterID,
	}
	if args.Category != "" || len(args.Tags) > 0 || args.IsPublic != nil || args.CreatedBy != "" {
		req.Filters = &search.Filters{
			Category:  args.Category,
			Tags:      args.Tags,
			IsPublic:  args.IsPublic,
			CreatedBy: args.CreatedBy,
		}
	}

	resp, err := s.service.Search(ctx, req)
	if err != nil {
		status := metrics.StatusError
		if errors.Is(err, search.ErrInvalidQuery) {
			status = metrics.StatusInvalid
		} else {
			s.logger.Error().Err(err).Msg("workflow search failed")
		}
		metrics.RecordSearch(transport, status, time.Since(start).Seconds(), 0)
		return "", err
	}

	metrics.RecordSearch(transport, metrics.StatusOK, time.Since(start).Seconds(), resp.TotalCount)
	if s.tracker != nil {
		s.tracker.Track(analytics.NewSearchEvent(args.Query, resp.QueryAnalysis.Intent, resp.TotalCount))
	}

	return formatSearch(args.Query, resp), nil
}

// execGet returns one workflow as JSON.
func (s *Server) execGet(ctx context.Context, args getArgs) (string, error) {
	if args.ID == "" {
		return "", fmt.Errorf("id is required")
	}

	wf, err := s.store.GetWorkflow(ctx, args.ID)
	if err == nil && !search.IsEligible(wf, search.Filters{}, args.RequesterID) {
		err = storage.ErrWorkflowNotFound
	}
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal workflow: %w", err)
	}
	return string(data), nil
}

// execList lists public workflows, or the requester's own.
func (s *Server) execList(ctx context.Context, args listArgs) (string, error) {
	opts := storage.ListOptions{Limit: args.Limit, Offset: args.Offset}
	if args.RequesterID == "" {
		opts.OnlyPublic = true
	} else {
		opts.CreatedBy = args.RequesterID
	}

	workflows, err := s.store.ListWorkflows(ctx, opts)
	if err != nil {
		return "", err
	}
	if len(workflows) == 0 {
		return "No workflows found. Add some with 'workflow-hub add' or 'workflow-hub import'.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Workflows (%d):\n", len(workflows))
	for _, wf := range workflows {
		visibility := "public"
		if !wf.IsPublic {
			visibility = "private"
		}
		fmt.Fprintf(&b, "  • %s: %s [%s, %s]\n", wf.ID, wf.Name, wf.Category, visibility)
	}
	return b.String(), nil
}

// formatSearch renders a search response for an AI client.
func formatSearch(query string, resp *search.Response) string {
	var b strings.Builder

	a := resp.QueryAnalysis
	if resp.TotalCount == 0 {
		fmt.Fprintf(&b, "No workflows match '%s' (intent: %s).\n", query, a.Intent)
		if len(a.CategorySuggestions) > 0 {
			fmt.Fprintf(&b, "Try browsing categories: %s\n", strings.Join(a.CategorySuggestions, ", "))
		}
		return b.String()
	}

	fmt.Fprintf(&b, "Found %d workflows for '%s' (intent: %s)\n\n", resp.TotalCount, query, a.Intent)
	for i, r := range resp.Results {
		fmt.Fprintf(&b, "%d. %s (id: %s, score: %.0f)\n", i+1, r.Name, r.WorkflowID, r.RelevanceScore)
		if r.Description != "" {
			fmt.Fprintf(&b, "   %s\n", r.Description)
		}
		fmt.Fprintf(&b, "   Category: %s", r.Category)
		if len(r.Tags) > 0 {
			fmt.Fprintf(&b, " | Tags: %s", strings.Join(r.Tags, ", "))
		}
		fmt.Fprintf(&b, "\n   Why: %s\n", r.MatchReason)
	}
	if len(a.CategorySuggestions) > 0 {
		fmt.Fprintf(&b, "\nRelated categories: %s\n", strings.Join(a.CategorySuggestions, ", "))
	}
	b.WriteString("\nNext step: call workflow_get(id) for the full record.")
	return b.String()
}

func result(req *MCPRequest, res any) *MCPResponse {
	return &MCPResponse{JSONRPC: "2.0", ID: req.ID, Result: res}
}

func errorResponse(req *MCPRequest, code int, msg string) *MCPResponse {
	return &MCPResponse{JSONRPC: "2.0", ID: req.ID, Error: &MCPError{Code: code, Message: msg}}
}

// sendResponse writes a JSON-RPC response line.
func (s *Server) sendResponse(resp *MCPResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal MCP response")
		return
	}
	fmt.Fprintln(s.out, string(data))
}

// sendError writes a parse error response.
func (s *Server) sendError(err error) {
	s.sendResponse(&MCPResponse{
		JSONRPC: "2.0",
		ID:      nil,
		Error:   &MCPError{Code: codeParseError, Message: err.Error()},
	})
}
