package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hpungsan/sift/internal/config"
	"github.com/hpungsan/sift/internal/errors"
	"github.com/hpungsan/sift/internal/filter"
	"github.com/hpungsan/sift/internal/logger"
	"github.com/hpungsan/sift/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store ops.Store
	cfg   *config.Config
	log   *zap.Logger
}

// NewHandlers creates a new Handlers instance. A nil logger discards output.
func NewHandlers(store ops.Store, cfg *config.Config, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{store: store, cfg: cfg, log: log.With(zap.String(logger.FieldComponent, "mcp"))}
}

// Request types for each tool

// ValueRequest represents the arguments for analyze, fetch and delete.
type ValueRequest struct {
	Value *string `json:"value"`
}

// QueryRequest represents the arguments for query and translate.
type QueryRequest struct {
	Query string `json:"query"`
}

// Handler implementations

// HandleAnalyze handles the string_analyze tool call.
func (h *Handlers) HandleAnalyze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	value, err := decodeValue(req)
	if err != nil {
		return h.errorResult(err), nil
	}

	result, err := ops.Create(ctx, h.store, h.cfg, ops.CreateInput{Value: value})
	if err != nil {
		return h.errorResult(err), nil
	}

	return successResult(result)
}

// HandleFetch handles the string_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	value, err := decodeValue(req)
	if err != nil {
		return h.errorResult(err), nil
	}

	result, err := ops.Fetch(ctx, h.store, ops.FetchInput{Value: value})
	if err != nil {
		return h.errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the string_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	value, err := decodeValue(req)
	if err != nil {
		return h.errorResult(err), nil
	}

	result, err := ops.Delete(ctx, h.store, ops.DeleteInput{Value: value})
	if err != nil {
		return h.errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the string_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spec, err := decode[filter.Spec](req)
	if err != nil {
		return h.errorResult(decodeError(err)), nil
	}

	result, err := ops.List(ctx, h.store, ops.ListInput{Filters: spec})
	if err != nil {
		return h.errorResult(err), nil
	}

	return successResult(result)
}

// HandleQuery handles the string_query tool call.
func (h *Handlers) HandleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[QueryRequest](req)
	if err != nil {
		return h.errorResult(decodeError(err)), nil
	}

	result, err := ops.Query(ctx, h.store, ops.QueryInput{Query: input.Query})
	if err != nil {
		return h.errorResult(err), nil
	}

	return successResult(result)
}

// HandleTranslate handles the string_translate tool call. It never touches the store.
func (h *Handlers) HandleTranslate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[QueryRequest](req)
	if err != nil {
		return h.errorResult(decodeError(err)), nil
	}
	if strings.TrimSpace(input.Query) == "" {
		return h.errorResult(errors.NewInvalidRequest("query must not be empty")), nil
	}

	interp := filter.Interpret(input.Query)

	// Report filters that would be rejected at query time
	result := map[string]any{"interpreted_query": interp}
	if err := filter.Validate(interp.ParsedFilters); err != nil {
		sErr := errors.As(err)
		result["valid"] = false
		result["error"] = map[string]any{"code": string(sErr.Code), "message": sErr.Message}
	} else {
		result["valid"] = true
	}

	return successResult(result)
}

// decodeValue extracts the required "value" argument.
func decodeValue(req mcp.CallToolRequest) (string, error) {
	input, err := decode[ValueRequest](req)
	if err != nil {
		return "", decodeError(err)
	}
	if input.Value == nil {
		return "", errors.NewInvalidRequest(`missing "value" argument`)
	}
	return *input.Value, nil
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are logged, never returned to the client.
func (h *Handlers) errorResult(err error) *mcp.CallToolResult {
	sErr := errors.As(err)

	errorObj := map[string]any{
		"code":    sErr.Code,
		"message": sErr.Message,
		"status":  sErr.Status,
	}
	if sErr.Code == errors.ErrInternal {
		h.log.Error("tool call failed", zap.Error(err))
	} else if len(sErr.Details) > 0 {
		errorObj["details"] = sErr.Details
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
