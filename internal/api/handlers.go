package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/hpungsan/sift/internal/config"
	"github.com/hpungsan/sift/internal/errors"
	"github.com/hpungsan/sift/internal/filter"
	"github.com/hpungsan/sift/internal/logger"
	"github.com/hpungsan/sift/internal/ops"
)

// Handlers contains HTTP route handlers for the string API.
type Handlers struct {
	store   Store
	cfg     *config.Config
	log     *zap.Logger
	version string
}

// HandleCreate handles POST /strings: analyze and store a string.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	value, err := h.decodeValue(w, r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	view, err := ops.Create(r.Context(), h.store, h.cfg, ops.CreateInput{Value: value})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	logger.FromContext(r.Context(), h.log).Debug("string stored", zap.String(logger.FieldID, view.ID))

	w.Header().Set("Location", "/strings/"+url.PathEscape(view.Value))
	writeJSON(w, http.StatusCreated, view)
}

// decodeValue reads {"value": "..."} from the request body.
// A missing value is INVALID_REQUEST; a non-string value is INVALID_TYPE.
func (h *Handlers) decodeValue(w http.ResponseWriter, r *http.Request) (string, error) {
	if h.cfg != nil && h.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	}

	dec := json.NewDecoder(r.Body)
	var body map[string]json.RawMessage
	if err := dec.Decode(&body); err != nil {
		return "", bodyError(err)
	}
	// The object must be the whole body.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return "", errors.NewInvalidRequest("request body must contain a single JSON object")
		}
		return "", bodyError(err)
	}

	raw, ok := body["value"]
	if !ok {
		return "", errors.NewInvalidRequest(`missing "value" field in request body`)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", errors.NewInvalidRequest("request body must be a JSON object")
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.NewInvalidType("value", "string")
	}
	return s, nil
}

// bodyError maps a request body decoding failure to INVALID_REQUEST.
func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.NewInvalidRequest(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	}
	return errors.NewInvalidRequest("request body must be a JSON object")
}

// HandleFetch handles GET /strings/{value}: fetch a stored string.
func (h *Handlers) HandleFetch(w http.ResponseWriter, r *http.Request) {
	view, err := ops.Fetch(r.Context(), h.store, ops.FetchInput{Value: r.PathValue("value")})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// HandleDelete handles DELETE /strings/{value}: permanently delete a string.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := ops.Delete(r.Context(), h.store, ops.DeleteInput{Value: r.PathValue("value")}); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleList handles GET /strings: list strings matching structured filters.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	spec, err := filter.ParseQueryParams(r.URL.Query())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	result, err := ops.List(r.Context(), h.store, ops.ListInput{Filters: spec})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	logger.FromContext(r.Context(), h.log).Debug("strings listed", zap.Int(logger.FieldCount, result.Count))

	writeJSON(w, http.StatusOK, result)
}

// HandleNaturalLanguage handles GET /strings/filter-by-natural-language?query=...
func (h *Handlers) HandleNaturalLanguage(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Query(r.Context(), h.store, ops.QueryInput{Query: r.URL.Query().Get("query")})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	logger.FromContext(r.Context(), h.log).Debug("strings queried", zap.Int(logger.FieldCount, result.Count))

	writeJSON(w, http.StatusOK, result)
}

// HandleHealth handles GET /healthz: liveness plus a store round trip.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Count(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": h.version,
		"strings": n,
	})
}

// HandleNotFound answers every unrouted request.
func (h *Handlers) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, h.log, &errors.SiftError{
		Code:    errors.ErrNotFound,
		Status:  http.StatusNotFound,
		Message: "endpoint not found",
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes {"error": {...}}. Internal failures are logged with
// their cause and reported to the client with a generic message only.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	sErr := errors.As(err)

	body := map[string]any{
		"code":    string(sErr.Code),
		"message": sErr.Message,
		"status":  sErr.Status,
	}

	if sErr.IsClientError() {
		if len(sErr.Details) > 0 {
			body["details"] = sErr.Details
		}
	} else {
		logger.FromContext(r.Context(), log).Error("request failed",
			zap.String(logger.FieldErrorCode, string(sErr.Code)),
			zap.Error(err),
		)
	}

	writeJSON(w, sErr.Status, map[string]any{"error": body})
}
