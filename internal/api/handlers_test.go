package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hpungsan/sift/internal/analysis"
	"github.com/hpungsan/sift/internal/config"
	"github.com/hpungsan/sift/internal/db"
	"github.com/hpungsan/sift/internal/errors"
	"github.com/hpungsan/sift/internal/filter"
	"github.com/hpungsan/sift/internal/ops"
)

func setupTest(t *testing.T) (http.Handler, *db.Store) {
	t.Helper()
	return setupTestWithConfig(t, config.DefaultConfig())
}

func setupTestWithConfig(t *testing.T, cfg *config.Config) (http.Handler, *db.Store) {
	t.Helper()
	store, err := db.Open(t.TempDir(), cfg)
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewHandler(store, cfg, zap.NewNop(), "test"), store
}

// seedString stores a string through the ops layer and returns its view.
func seedString(t *testing.T, store *db.Store, value string) *ops.View {
	t.Helper()
	out, err := ops.Create(context.Background(), store, nil, ops.CreateInput{Value: value})
	if err != nil {
		t.Fatalf("seed string %q: %v", value, err)
	}
	return out
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return serve(h, req)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Status  int            `json:"status"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body
}

// --- HandleCreate ---

func TestHandleCreate(t *testing.T) {
	h, _ := setupTest(t)

	rec := do(h, http.MethodPost, "/strings", `{"value": "  A man, a plan, a canal: Panama "}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var view ops.View
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Value != "A man, a plan, a canal: Panama" {
		t.Errorf("value = %q", view.Value)
	}
	if !view.Properties.IsPalindrome {
		t.Error("is_palindrome = false, want true")
	}
	if view.ID != analysis.Fingerprint(view.Value) {
		t.Errorf("id = %q, want sha256 of value", view.ID)
	}
	if loc := rec.Header().Get("Location"); loc != "/strings/"+url.PathEscape(view.Value) {
		t.Errorf("Location = %q", loc)
	}
}

func TestHandleCreate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   errors.ErrorCode
	}{
		{"missing value", `{}`, http.StatusBadRequest, errors.ErrInvalidRequest},
		{"empty value", `{"value": ""}`, http.StatusBadRequest, errors.ErrInvalidRequest},
		{"whitespace value", `{"value": "   "}`, http.StatusBadRequest, errors.ErrInvalidRequest},
		{"number value", `{"value": 42}`, http.StatusUnprocessableEntity, errors.ErrInvalidType},
		{"null value", `{"value": null}`, http.StatusUnprocessableEntity, errors.ErrInvalidType},
		{"array value", `{"value": ["a"]}`, http.StatusUnprocessableEntity, errors.ErrInvalidType},
		{"malformed json", `{"value": `, http.StatusBadRequest, errors.ErrInvalidRequest},
		{"non-object body", `"hello"`, http.StatusBadRequest, errors.ErrInvalidRequest},
		{"trailing data", `{"value": "x"} trailing`, http.StatusBadRequest, errors.ErrInvalidRequest},
		{"second object", `{"value": "x"}{"value": "y"}`, http.StatusBadRequest, errors.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setupTest(t)
			rec := do(h, http.MethodPost, "/strings", tt.body)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d; body = %s", rec.Code, tt.status, rec.Body.String())
			}
			body := decodeError(t, rec)
			if body.Error.Code != string(tt.code) {
				t.Errorf("code = %q, want %q", body.Error.Code, tt.code)
			}
			if body.Error.Status != tt.status {
				t.Errorf("error.status = %d, want %d", body.Error.Status, tt.status)
			}
		})
	}
}

func TestHandleCreate_Duplicate(t *testing.T) {
	h, store := setupTest(t)
	existing := seedString(t, store, "hello world")

	rec := do(h, http.MethodPost, "/strings", `{"value": "hello   world"}`)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	body := decodeError(t, rec)
	if body.Error.Details["id"] != existing.ID {
		t.Errorf("details.id = %v, want %q", body.Error.Details["id"], existing.ID)
	}
}

func TestHandleCreate_BodyTooLarge(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxBodyBytes = 16
	h, _ := setupTestWithConfig(t, cfg)

	rec := do(h, http.MethodPost, "/strings", `{"value": "this body is longer than sixteen bytes"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(decodeError(t, rec).Error.Message, "exceeds 16 bytes") {
		t.Errorf("message = %q", decodeError(t, rec).Error.Message)
	}
}

// --- HandleFetch ---

func TestHandleFetch(t *testing.T) {
	h, store := setupTest(t)
	seeded := seedString(t, store, "hello world")

	rec := do(h, http.MethodGet, "/strings/"+url.PathEscape("hello world"), "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var view ops.View
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.ID != seeded.ID {
		t.Errorf("id = %q, want %q", view.ID, seeded.ID)
	}
	if view.Properties.CharacterFrequencyMap["o"] != 2 {
		t.Errorf("character_frequency_map[o] = %d, want 2", view.Properties.CharacterFrequencyMap["o"])
	}
}

func TestHandleFetch_NotFound(t *testing.T) {
	h, _ := setupTest(t)

	rec := do(h, http.MethodGet, "/strings/nothing", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if code := decodeError(t, rec).Error.Code; code != string(errors.ErrNotFound) {
		t.Errorf("code = %q, want NOT_FOUND", code)
	}
}

// --- HandleDelete ---

func TestHandleDelete(t *testing.T) {
	h, store := setupTest(t)
	seedString(t, store, "bye")

	rec := do(h, http.MethodDelete, "/strings/bye", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}

	rec = do(h, http.MethodDelete, "/strings/bye", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// --- HandleList ---

func TestHandleList(t *testing.T) {
	h, store := setupTest(t)
	seedString(t, store, "level")
	seedString(t, store, "hello world")
	seedString(t, store, "noon")

	rec := do(h, http.MethodGet, "/strings?is_palindrome=true&max_length=4", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var out ops.ListOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 1 || out.Data[0].Value != "noon" {
		t.Errorf("data = %+v, want [noon]", out.Data)
	}
	if out.FiltersApplied.IsPalindrome == nil || !*out.FiltersApplied.IsPalindrome {
		t.Error("filters_applied.is_palindrome not echoed")
	}
	if out.FiltersApplied.MaxLength == nil || *out.FiltersApplied.MaxLength != 4 {
		t.Error("filters_applied.max_length not echoed")
	}
	if out.FiltersApplied.MinLength != nil {
		t.Error("filters_applied.min_length should be absent")
	}
}

func TestHandleList_NoFilters(t *testing.T) {
	h, store := setupTest(t)
	seedString(t, store, "one")
	seedString(t, store, "two")

	rec := do(h, http.MethodGet, "/strings", "")

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(raw["count"]) != "2" {
		t.Errorf("count = %s, want 2", raw["count"])
	}
	if string(raw["filters_applied"]) != "{}" {
		t.Errorf("filters_applied = %s, want {}", raw["filters_applied"])
	}
}

func TestHandleList_Errors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status int
		code   errors.ErrorCode
	}{
		{"bad boolean", "is_palindrome=yes", http.StatusBadRequest, errors.ErrInvalidRequest},
		{"bad integer", "min_length=abc", http.StatusBadRequest, errors.ErrInvalidRequest},
		{"negative integer", "word_count=-2", http.StatusBadRequest, errors.ErrInvalidRequest},
		{"multi-character filter", "contains_character=ab", http.StatusBadRequest, errors.ErrInvalidCharacterFilter},
		{"empty character filter", "contains_character=", http.StatusBadRequest, errors.ErrInvalidCharacterFilter},
		{"conflicting lengths", "min_length=9&max_length=3", http.StatusUnprocessableEntity, errors.ErrConflictingFilters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setupTest(t)
			rec := do(h, http.MethodGet, "/strings?"+tt.query, "")

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d; body = %s", rec.Code, tt.status, rec.Body.String())
			}
			if code := decodeError(t, rec).Error.Code; code != string(tt.code) {
				t.Errorf("code = %q, want %q", code, tt.code)
			}
		})
	}
}

// --- HandleNaturalLanguage ---

func TestHandleNaturalLanguage(t *testing.T) {
	h, store := setupTest(t)
	seedString(t, store, "racecar")
	seedString(t, store, "step on no pets")
	seedString(t, store, "hello")

	q := url.QueryEscape("single word palindromes")
	rec := do(h, http.MethodGet, "/strings/filter-by-natural-language?query="+q, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var out ops.QueryOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.InterpretedQuery.Original != "single word palindromes" {
		t.Errorf("original = %q", out.InterpretedQuery.Original)
	}
	parsed := out.InterpretedQuery.ParsedFilters
	if parsed.WordCount == nil || *parsed.WordCount != 1 || parsed.IsPalindrome == nil || !*parsed.IsPalindrome {
		t.Errorf("parsed_filters = %+v, want word_count 1 and is_palindrome true", parsed)
	}
	if out.Count != 1 || out.Data[0].Value != "racecar" {
		t.Errorf("data = %+v, want [racecar]", out.Data)
	}
}

func TestHandleNaturalLanguage_ShorterThanZero(t *testing.T) {
	h, store := setupTest(t)
	seedString(t, store, "a")

	rec := do(h, http.MethodGet, "/strings/filter-by-natural-language?query="+url.QueryEscape("shorter than 0 characters"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var out ops.QueryOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 0 || len(out.Data) != 0 {
		t.Errorf("data = %+v, want none", out.Data)
	}
}

func TestHandleCreate_TrailingDataNotStored(t *testing.T) {
	h, store := setupTest(t)

	rec := do(h, http.MethodPost, "/strings", `{"value": "x"} trailing`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if n, err := store.Count(context.Background()); err != nil || n != 0 {
		t.Errorf("stored count = %d (err %v), want 0", n, err)
	}
}

func TestHandleNaturalLanguage_Errors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"missing query", "", http.StatusBadRequest},
		{"blank query", "query=%20%20", http.StatusBadRequest},
		{"conflicting", "query=" + url.QueryEscape("longer than 10 characters shorter than 3 characters"), http.StatusUnprocessableEntity},
		{"conflicting with shorter than zero", "query=" + url.QueryEscape("longer than 5 characters shorter than 0 characters"), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setupTest(t)
			rec := do(h, http.MethodGet, "/strings/filter-by-natural-language?"+tt.query, "")
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d; body = %s", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

// --- routing, health, errors ---

func TestHandleNotFound(t *testing.T) {
	h, _ := setupTest(t)

	for _, target := range []string{"/", "/nope", "/strings/"} {
		rec := do(h, http.MethodGet, target, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want %d", target, rec.Code, http.StatusNotFound)
			continue
		}
		if msg := decodeError(t, rec).Error.Message; msg != "endpoint not found" {
			t.Errorf("GET %s message = %q", target, msg)
		}
	}
}

func TestHandleHealth(t *testing.T) {
	h, store := setupTest(t)
	seedString(t, store, "x")

	rec := do(h, http.MethodGet, "/healthz", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["version"] != "test" || body["strings"] != float64(1) {
		t.Errorf("body = %v", body)
	}
}

// failingStore reports an internal failure from every call.
type failingStore struct{}

func (failingStore) Exists(context.Context, string) (bool, error) {
	return false, errors.NewInternal(fmt.Errorf("disk on fire"))
}
func (failingStore) Put(context.Context, *analysis.Record) error {
	return errors.NewInternal(fmt.Errorf("disk on fire"))
}
func (failingStore) GetByText(context.Context, string) (*analysis.Record, error) {
	return nil, errors.NewInternal(fmt.Errorf("disk on fire"))
}
func (failingStore) DeleteByText(context.Context, string) error {
	return errors.NewInternal(fmt.Errorf("disk on fire"))
}
func (failingStore) Find(context.Context, filter.Predicate) ([]*analysis.Record, error) {
	return nil, errors.NewInternal(fmt.Errorf("disk on fire"))
}
func (failingStore) Count(context.Context) (int, error) {
	return 0, errors.NewInternal(fmt.Errorf("disk on fire"))
}

func TestInternalErrorsDoNotLeak(t *testing.T) {
	h := NewHandler(failingStore{}, config.DefaultConfig(), zap.NewNop(), "test")

	for _, req := range []struct{ method, target, body string }{
		{http.MethodPost, "/strings", `{"value": "x"}`},
		{http.MethodGet, "/strings/x", ""},
		{http.MethodGet, "/strings", ""},
		{http.MethodGet, "/healthz", ""},
	} {
		rec := do(h, req.method, req.target, req.body)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s %s status = %d, want 500", req.method, req.target, rec.Code)
		}
		if strings.Contains(rec.Body.String(), "disk on fire") {
			t.Errorf("%s %s leaked internal error: %s", req.method, req.target, rec.Body.String())
		}
		body := decodeError(t, rec)
		if body.Error.Details != nil {
			t.Errorf("%s %s details = %v, want none", req.method, req.target, body.Error.Details)
		}
	}
}

func TestHandlers_DebugLogFields(t *testing.T) {
	store, err := db.Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	core, logs := observer.New(zapcore.DebugLevel)
	h := NewHandler(store, config.DefaultConfig(), zap.New(core), "test")

	rec := do(h, http.MethodPost, "/strings", `{"value": "noon"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", rec.Code, http.StatusCreated)
	}
	stored := logs.FilterMessage("string stored").All()
	if len(stored) != 1 {
		t.Fatalf("got %d \"string stored\" entries, want 1", len(stored))
	}
	if stored[0].ContextMap()["id"] != analysis.Fingerprint("noon") {
		t.Errorf("id = %v, want fingerprint of noon", stored[0].ContextMap()["id"])
	}
	if _, ok := stored[0].ContextMap()["request_id"]; !ok {
		t.Error("missing request_id on stored entry")
	}

	do(h, http.MethodGet, "/strings?is_palindrome=true", "")
	listed := logs.FilterMessage("strings listed").All()
	if len(listed) != 1 || listed[0].ContextMap()["count"] != int64(1) {
		t.Errorf("strings listed entries = %+v, want one with count 1", listed)
	}
}
