package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/searchfusion/adapters"
	"github.com/mohammad-safakhou/searchfusion/config"
	"github.com/mohammad-safakhou/searchfusion/contract"
	"github.com/mohammad-safakhou/searchfusion/engine"
	"github.com/mohammad-safakhou/searchfusion/internal/store"
	"github.com/mohammad-safakhou/searchfusion/models"
)

type fakeAdapter struct{}

func (fakeAdapter) Source() models.Source { return models.SourceTavily }
func (fakeAdapter) Available() bool       { return true }
func (fakeAdapter) Slow() bool            { return false }

func (fakeAdapter) Search(_ context.Context, _ string, _ models.SearchOptions) ([]models.SearchResult, error) {
	return []models.SearchResult{{
		ID: "tavily-1", Source: models.SourceTavily, Title: "Acme",
		URL: "https://example.com/acme", Score: 0.9, OriginalRank: 1,
	}}, nil
}

func newTestHandler() *Handler {
	cfg := &config.Config{}
	cfg.Fusion.Deadline = time.Second
	eng := engine.New(cfg, adapters.NewRegistryOf(fakeAdapter{}), store.NewMemory())
	return &Handler{Engine: eng}
}

func performSearch(t *testing.T, h *Handler, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, h.Search(e.NewContext(req, rec))
}

func TestSearchEndpoint(t *testing.T) {
	t.Parallel()
	h := newTestHandler()

	rec, err := performSearch(t, h, `{"query": "acme corp", "mode": "balanced"}`)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var env contract.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if err := contract.ValidateEnvelope(env); err != nil {
		t.Fatalf("response violates wire contract: %v", err)
	}
	if len(env.Payload.Results) != 1 {
		t.Fatalf("got %d results", len(env.Payload.Results))
	}
}

func TestSearchEndpointRejections(t *testing.T) {
	t.Parallel()
	h := newTestHandler()

	cases := []struct {
		name string
		body string
	}{
		{"malformed body", `{"query": `},
		{"missing query", `{"mode": "balanced"}`},
		{"invalid mode", `{"query": "acme", "mode": "turbo"}`},
		{"unknown source", `{"query": "acme", "options": {"sources": ["altavista"]}}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := performSearch(t, h, tc.body)
			he, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("err = %v, want *echo.HTTPError", err)
			}
			if he.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", he.Code)
			}
		})
	}
}

func TestInvalidateEndpoint(t *testing.T) {
	t.Parallel()
	h := newTestHandler()

	if _, err := performSearch(t, h, `{"query": "acme corp"}`); err != nil {
		t.Fatalf("seed search: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/search/invalidate", strings.NewReader(`{"query": "acme corp"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Invalidate(e.NewContext(req, rec)); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}
