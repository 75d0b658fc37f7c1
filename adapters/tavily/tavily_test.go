package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mohammad-safakhou/searchfusion/config"
	"github.com/mohammad-safakhou/searchfusion/models"
)

func TestAvailable(t *testing.T) {
	t.Parallel()
	if New(config.TavilyConfig{}).Available() {
		t.Fatal("adapter without API key must be unavailable")
	}
	if !New(config.TavilyConfig{APIKey: "k"}).Available() {
		t.Fatal("adapter with API key must be available")
	}
}

func TestSearchMapsResponse(t *testing.T) {
	t.Parallel()

	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{
			"results": [
				{"title": "Acme raises Series B", "url": "https://news.example.com/acme", "content": "Acme announced...", "score": 0.97, "published_date": "2026-08-20T09:00:00Z"},
				{"title": "Acme pitch deck", "url": "https://example.com/acme.pdf", "content": "slides", "score": 0.41, "published_date": ""}
			]
		}`))
	}))
	defer srv.Close()

	a := New(config.TavilyConfig{APIKey: "test-key", Endpoint: srv.URL, SearchDepth: "basic"})
	results, err := a.Search(context.Background(), "acme series b", models.SearchOptions{MaxResults: 5})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if gotReq["query"] != "acme series b" {
		t.Fatalf("request query = %v", gotReq["query"])
	}
	if gotReq["max_results"] != float64(5) {
		t.Fatalf("request max_results = %v", gotReq["max_results"])
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	first := results[0]
	if first.Source != models.SourceTavily || first.OriginalRank != 1 {
		t.Fatalf("first result attribution wrong: %+v", first)
	}
	if first.Title != "Acme raises Series B" || first.Score != 0.97 {
		t.Fatalf("first result fields wrong: %+v", first)
	}
	if first.Metadata.Domain != "news.example.com" {
		t.Fatalf("domain = %q", first.Metadata.Domain)
	}
	want := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	if first.PublishedAt == nil || !first.PublishedAt.Equal(want) {
		t.Fatalf("publishedAt = %v, want %v", first.PublishedAt, want)
	}
	if results[1].ContentType != models.ContentTypePDF {
		t.Fatalf("pdf url classified as %s", results[1].ContentType)
	}
	if results[1].PublishedAt != nil {
		t.Fatal("empty published_date must stay nil")
	}
}

func TestSearchDateRangeBecomesDayWindow(t *testing.T) {
	t.Parallel()

	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	a := New(config.TavilyConfig{APIKey: "k", Endpoint: srv.URL})
	_, err := a.Search(context.Background(), "acme", models.SearchOptions{
		MaxResults: 5,
		DateRange:  &models.DateRange{Start: time.Now().Add(-7 * 24 * time.Hour)},
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	days, ok := gotReq["days"].(float64)
	if !ok || days < 7 || days > 8 {
		t.Fatalf("days = %v, want ~7", gotReq["days"])
	}
}

func TestSearchSoftFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"results": "nope"`)) }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			a := New(config.TavilyConfig{APIKey: "k", Endpoint: srv.URL})
			results, err := a.Search(context.Background(), "acme", models.SearchOptions{MaxResults: 5})
			if err != nil {
				t.Fatalf("soft failure must not surface an error, got %v", err)
			}
			if len(results) != 0 {
				t.Fatalf("soft failure returned results: %v", results)
			}
		})
	}
}

func TestSearchCancelledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	a := New(config.TavilyConfig{APIKey: "k", Endpoint: srv.URL})
	_, err := a.Search(ctx, "acme", models.SearchOptions{MaxResults: 5})
	if err == nil {
		t.Fatal("deadline breach must surface the context error")
	}
}
