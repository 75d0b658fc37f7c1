package sec

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mohammad-safakhou/searchfusion/config"
	"github.com/mohammad-safakhou/searchfusion/models"
)

func TestAvailableRequiresUserAgent(t *testing.T) {
	t.Parallel()
	if New(config.SECConfig{}).Available() {
		t.Fatal("adapter without a User-Agent must be unavailable")
	}
	if !New(config.SECConfig{UserAgent: "research admin@example.com"}).Available() {
		t.Fatal("adapter with a User-Agent must be available")
	}
}

func TestSlow(t *testing.T) {
	t.Parallel()
	if !New(config.SECConfig{}).Slow() {
		t.Fatal("EDGAR adapter must be marked slow")
	}
}

func TestFilingURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		id   string
		want string
	}{
		{
			"accession and document",
			"0001628280-26-001234:acme-10k.htm",
			"https://www.sec.gov/Archives/edgar/data/000162828026001234/acme-10k.htm",
		},
		{
			"unexpected shape falls back to search link",
			"weird id",
			"https://www.sec.gov/cgi-bin/srqsb?text=weird+id",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := filingURL(tc.id); got != tc.want {
				t.Fatalf("filingURL(%q) = %q, want %q", tc.id, got, tc.want)
			}
		})
	}
}

func TestSearchMapsHits(t *testing.T) {
	t.Parallel()

	var gotUA, gotQ string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotQ = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`{"hits": {"hits": [
			{"_id": "0001628280-26-001234:acme-10k.htm", "_score": 12.4, "_source": {"display_names": ["ACME CORP"], "file_type": "10-K", "file_date": "2026-02-14"}}
		]}}`))
	}))
	defer srv.Close()

	a := New(config.SECConfig{UserAgent: "research admin@example.com", Endpoint: srv.URL})
	results, err := a.Search(context.Background(), "acme corp", models.SearchOptions{MaxResults: 5})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if gotUA != "research admin@example.com" {
		t.Fatalf("User-Agent = %q", gotUA)
	}
	if gotQ != `"acme corp"` {
		t.Fatalf("q = %q, want exact-phrase quoting", gotQ)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.ID != "sec-0001628280-26-001234:acme-10k.htm" || r.Source != models.SourceSEC {
		t.Fatalf("attribution wrong: %+v", r)
	}
	if r.ContentType != models.ContentTypeFiling {
		t.Fatalf("contentType = %s, want filing", r.ContentType)
	}
	if r.Author != "ACME CORP" || r.Score != 12.4 {
		t.Fatalf("fields wrong: %+v", r)
	}
	if r.PublishedAt == nil || r.PublishedAt.Format("2006-01-02") != "2026-02-14" {
		t.Fatalf("publishedAt = %v", r.PublishedAt)
	}
}
