package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mohammad-safakhou/searchfusion/adapters"
	"github.com/mohammad-safakhou/searchfusion/cache"
	"github.com/mohammad-safakhou/searchfusion/config"
	"github.com/mohammad-safakhou/searchfusion/contract"
	"github.com/mohammad-safakhou/searchfusion/internal/store"
	"github.com/mohammad-safakhou/searchfusion/models"
)

type fakeAdapter struct {
	source models.Source
	calls  atomic.Int64
}

func (a *fakeAdapter) Source() models.Source { return a.source }
func (a *fakeAdapter) Available() bool       { return true }
func (a *fakeAdapter) Slow() bool            { return false }

func (a *fakeAdapter) Search(_ context.Context, _ string, _ models.SearchOptions) ([]models.SearchResult, error) {
	a.calls.Add(1)
	return []models.SearchResult{{
		ID: "tavily-1", Source: a.source, Title: "Acme", Snippet: "about acme",
		URL: "https://example.com/acme", Score: 0.9, OriginalRank: 1,
		ContentType: models.ContentTypeText,
	}}, nil
}

func newTestEngine() (*Engine, *fakeAdapter, *store.Memory) {
	adapter := &fakeAdapter{source: models.SourceTavily}
	st := store.NewMemory()
	cfg := &config.Config{}
	cfg.Fusion.Deadline = time.Second
	eng := New(cfg, adapters.NewRegistryOf(adapter), st)
	return eng, adapter, st
}

func TestSearchCachesSecondCall(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, adapter, _ := newTestEngine()

	env, err := eng.Search(ctx, "acme corp", models.ModeBalanced, models.SearchOptions{})
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	if env.Kind != contract.Kind || env.Version != contract.CurrentVersion {
		t.Fatalf("envelope stamped %s v%d", env.Kind, env.Version)
	}
	if err := contract.ValidateEnvelope(env); err != nil {
		t.Fatalf("envelope fails contract validation: %v", err)
	}
	if len(env.Payload.Results) != 1 {
		t.Fatalf("got %d results", len(env.Payload.Results))
	}

	cached, err := eng.Search(ctx, "acme corp", models.ModeBalanced, models.SearchOptions{})
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if got := adapter.calls.Load(); got != 1 {
		t.Fatalf("adapter called %d times, want 1 (second call served from cache)", got)
	}
	if cached.GeneratedAt != env.GeneratedAt {
		t.Fatal("cached envelope should be the stored one, not a fresh generation")
	}
}

func TestSearchNormalizedQueriesShareEntries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, adapter, _ := newTestEngine()

	if _, err := eng.Search(ctx, "Acme  Corp", models.ModeBalanced, models.SearchOptions{}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if _, err := eng.Search(ctx, "acme corp", models.ModeBalanced, models.SearchOptions{}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := adapter.calls.Load(); got != 1 {
		t.Fatalf("adapter called %d times, want 1 for equivalent queries", got)
	}
}

func TestSearchModeChangesKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, adapter, _ := newTestEngine()

	if _, err := eng.Search(ctx, "acme corp", models.ModeBalanced, models.SearchOptions{}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if _, err := eng.Search(ctx, "acme corp", models.ModeFast, models.SearchOptions{}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := adapter.calls.Load(); got != 2 {
		t.Fatalf("adapter called %d times, want 2 for distinct modes", got)
	}
}

func TestSearchInvalidMode(t *testing.T) {
	t.Parallel()
	eng, _, _ := newTestEngine()
	if _, err := eng.Search(context.Background(), "acme", "turbo", models.SearchOptions{}); err == nil {
		t.Fatal("invalid mode must be rejected")
	}
}

func TestSearchTTLClassification(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cases := []struct {
		name  string
		query string
		opts  models.SearchOptions
		want  time.Duration
	}{
		{"funding query", "Acme Series B funding", models.SearchOptions{}, cache.FundingTTL},
		{"temporal query", "acme latest news", models.SearchOptions{}, cache.NewsTTL},
		{"background query", "acme company overview", models.SearchOptions{}, cache.BackgroundTTL},
		{"plain query", "acme products", models.SearchOptions{}, cache.DefaultTTL},
		{
			"date filter forces news ttl", "acme products",
			models.SearchOptions{DateRange: &models.DateRange{Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)}},
			cache.NewsTTL,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			eng, _, st := newTestEngine()

			opts := tc.opts
			if _, err := eng.Search(ctx, tc.query, models.ModeBalanced, opts); err != nil {
				t.Fatalf("search: %v", err)
			}

			opts.MaxResults = defaultMaxResults
			entry, err := st.Get(ctx, cacheKey(tc.query, models.ModeBalanced, opts))
			if err != nil {
				t.Fatalf("cached entry missing: %v", err)
			}
			if entry.ToolName != ToolName {
				t.Fatalf("toolName = %q, want %q", entry.ToolName, ToolName)
			}
			if entry.TTLMs != tc.want.Milliseconds() {
				t.Fatalf("TTLMs = %d, want %d", entry.TTLMs, tc.want.Milliseconds())
			}
		})
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, adapter, _ := newTestEngine()

	if _, err := eng.Search(ctx, "acme corp", models.ModeBalanced, models.SearchOptions{}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if err := eng.Invalidate(ctx, "acme corp", models.ModeBalanced, models.SearchOptions{}); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := eng.Search(ctx, "acme corp", models.ModeBalanced, models.SearchOptions{}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := adapter.calls.Load(); got != 2 {
		t.Fatalf("adapter called %d times, want 2 after invalidation", got)
	}
}

func TestSearchSkipsUndecodableCacheEntry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, adapter, st := newTestEngine()

	opts := models.SearchOptions{MaxResults: defaultMaxResults}
	key := cacheKey("acme corp", models.ModeBalanced, opts)
	seed := cache.Entry{
		QueryKey:       key,
		ToolName:       ToolName,
		CachedResponse: []byte(`{"kind": truncated`),
		CompletedAt:    time.Now().UnixMilli(),
		TTLMs:          time.Hour.Milliseconds(),
	}
	if err := st.Upsert(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	env, err := eng.Search(ctx, "acme corp", models.ModeBalanced, opts)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if adapter.calls.Load() != 1 {
		t.Fatal("undecodable cache entry must fall through to a fresh search")
	}
	if err := contract.ValidateEnvelope(env); err != nil {
		t.Fatalf("fresh envelope invalid: %v", err)
	}
}
