// Package engine is the single entry point consumed by the upstream tool
// layer: cache lookup, concurrent fan-out, fusion, envelope wrapping and
// content-aware cache writes behind one Search call.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/mohammad-safakhou/searchfusion/adapters"
	"github.com/mohammad-safakhou/searchfusion/cache"
	"github.com/mohammad-safakhou/searchfusion/config"
	"github.com/mohammad-safakhou/searchfusion/contract"
	"github.com/mohammad-safakhou/searchfusion/fusion"
	"github.com/mohammad-safakhou/searchfusion/internal/metrics"
	"github.com/mohammad-safakhou/searchfusion/models"
)

// ToolName keys this engine's entries in the shared query cache.
const ToolName = "fusion_search"

const defaultMaxResults = 10

// Engine wires the adapter registry, orchestrator, fuser and cache into one
// explicitly constructed context object. No package-level singletons: build
// one, pass it around, Close it on shutdown.
type Engine struct {
	orch   *fusion.Orchestrator
	cache  *cache.Cache
	logger *log.Logger
}

// New assembles an engine from configuration, a registry and a cache store.
func New(cfg *config.Config, registry *adapters.Registry, store cache.Store) *Engine {
	fuser := fusion.NewFuser(cfg.Fusion.TrustWeights,
		time.Duration(cfg.Fusion.RecencyHalfLifeHours*float64(time.Hour)),
		cfg.Fusion.RerankTopK)
	policy := cache.DefaultTTLPolicy()
	if cfg.Cache.NewsTTL > 0 {
		policy.News = cfg.Cache.NewsTTL
	}
	if cfg.Cache.FundingTTL > 0 {
		policy.Funding = cfg.Cache.FundingTTL
	}
	if cfg.Cache.BackgroundTTL > 0 {
		policy.Background = cfg.Cache.BackgroundTTL
	}
	if cfg.Cache.DefaultTTL > 0 {
		policy.Default = cfg.Cache.DefaultTTL
	}
	return &Engine{
		orch:   fusion.NewOrchestrator(registry, fuser, cfg.Fusion.Deadline, cfg.Fusion.MaxConcurrent),
		cache:  cache.New(store, policy),
		logger: log.New(log.Writer(), "[ENGINE] ", log.LstdFlags),
	}
}

// Cache exposes the cache service for the sweeper and invalidation callers.
func (e *Engine) Cache() *cache.Cache { return e.cache }

// Search serves one query: cache hit short-circuits; otherwise the fan-out
// runs, the fused response is wrapped in the versioned envelope and written
// back with a TTL classified from the query. Identical concurrent misses may
// both fan out and both write; last writer wins (external reads are
// idempotent, so no single-flight here).
func (e *Engine) Search(ctx context.Context, query string, mode models.SearchMode, opts models.SearchOptions) (contract.Envelope, error) {
	if mode == "" {
		mode = models.ModeBalanced
	}
	if !mode.Valid() {
		return contract.Envelope{}, fmt.Errorf("invalid search mode %q", mode)
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = defaultMaxResults
	}

	key := cacheKey(query, mode, opts)
	if hit, ok := e.cache.Get(ctx, key); ok {
		var env contract.Envelope
		if err := json.Unmarshal(hit.Response, &env); err == nil {
			metrics.SearchesTotal.WithLabelValues(string(mode), "hit").Inc()
			e.logger.Printf("cache hit for %s (age %dms)", key, hit.AgeMs)
			return env, nil
		}
		// Undecodable entry: drop it and fall through to a fresh search.
		_ = e.cache.Invalidate(ctx, key)
	}

	resp, err := e.orch.Run(ctx, query, mode, opts)
	if err != nil {
		return contract.Envelope{}, err
	}
	observe(resp)

	env := contract.Wrap(resp)
	if data, err := json.Marshal(env); err == nil {
		hasDateFilter := opts.DateRange != nil && !opts.DateRange.IsZero()
		e.cache.Set(ctx, key, ToolName, data, e.cache.TTLFor(query, hasDateFilter))
	}
	metrics.SearchesTotal.WithLabelValues(string(mode), "miss").Inc()
	return env, nil
}

// Invalidate drops the cache entry for the given query shape.
func (e *Engine) Invalidate(ctx context.Context, query string, mode models.SearchMode, opts models.SearchOptions) error {
	if opts.MaxResults <= 0 {
		opts.MaxResults = defaultMaxResults
	}
	return e.cache.Invalidate(ctx, cacheKey(query, mode, opts))
}

// cacheKey flattens the semantic search inputs into the deterministic key
// parameters. Slices are sorted so subset order never changes the key.
func cacheKey(query string, mode models.SearchMode, opts models.SearchOptions) string {
	params := map[string]any{
		"mode":       string(mode),
		"maxResults": opts.MaxResults,
	}
	if len(opts.Sources) > 0 {
		sources := make([]string, 0, len(opts.Sources))
		for _, s := range opts.Sources {
			sources = append(sources, string(s))
		}
		sort.Strings(sources)
		params["sources"] = sources
	}
	if len(opts.ContentTypes) > 0 {
		types := make([]string, 0, len(opts.ContentTypes))
		for _, ct := range opts.ContentTypes {
			types = append(types, string(ct))
		}
		sort.Strings(types)
		params["contentTypes"] = types
	}
	if opts.DateRange != nil && !opts.DateRange.IsZero() {
		params["dateRange"] = map[string]string{
			"start": opts.DateRange.Start.UTC().Format(time.RFC3339),
			"end":   opts.DateRange.End.UTC().Format(time.RFC3339),
		}
	}
	return cache.Key(ToolName, query, params)
}

func observe(resp models.SearchResponse) {
	for _, se := range resp.Errors {
		metrics.AdapterFailuresTotal.WithLabelValues(string(se.Source)).Inc()
	}
	for source, ms := range resp.Timing {
		metrics.SourceLatency.WithLabelValues(string(source)).Observe(float64(ms) / 1000)
	}
}
