// Package adapters defines the provider adapter contract and the startup
// registry the orchestrator selects candidates from.
package adapters

import (
	"context"
	"fmt"

	"github.com/mohammad-safakhou/searchfusion/adapters/brave"
	"github.com/mohammad-safakhou/searchfusion/adapters/linkup"
	"github.com/mohammad-safakhou/searchfusion/adapters/openalex"
	"github.com/mohammad-safakhou/searchfusion/adapters/sec"
	"github.com/mohammad-safakhou/searchfusion/adapters/tavily"
	"github.com/mohammad-safakhou/searchfusion/adapters/youtube"
	"github.com/mohammad-safakhou/searchfusion/config"
	"github.com/mohammad-safakhou/searchfusion/models"
)

// SourceAdapter translates a provider-specific search API into canonical
// results.
//
// Available must be a pure configuration check with no I/O. Search absorbs
// internal fetch/parse failures (logging them and returning an empty slice);
// the only error it surfaces is the context's, so the orchestrator can tell a
// deadline breach from a soft failure. Scores are provider-local and not
// comparable across adapters before fusion.
type SourceAdapter interface {
	Source() models.Source
	Available() bool
	// Slow marks adapters excluded from fast-mode fan-outs.
	Slow() bool
	Search(ctx context.Context, query string, opts models.SearchOptions) ([]models.SearchResult, error)
}

// Registry holds the configured adapters keyed by source, in fixed priority
// order. Built once at startup; read-only afterwards.
type Registry struct {
	adapters map[models.Source]SourceAdapter
	order    []models.Source
}

// NewRegistry constructs every known adapter from configuration. Adapters
// missing credentials are still registered; they report unavailable.
func NewRegistry(cfg config.SourcesConfig) *Registry {
	r := &Registry{adapters: make(map[models.Source]SourceAdapter)}
	r.register(tavily.New(cfg.Tavily))
	r.register(linkup.New(cfg.Linkup))
	r.register(brave.New(cfg.Brave))
	r.register(youtube.New(cfg.YouTube))
	r.register(sec.New(cfg.SEC))
	r.register(openalex.New(cfg.OpenAlex))
	return r
}

// NewRegistryOf builds a registry from explicit adapters, in the given order.
// Used by tests and embedders that bring their own implementations.
func NewRegistryOf(adapters ...SourceAdapter) *Registry {
	r := &Registry{adapters: make(map[models.Source]SourceAdapter)}
	for _, a := range adapters {
		r.register(a)
	}
	return r
}

func (r *Registry) register(a SourceAdapter) {
	if _, dup := r.adapters[a.Source()]; !dup {
		r.order = append(r.order, a.Source())
	}
	r.adapters[a.Source()] = a
}

// Get returns the adapter for a source.
func (r *Registry) Get(s models.Source) (SourceAdapter, bool) {
	a, ok := r.adapters[s]
	return a, ok
}

// Available returns every adapter whose configuration is usable, in priority
// order.
func (r *Registry) Available() []SourceAdapter {
	var out []SourceAdapter
	for _, s := range r.order {
		if a := r.adapters[s]; a.Available() {
			out = append(out, a)
		}
	}
	return out
}

// Select resolves an explicit source subset to available adapters. Unknown
// sources are an error; configured-but-unavailable ones are silently skipped.
func (r *Registry) Select(subset []models.Source) ([]SourceAdapter, error) {
	if len(subset) == 0 {
		return r.Available(), nil
	}
	var out []SourceAdapter
	for _, s := range subset {
		a, ok := r.adapters[s]
		if !ok {
			return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedSource, s)
		}
		if a.Available() {
			out = append(out, a)
		}
	}
	return out, nil
}
