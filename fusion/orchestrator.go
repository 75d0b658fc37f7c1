package fusion

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/mohammad-safakhou/searchfusion/adapters"
	"github.com/mohammad-safakhou/searchfusion/models"
)

// Orchestrator fans a query out to candidate adapters concurrently, races
// each call against a per-call deadline and assembles the fused response.
// Partial results always beat none: a failing source is recorded, never fatal.
type Orchestrator struct {
	registry      *adapters.Registry
	fuser         *Fuser
	deadline      time.Duration
	maxConcurrent int
	logger        *log.Logger
}

// NewOrchestrator wires the registry and fuser. deadline bounds every
// individual adapter call; maxConcurrent caps the fan-out defensively (the
// candidate count is already small).
func NewOrchestrator(registry *adapters.Registry, fuser *Fuser, deadline time.Duration, maxConcurrent int) *Orchestrator {
	if deadline <= 0 {
		deadline = 10 * time.Second
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	return &Orchestrator{
		registry:      registry,
		fuser:         fuser,
		deadline:      deadline,
		maxConcurrent: maxConcurrent,
		logger:        log.New(log.Writer(), "[FUSION] ", log.LstdFlags),
	}
}

type outcome struct {
	source  models.Source
	results []models.SearchResult
	elapsed time.Duration
	err     error
}

// Run executes one search. Candidates are the available adapters intersected
// with the optional explicit subset, minus slow adapters in fast mode. Every
// candidate appears in SourcesQueried whether it succeeded or not.
func (o *Orchestrator) Run(ctx context.Context, query string, mode models.SearchMode, opts models.SearchOptions) (models.SearchResponse, error) {
	started := time.Now()

	candidates, err := o.registry.Select(opts.Sources)
	if err != nil {
		return models.SearchResponse{}, err
	}
	if mode == models.ModeFast {
		fast := candidates[:0]
		for _, a := range candidates {
			if !a.Slow() {
				fast = append(fast, a)
			}
		}
		candidates = fast
	}

	outcomes := make([]outcome, len(candidates))
	sem := make(chan struct{}, o.maxConcurrent)
	var wg sync.WaitGroup
	for i, a := range candidates {
		wg.Add(1)
		go func(slot int, a adapters.SourceAdapter) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[slot] = o.invoke(ctx, a, query, opts)
		}(i, a)
	}
	wg.Wait()

	resp := models.SearchResponse{
		Mode:   mode,
		Timing: make(map[models.Source]int64, len(candidates)),
	}
	var raw []models.SearchResult
	for _, out := range outcomes {
		resp.SourcesQueried = append(resp.SourcesQueried, out.source)
		if out.err != nil {
			resp.Errors = append(resp.Errors, models.SourceError{Source: out.source, Error: errorLabel(out.err)})
			continue
		}
		resp.Timing[out.source] = out.elapsed.Milliseconds()
		resp.TotalBeforeFusion += len(out.results)
		raw = append(raw, out.results...)
	}

	resp.Results, resp.Reranked = o.fuser.Fuse(raw, query, mode, opts.MaxResults)
	if resp.Results == nil {
		resp.Results = []models.SearchResult{}
	}
	resp.TotalTimeMs = time.Since(started).Milliseconds()
	return resp, nil
}

// invoke races one adapter call against the per-call deadline. The adapter
// runs in its own goroutine so a call that ignores its context cannot block
// the pipeline past the deadline; its eventual result is discarded.
func (o *Orchestrator) invoke(ctx context.Context, a adapters.SourceAdapter, query string, opts models.SearchOptions) outcome {
	callCtx, cancel := context.WithTimeout(ctx, o.deadline)
	defer cancel()

	started := time.Now()
	done := make(chan outcome, 1)
	go func() {
		results, err := a.Search(callCtx, query, opts)
		done <- outcome{source: a.Source(), results: results, elapsed: time.Since(started), err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			o.logger.Printf("source %s failed after %s: %v", out.source, out.elapsed, out.err)
		}
		return out
	case <-callCtx.Done():
		o.logger.Printf("source %s exceeded deadline %s", a.Source(), o.deadline)
		return outcome{source: a.Source(), elapsed: time.Since(started), err: callCtx.Err()}
	}
}

func errorLabel(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return err.Error()
}
