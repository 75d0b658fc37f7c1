// Package fusion merges raw per-provider results into one ordered,
// deduplicated list and coordinates the concurrent provider fan-out.
package fusion

import (
	"log"
	"math"
	"sort"
	"time"

	"github.com/mohammad-safakhou/searchfusion/internal/helpers"
	"github.com/mohammad-safakhou/searchfusion/models"
)

// defaultTrustWeights bias blending toward providers whose relevance signal
// has proven more reliable. Overridable per source through config.
var defaultTrustWeights = map[models.Source]float64{
	models.SourceTavily:   0.95,
	models.SourceLinkup:   0.90,
	models.SourceBrave:    0.85,
	models.SourceYouTube:  0.80,
	models.SourceSEC:      1.00,
	models.SourceOpenAlex: 0.90,
}

// Fuser deduplicates, blends scores and orders results deterministically.
type Fuser struct {
	trust      map[models.Source]float64
	halfLife   time.Duration
	rerankTopK int
	logger     *log.Logger
	now        func() time.Time
}

// NewFuser builds a fuser. trustOverrides maps source names to weights in
// (0,1]; unknown sources are ignored. halfLife controls recency decay,
// rerankTopK bounds the comprehensive rerank window.
func NewFuser(trustOverrides map[string]float64, halfLife time.Duration, rerankTopK int) *Fuser {
	trust := make(map[models.Source]float64, len(defaultTrustWeights))
	for s, w := range defaultTrustWeights {
		trust[s] = w
	}
	for name, w := range trustOverrides {
		s := models.Source(name)
		if s.Valid() && w > 0 && w <= 1 {
			trust[s] = w
		}
	}
	if halfLife <= 0 {
		halfLife = 72 * time.Hour
	}
	if rerankTopK <= 0 {
		rerankTopK = 20
	}
	return &Fuser{
		trust:      trust,
		halfLife:   halfLife,
		rerankTopK: rerankTopK,
		logger:     log.New(log.Writer(), "[FUSER] ", log.LstdFlags),
		now:        time.Now,
	}
}

// Fuse runs the merge -> dedupe -> blend -> sort -> rerank -> truncate
// pipeline. The returned bool reports whether a comprehensive rerank pass
// actually executed and changed the ordering basis.
func (f *Fuser) Fuse(raw []models.SearchResult, query string, mode models.SearchMode, limit int) ([]models.SearchResult, bool) {
	merged := f.dedupe(raw)
	f.blend(merged)
	sortResults(merged)

	reranked := false
	if mode == models.ModeComprehensive && len(merged) > 1 {
		reranked = f.rerank(merged, query)
		if reranked {
			sortResults(merged)
		}
	}

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, reranked
}

// dedupe collapses results sharing a canonical URL (or, absent a URL, an ID).
// The higher-scored variant survives; metadata and source attribution from
// the loser are merged in.
func (f *Fuser) dedupe(raw []models.SearchResult) []models.SearchResult {
	byKey := make(map[string]int, len(raw))
	out := make([]models.SearchResult, 0, len(raw))
	for _, r := range raw {
		key := r.ID
		if r.URL != "" {
			if canonical, err := helpers.CanonicalURL(r.URL); err == nil {
				key = canonical
			}
		}
		idx, seen := byKey[key]
		if !seen {
			byKey[key] = len(out)
			out = append(out, r)
			continue
		}
		kept, dropped := out[idx], r
		if dropped.Score > kept.Score {
			kept, dropped = dropped, kept
		}
		kept.Metadata = mergeMetadata(kept.Metadata, dropped.Metadata, dropped.Source, kept.Source)
		out[idx] = kept
	}
	return out
}

func mergeMetadata(winner, loser models.ResultMetadata, loserSource, winnerSource models.Source) models.ResultMetadata {
	if winner.Domain == "" {
		winner.Domain = loser.Domain
	}
	if loserSource != winnerSource {
		found := false
		for _, s := range winner.SecondarySources {
			if s == loserSource {
				found = true
				break
			}
		}
		if !found {
			winner.SecondarySources = append(winner.SecondarySources, loserSource)
		}
	}
	for _, s := range loser.SecondarySources {
		if s == winnerSource {
			continue
		}
		dup := false
		for _, existing := range winner.SecondarySources {
			if existing == s {
				dup = true
				break
			}
		}
		if !dup {
			winner.SecondarySources = append(winner.SecondarySources, s)
		}
	}
	if len(loser.Extra) > 0 {
		if winner.Extra == nil {
			winner.Extra = make(map[string]string, len(loser.Extra))
		}
		for k, v := range loser.Extra {
			if _, exists := winner.Extra[k]; !exists {
				winner.Extra[k] = v
			}
		}
	}
	return winner
}

// blend rewrites every Score into a single comparable value in [0,1]:
// the per-source max-normalised local score, weighted by source trust, with a
// half-life recency decay applied when a publication date is known.
func (f *Fuser) blend(results []models.SearchResult) {
	maxBySource := make(map[models.Source]float64)
	for _, r := range results {
		if r.Score > maxBySource[r.Source] {
			maxBySource[r.Source] = r.Score
		}
	}
	now := f.now()
	for i := range results {
		r := &results[i]
		norm := 0.0
		if max := maxBySource[r.Source]; max > 0 {
			norm = r.Score / max
		}
		trust, ok := f.trust[r.Source]
		if !ok {
			trust = 0.8
		}
		blended := norm * trust
		if r.PublishedAt != nil {
			age := now.Sub(*r.PublishedAt)
			if age > 0 {
				decay := math.Pow(0.5, age.Hours()/f.halfLife.Hours())
				// Decay bottoms out at half weight so old evergreen
				// content stays rankable.
				blended *= 0.5 + 0.5*decay
			}
		}
		r.Score = clamp01(blended)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// sortResults orders by blended score descending, breaking ties by ascending
// original rank and then by fixed source priority, so identical inputs always
// produce identical output regardless of arrival order.
func sortResults(results []models.SearchResult) {
	priority := make(map[models.Source]int, len(models.AllSources()))
	for i, s := range models.AllSources() {
		priority[s] = i
	}
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.OriginalRank != b.OriginalRank {
			return a.OriginalRank < b.OriginalRank
		}
		return priority[a.Source] < priority[b.Source]
	})
}
