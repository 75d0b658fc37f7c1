package helpers

import "github.com/mohammad-safakhou/searchfusion/models"

// RankScore derives a relevance score from a 1-based rank when the provider
// reports none: 1 - rank/total. The last hit scores zero.
func RankScore(rank, total int) float64 {
	if total <= 0 || rank <= 0 {
		return 0
	}
	return 1 - float64(rank)/float64(total)
}

// ClampMax bounds a requested result count to a provider ceiling. Zero or
// negative requests fall back to the ceiling.
func ClampMax(requested, ceiling int) int {
	if requested <= 0 || requested > ceiling {
		return ceiling
	}
	return requested
}

// FilterContentTypes drops results whose content type is not in the allowed
// set. An empty set allows everything.
func FilterContentTypes(results []models.SearchResult, allowed []models.ContentType) []models.SearchResult {
	if len(allowed) == 0 {
		return results
	}
	set := make(map[models.ContentType]struct{}, len(allowed))
	for _, ct := range allowed {
		set[ct] = struct{}{}
	}
	out := results[:0]
	for _, r := range results {
		if _, ok := set[r.ContentType]; ok {
			out = append(out, r)
		}
	}
	return out
}
