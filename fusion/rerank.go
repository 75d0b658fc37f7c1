package fusion

import (
	"github.com/blevesearch/bleve"
	"github.com/mohammad-safakhou/searchfusion/models"
)

// rerank runs the comprehensive-mode pass: the top-K pre-truncation results
// are indexed into a throwaway in-memory bleve index and re-scored against the
// query text, and that match score is blended back into the ordering basis.
// Returns true only when the pass ran to completion and produced at least one
// match, i.e. when it actually changed what the sort is based on.
func (f *Fuser) rerank(results []models.SearchResult, query string) bool {
	k := f.rerankTopK
	if k > len(results) {
		k = len(results)
	}
	window := results[:k]

	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		f.logger.Printf("rerank index: %v", err)
		return false
	}
	defer idx.Close()

	byID := make(map[string]int, len(window))
	for i, r := range window {
		byID[r.ID] = i
		doc := map[string]string{"title": r.Title, "snippet": r.Snippet}
		if err := idx.Index(r.ID, doc); err != nil {
			f.logger.Printf("rerank index %s: %v", r.ID, err)
			return false
		}
	}

	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = k
	res, err := idx.Search(req)
	if err != nil {
		f.logger.Printf("rerank search: %v", err)
		return false
	}
	if len(res.Hits) == 0 {
		return false
	}

	maxHit := res.Hits[0].Score
	for _, hit := range res.Hits {
		if hit.Score > maxHit {
			maxHit = hit.Score
		}
	}
	matchScore := make(map[string]float64, len(res.Hits))
	for _, hit := range res.Hits {
		if maxHit > 0 {
			matchScore[hit.ID] = hit.Score / maxHit
		}
	}
	for i := range window {
		window[i].Score = clamp01(0.5*window[i].Score + 0.5*matchScore[window[i].ID])
	}
	return true
}
