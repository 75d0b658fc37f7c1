// Package linkup implements AI-native search via the Linkup sourced-answer API.
package linkup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/mohammad-safakhou/searchfusion/config"
	"github.com/mohammad-safakhou/searchfusion/internal/helpers"
	"github.com/mohammad-safakhou/searchfusion/models"
)

const maxResults = 10

type Adapter struct {
	cfg    config.LinkupConfig
	logger *log.Logger
}

func New(cfg config.LinkupConfig) *Adapter {
	return &Adapter{cfg: cfg, logger: log.New(log.Writer(), "[LINKUP] ", log.LstdFlags)}
}

func (a *Adapter) Source() models.Source { return models.SourceLinkup }

func (a *Adapter) Available() bool { return a.cfg.APIKey != "" }

func (a *Adapter) Slow() bool { return false }

// Search runs a sourcedAnswer query and canonicalises the cited sources.
// Linkup reports no per-source relevance, so scores fall back to the rank
// heuristic.
func (a *Adapter) Search(ctx context.Context, query string, opts models.SearchOptions) ([]models.SearchResult, error) {
	k := helpers.ClampMax(opts.MaxResults, maxResults)
	payload := map[string]any{
		"q":          query,
		"depth":      "standard",
		"outputType": "sourcedAnswer",
	}
	if opts.DateRange != nil {
		if !opts.DateRange.Start.IsZero() {
			payload["fromDate"] = opts.DateRange.Start.Format("2006-01-02")
		}
		if !opts.DateRange.End.IsZero() {
			payload["toDate"] = opts.DateRange.End.Format("2006-01-02")
		}
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		a.logger.Printf("build request: %v", err)
		return nil, nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		a.logger.Printf("request failed: %v", err)
		return nil, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		a.logger.Printf("unexpected status %d", resp.StatusCode)
		return nil, nil
	}

	var raw struct {
		Answer  string `json:"answer"`
		Sources []struct {
			Name    string `json:"name"`
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
		} `json:"sources"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		a.logger.Printf("decode response: %v", err)
		return nil, nil
	}

	total := len(raw.Sources)
	if total > k {
		total = k
	}
	out := make([]models.SearchResult, 0, total)
	for i, s := range raw.Sources {
		if i >= k {
			break
		}
		res := models.SearchResult{
			ID:           fmt.Sprintf("linkup-%s", uuid.New().String()),
			Source:       models.SourceLinkup,
			Title:        s.Name,
			Snippet:      s.Snippet,
			URL:          s.URL,
			Score:        helpers.RankScore(i+1, total),
			OriginalRank: i + 1,
			ContentType:  helpers.InferContentType(s.URL),
			Metadata:     models.ResultMetadata{Domain: helpers.Domain(s.URL)},
		}
		if res.Snippet == "" && raw.Answer != "" && i == 0 {
			// The synthesised answer stands in for the first source's snippet.
			res.Snippet = raw.Answer
		}
		out = append(out, res)
	}
	return helpers.FilterContentTypes(out, opts.ContentTypes), nil
}
