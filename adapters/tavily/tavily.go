// Package tavily implements general web search via the Tavily API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mohammad-safakhou/searchfusion/config"
	"github.com/mohammad-safakhou/searchfusion/internal/helpers"
	"github.com/mohammad-safakhou/searchfusion/models"
)

// maxResults is Tavily's per-request ceiling.
const maxResults = 20

type Adapter struct {
	cfg    config.TavilyConfig
	logger *log.Logger
}

func New(cfg config.TavilyConfig) *Adapter {
	return &Adapter{cfg: cfg, logger: log.New(log.Writer(), "[TAVILY] ", log.LstdFlags)}
}

func (a *Adapter) Source() models.Source { return models.SourceTavily }

func (a *Adapter) Available() bool { return a.cfg.APIKey != "" }

func (a *Adapter) Slow() bool { return false }

// Search queries Tavily. Internal failures are soft: logged and absorbed into
// an empty result set. Only the context's error escapes.
func (a *Adapter) Search(ctx context.Context, query string, opts models.SearchOptions) ([]models.SearchResult, error) {
	k := helpers.ClampMax(opts.MaxResults, maxResults)
	payload := map[string]any{
		"query":        query,
		"max_results":  k,
		"search_depth": a.cfg.SearchDepth,
	}
	// Tavily takes a relative freshness window in days.
	if opts.DateRange != nil && !opts.DateRange.Start.IsZero() {
		days := int(math.Ceil(time.Since(opts.DateRange.Start).Hours() / 24))
		if days > 0 {
			payload["days"] = days
			payload["topic"] = "news"
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
		Results []struct {
			Title         string  `json:"title"`
			URL           string  `json:"url"`
			Content       string  `json:"content"`
			Score         float64 `json:"score"`
			PublishedDate string  `json:"published_date"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		a.logger.Printf("decode response: %v", err)
		return nil, nil
	}

	out := make([]models.SearchResult, 0, len(raw.Results))
	for i, r := range raw.Results {
		if i >= k {
			break
		}
		res := models.SearchResult{
			ID:           fmt.Sprintf("tavily-%s", uuid.New().String()),
			Source:       models.SourceTavily,
			Title:        r.Title,
			Snippet:      r.Content,
			URL:          r.URL,
			Score:        r.Score,
			OriginalRank: i + 1,
			ContentType:  helpers.InferContentType(r.URL),
			Metadata:     models.ResultMetadata{Domain: helpers.Domain(r.URL)},
		}
		if ts, err := time.Parse(time.RFC3339, r.PublishedDate); err == nil {
			res.PublishedAt = &ts
		}
		out = append(out, res)
	}
	return helpers.FilterContentTypes(out, opts.ContentTypes), nil
}
