// Package brave implements general web search via the Brave Search API.
package brave

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/mohammad-safakhou/searchfusion/config"
	"github.com/mohammad-safakhou/searchfusion/internal/helpers"
	"github.com/mohammad-safakhou/searchfusion/models"
)

const maxResults = 20

type Adapter struct {
	cfg    config.BraveConfig
	logger *log.Logger
}

func New(cfg config.BraveConfig) *Adapter {
	return &Adapter{cfg: cfg, logger: log.New(log.Writer(), "[BRAVE] ", log.LstdFlags)}
}

func (a *Adapter) Source() models.Source { return models.SourceBrave }

func (a *Adapter) Available() bool { return a.cfg.APIKey != "" }

func (a *Adapter) Slow() bool { return false }

// Search queries Brave web search. A date range maps onto Brave's freshness
// parameter as an absolute before/after window.
func (a *Adapter) Search(ctx context.Context, query string, opts models.SearchOptions) ([]models.SearchResult, error) {
	k := helpers.ClampMax(opts.MaxResults, maxResults)

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", fmt.Sprint(k))
	if opts.DateRange != nil && (!opts.DateRange.Start.IsZero() || !opts.DateRange.End.IsZero()) {
		start, end := "", ""
		if !opts.DateRange.Start.IsZero() {
			start = opts.DateRange.Start.Format("2006-01-02")
		}
		if !opts.DateRange.End.IsZero() {
			end = opts.DateRange.End.Format("2006-01-02")
		}
		params.Set("freshness", fmt.Sprintf("%sto%s", start, end))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		a.logger.Printf("build request: %v", err)
		return nil, nil
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", a.cfg.APIKey)

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
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
				PageAge     string `json:"page_age"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		a.logger.Printf("decode response: %v", err)
		return nil, nil
	}

	total := len(raw.Web.Results)
	if total > k {
		total = k
	}
	out := make([]models.SearchResult, 0, total)
	for i, r := range raw.Web.Results {
		if i >= k {
			break
		}
		res := models.SearchResult{
			ID:           fmt.Sprintf("brave-%s", uuid.New().String()),
			Source:       models.SourceBrave,
			Title:        r.Title,
			Snippet:      r.Description,
			URL:          r.URL,
			Score:        helpers.RankScore(i+1, total),
			OriginalRank: i + 1,
			ContentType:  helpers.InferContentType(r.URL),
			Metadata:     models.ResultMetadata{Domain: helpers.Domain(r.URL)},
		}
		if ts, err := parsePageAge(r.PageAge); err == nil {
			res.PublishedAt = &ts
		}
		out = append(out, res)
	}
	return helpers.FilterContentTypes(out, opts.ContentTypes), nil
}
