// Package youtube implements video search via the YouTube Data API v3.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/mohammad-safakhou/searchfusion/config"
	"github.com/mohammad-safakhou/searchfusion/internal/helpers"
	"github.com/mohammad-safakhou/searchfusion/models"
)

const maxResults = 50

type Adapter struct {
	cfg    config.YouTubeConfig
	logger *log.Logger
}

func New(cfg config.YouTubeConfig) *Adapter {
	return &Adapter{cfg: cfg, logger: log.New(log.Writer(), "[YOUTUBE] ", log.LstdFlags)}
}

func (a *Adapter) Source() models.Source { return models.SourceYouTube }

func (a *Adapter) Available() bool { return a.cfg.APIKey != "" }

func (a *Adapter) Slow() bool { return false }

// Search queries the Data API search.list endpoint for videos. YouTube orders
// by its own relevance but exposes no score, so the rank heuristic applies.
func (a *Adapter) Search(ctx context.Context, query string, opts models.SearchOptions) ([]models.SearchResult, error) {
	k := helpers.ClampMax(opts.MaxResults, maxResults)

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("q", query)
	params.Set("maxResults", fmt.Sprint(k))
	params.Set("key", a.cfg.APIKey)
	if opts.DateRange != nil {
		if !opts.DateRange.Start.IsZero() {
			params.Set("publishedAfter", opts.DateRange.Start.UTC().Format(time.RFC3339))
		}
		if !opts.DateRange.End.IsZero() {
			params.Set("publishedBefore", opts.DateRange.End.UTC().Format(time.RFC3339))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		a.logger.Printf("build request: %v", err)
		return nil, nil
	}
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
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet struct {
				Title        string `json:"title"`
				Description  string `json:"description"`
				ChannelTitle string `json:"channelTitle"`
				PublishedAt  string `json:"publishedAt"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		a.logger.Printf("decode response: %v", err)
		return nil, nil
	}

	total := len(raw.Items)
	if total > k {
		total = k
	}
	out := make([]models.SearchResult, 0, total)
	for i, item := range raw.Items {
		if i >= k {
			break
		}
		watchURL := "https://www.youtube.com/watch?v=" + item.ID.VideoID
		res := models.SearchResult{
			ID:           "youtube-" + item.ID.VideoID,
			Source:       models.SourceYouTube,
			Title:        item.Snippet.Title,
			Snippet:      item.Snippet.Description,
			URL:          watchURL,
			Score:        helpers.RankScore(i+1, total),
			OriginalRank: i + 1,
			ContentType:  helpers.InferContentType(watchURL),
			Author:       item.Snippet.ChannelTitle,
			Metadata:     models.ResultMetadata{Domain: "www.youtube.com"},
		}
		if ts, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			res.PublishedAt = &ts
		}
		out = append(out, res)
	}
	return helpers.FilterContentTypes(out, opts.ContentTypes), nil
}
