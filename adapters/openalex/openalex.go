// Package openalex implements academic search via the OpenAlex works API.
package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mohammad-safakhou/searchfusion/config"
	"github.com/mohammad-safakhou/searchfusion/internal/helpers"
	"github.com/mohammad-safakhou/searchfusion/models"
)

const maxResults = 25

type Adapter struct {
	cfg    config.OpenAlexConfig
	logger *log.Logger
}

func New(cfg config.OpenAlexConfig) *Adapter {
	return &Adapter{cfg: cfg, logger: log.New(log.Writer(), "[OPENALEX] ", log.LstdFlags)}
}

func (a *Adapter) Source() models.Source { return models.SourceOpenAlex }

// Available requires a mailto address; OpenAlex throttles anonymous clients
// hard enough that running without one is not useful.
func (a *Adapter) Available() bool { return a.cfg.MailTo != "" }

func (a *Adapter) Slow() bool { return true }

func (a *Adapter) Search(ctx context.Context, query string, opts models.SearchOptions) ([]models.SearchResult, error) {
	k := helpers.ClampMax(opts.MaxResults, maxResults)

	params := url.Values{}
	params.Set("search", query)
	params.Set("per-page", fmt.Sprint(k))
	params.Set("mailto", a.cfg.MailTo)
	var filters []string
	if opts.DateRange != nil {
		if !opts.DateRange.Start.IsZero() {
			filters = append(filters, "from_publication_date:"+opts.DateRange.Start.Format("2006-01-02"))
		}
		if !opts.DateRange.End.IsZero() {
			filters = append(filters, "to_publication_date:"+opts.DateRange.End.Format("2006-01-02"))
		}
	}
	if len(filters) > 0 {
		params.Set("filter", strings.Join(filters, ","))
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
		Results []struct {
			ID              string       `json:"id"`
			Title           string       `json:"title"`
			DOI             string       `json:"doi"`
			PublicationDate string       `json:"publication_date"`
			RelevanceScore  float64      `json:"relevance_score"`
			Authorships     []authorship `json:"authorships"`
			PrimaryLocation struct {
				LandingPageURL string `json:"landing_page_url"`
			} `json:"primary_location"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		a.logger.Printf("decode response: %v", err)
		return nil, nil
	}

	out := make([]models.SearchResult, 0, len(raw.Results))
	for i, w := range raw.Results {
		if i >= k {
			break
		}
		link := w.PrimaryLocation.LandingPageURL
		if link == "" {
			link = w.DOI
		}
		if link == "" {
			link = w.ID
		}
		res := models.SearchResult{
			ID:           "openalex-" + strings.TrimPrefix(w.ID, "https://openalex.org/"),
			Source:       models.SourceOpenAlex,
			Title:        w.Title,
			Snippet:      fmt.Sprintf("Published %s", w.PublicationDate),
			URL:          link,
			Score:        w.RelevanceScore,
			OriginalRank: i + 1,
			ContentType:  helpers.InferContentType(link),
			Author:       firstAuthor(w.Authorships),
			Metadata:     models.ResultMetadata{Domain: helpers.Domain(link)},
		}
		if ts, err := time.Parse("2006-01-02", w.PublicationDate); err == nil {
			res.PublishedAt = &ts
		}
		out = append(out, res)
	}
	return helpers.FilterContentTypes(out, opts.ContentTypes), nil
}

type authorship struct {
	Author struct {
		DisplayName string `json:"display_name"`
	} `json:"author"`
}

func firstAuthor(authorships []authorship) string {
	if len(authorships) == 0 {
		return ""
	}
	return authorships[0].Author.DisplayName
}
