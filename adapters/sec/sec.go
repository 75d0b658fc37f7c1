// Package sec implements financial filings search via SEC EDGAR full-text
// search. EDGAR needs no API key but rejects requests without a descriptive
// User-Agent, so that header doubles as the availability check.
package sec

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

const maxResults = 10

type Adapter struct {
	cfg    config.SECConfig
	logger *log.Logger
}

func New(cfg config.SECConfig) *Adapter {
	return &Adapter{cfg: cfg, logger: log.New(log.Writer(), "[SEC] ", log.LstdFlags)}
}

func (a *Adapter) Source() models.Source { return models.SourceSEC }

func (a *Adapter) Available() bool { return a.cfg.UserAgent != "" }

// Slow: EDGAR full-text search routinely takes seconds; fast mode skips it.
func (a *Adapter) Slow() bool { return true }

func (a *Adapter) Search(ctx context.Context, query string, opts models.SearchOptions) ([]models.SearchResult, error) {
	k := helpers.ClampMax(opts.MaxResults, maxResults)

	params := url.Values{}
	params.Set("q", fmt.Sprintf("%q", query))
	if opts.DateRange != nil && (!opts.DateRange.Start.IsZero() || !opts.DateRange.End.IsZero()) {
		params.Set("dateRange", "custom")
		if !opts.DateRange.Start.IsZero() {
			params.Set("startdt", opts.DateRange.Start.Format("2006-01-02"))
		}
		if !opts.DateRange.End.IsZero() {
			params.Set("enddt", opts.DateRange.End.Format("2006-01-02"))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		a.logger.Printf("build request: %v", err)
		return nil, nil
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", a.cfg.UserAgent)

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
		Hits struct {
			Hits []struct {
				ID     string  `json:"_id"`
				Score  float64 `json:"_score"`
				Source struct {
					DisplayNames []string `json:"display_names"`
					FileType     string   `json:"file_type"`
					FileDate     string   `json:"file_date"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		a.logger.Printf("decode response: %v", err)
		return nil, nil
	}

	out := make([]models.SearchResult, 0, len(raw.Hits.Hits))
	for i, hit := range raw.Hits.Hits {
		if i >= k {
			break
		}
		filer := ""
		if len(hit.Source.DisplayNames) > 0 {
			filer = hit.Source.DisplayNames[0]
		}
		res := models.SearchResult{
			ID:           "sec-" + hit.ID,
			Source:       models.SourceSEC,
			Title:        fmt.Sprintf("%s %s", filer, hit.Source.FileType),
			Snippet:      fmt.Sprintf("%s filing %s filed %s", filer, hit.Source.FileType, hit.Source.FileDate),
			URL:          filingURL(hit.ID),
			Score:        hit.Score,
			OriginalRank: i + 1,
			ContentType:  models.ContentTypeFiling,
			Author:       filer,
			Metadata:     models.ResultMetadata{Domain: "www.sec.gov"},
		}
		if ts, err := time.Parse("2006-01-02", hit.Source.FileDate); err == nil {
			res.PublishedAt = &ts
		}
		out = append(out, res)
	}
	return helpers.FilterContentTypes(out, opts.ContentTypes), nil
}

// filingURL reconstructs the archive URL from an EDGAR hit id of the form
// "accession:document".
func filingURL(id string) string {
	parts := strings.SplitN(id, ":", 2)
	if len(parts) != 2 {
		return "https://www.sec.gov/cgi-bin/srqsb?text=" + url.QueryEscape(id)
	}
	accession := strings.ReplaceAll(parts[0], "-", "")
	return fmt.Sprintf("https://www.sec.gov/Archives/edgar/data/%s/%s", accession, parts[1])
}
