package models

import (
	"errors"
	"time"
)

// ErrCacheMiss is returned when a cache lookup finds no fresh entry.
var ErrCacheMiss = errors.New("cache miss")

// ErrUnsupportedSource is returned when a requested source has no registered adapter.
var ErrUnsupportedSource = errors.New("unsupported source")

// Source identifies an external search provider.
type Source string

const (
	SourceTavily   Source = "tavily"
	SourceLinkup   Source = "linkup"
	SourceBrave    Source = "brave"
	SourceYouTube  Source = "youtube"
	SourceSEC      Source = "sec"
	SourceOpenAlex Source = "openalex"
)

// AllSources lists every known provider in fixed priority order. The order is
// also the tie-break order used by the fuser.
func AllSources() []Source {
	return []Source{SourceTavily, SourceLinkup, SourceBrave, SourceYouTube, SourceSEC, SourceOpenAlex}
}

func (s Source) Valid() bool {
	switch s {
	case SourceTavily, SourceLinkup, SourceBrave, SourceYouTube, SourceSEC, SourceOpenAlex:
		return true
	}
	return false
}

// ContentType classifies what a result URL points at.
type ContentType string

const (
	ContentTypeText   ContentType = "text"
	ContentTypeVideo  ContentType = "video"
	ContentTypeImage  ContentType = "image"
	ContentTypePDF    ContentType = "pdf"
	ContentTypeFiling ContentType = "filing"
	ContentTypeNews   ContentType = "news"
)

// SearchMode controls how much work a search is allowed to do.
type SearchMode string

const (
	ModeFast          SearchMode = "fast"
	ModeBalanced      SearchMode = "balanced"
	ModeComprehensive SearchMode = "comprehensive"
)

func (m SearchMode) Valid() bool {
	switch m {
	case ModeFast, ModeBalanced, ModeComprehensive:
		return true
	}
	return false
}

// DateRange restricts results to a publication window. Either bound may be zero.
type DateRange struct {
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`
}

func (d DateRange) IsZero() bool { return d.Start.IsZero() && d.End.IsZero() }

// SearchOptions carries per-call knobs handed to adapters.
type SearchOptions struct {
	MaxResults   int           `json:"maxResults"`
	Sources      []Source      `json:"sources,omitempty"`
	DateRange    *DateRange    `json:"dateRange,omitempty"`
	ContentTypes []ContentType `json:"contentTypes,omitempty"`
}

// ResultMetadata holds well-known optional fields plus an open extension map.
type ResultMetadata struct {
	Domain           string            `json:"domain,omitempty"`
	SecondarySources []Source          `json:"secondarySources,omitempty"`
	Extra            map[string]string `json:"extra,omitempty"`
}

// SearchResult is one normalized hit from a single provider. Adapters return
// results immutable; the fuser copies before blending.
type SearchResult struct {
	ID           string         `json:"id"`
	Source       Source         `json:"source"`
	Title        string         `json:"title"`
	Snippet      string         `json:"snippet"`
	URL          string         `json:"url,omitempty"`
	Score        float64        `json:"score"`
	OriginalRank int            `json:"originalRank"`
	ContentType  ContentType    `json:"contentType"`
	PublishedAt  *time.Time     `json:"publishedAt,omitempty"`
	Author       string         `json:"author,omitempty"`
	Metadata     ResultMetadata `json:"metadata"`
}

// SourceError records a hard failure observed at the orchestrator boundary.
type SourceError struct {
	Source Source `json:"source"`
	Error  string `json:"error"`
}

// SearchResponse is one fused answer, assembled exactly once per orchestrator
// run. SourcesQueried lists every adapter attempted whether or not it
// contributed results.
type SearchResponse struct {
	Results           []SearchResult   `json:"results"`
	TotalBeforeFusion int              `json:"totalBeforeFusion"`
	Mode              SearchMode       `json:"mode"`
	SourcesQueried    []Source         `json:"sourcesQueried"`
	Timing            map[Source]int64 `json:"timing"`
	TotalTimeMs       int64            `json:"totalTimeMs"`
	Reranked          bool             `json:"reranked"`
	Errors            []SourceError    `json:"errors,omitempty"`
}
