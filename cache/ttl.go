package cache

import (
	"strings"
	"time"
)

// Default TTL classes. Temporal queries go stale fastest; company background
// barely moves.
const (
	NewsTTL       = 6 * time.Hour
	FundingTTL    = 24 * time.Hour
	BackgroundTTL = 7 * 24 * time.Hour
	DefaultTTL    = 24 * time.Hour
)

var (
	temporalTerms   = []string{"today", "this week", "latest", "recent", "news"}
	fundingTerms    = []string{"funding", "raised", "series", "investment"}
	backgroundTerms = []string{"overview", "background", "history", "founded", "about"}
)

// TTLPolicy holds the four TTL classes. The zero value is unusable; build one
// with DefaultTTLPolicy and override fields from config as needed.
type TTLPolicy struct {
	News       time.Duration
	Funding    time.Duration
	Background time.Duration
	Default    time.Duration
}

func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{News: NewsTTL, Funding: FundingTTL, Background: BackgroundTTL, Default: DefaultTTL}
}

// For classifies a query into a TTL class. The cascade order matters: an
// explicit date filter or temporal wording wins over funding wording, which
// wins over background wording ("latest funding news" is news, not funding).
func (p TTLPolicy) For(query string, hasDateFilter bool) time.Duration {
	q := strings.ToLower(query)
	if hasDateFilter || containsAny(q, temporalTerms) {
		return p.News
	}
	if containsAny(q, fundingTerms) {
		return p.Funding
	}
	if containsAny(q, backgroundTerms) {
		return p.Background
	}
	return p.Default
}

func containsAny(q string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(q, term) {
			return true
		}
	}
	return false
}
