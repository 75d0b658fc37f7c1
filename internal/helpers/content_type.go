package helpers

import (
	"net/url"
	"strings"

	"github.com/mohammad-safakhou/searchfusion/models"
)

var videoHosts = map[string]struct{}{
	"youtube.com":     {},
	"www.youtube.com": {},
	"m.youtube.com":   {},
	"youtu.be":        {},
	"vimeo.com":       {},
	"www.vimeo.com":   {},
	"dailymotion.com": {},
	"www.twitch.tv":   {},
	"twitch.tv":       {},
	"www.tiktok.com":  {},
	"tiktok.com":      {},
}

var filingDomains = map[string]struct{}{
	"sec.gov":               {},
	"www.sec.gov":           {},
	"efts.sec.gov":          {},
	"edgar.sec.gov":         {},
	"companieshouse.gov.uk": {},
}

var newsDomains = map[string]struct{}{
	"reuters.com":         {},
	"www.reuters.com":     {},
	"bloomberg.com":       {},
	"www.bloomberg.com":   {},
	"ft.com":              {},
	"www.ft.com":          {},
	"wsj.com":             {},
	"www.wsj.com":         {},
	"nytimes.com":         {},
	"www.nytimes.com":     {},
	"bbc.com":             {},
	"www.bbc.com":         {},
	"bbc.co.uk":           {},
	"www.bbc.co.uk":       {},
	"techcrunch.com":      {},
	"www.techcrunch.com":  {},
	"theguardian.com":     {},
	"www.theguardian.com": {},
	"cnbc.com":            {},
	"www.cnbc.com":        {},
	"apnews.com":          {},
	"www.apnews.com":      {},
}

var videoExtensions = []string{".mp4", ".webm", ".mov", ".avi", ".mkv"}
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".bmp"}

// InferContentType classifies a result URL through an ordered heuristic
// cascade: video host/extension, pdf extension, image extension, known filing
// domain, known news domain, default text. First match wins.
func InferContentType(raw string) models.ContentType {
	if strings.TrimSpace(raw) == "" {
		return models.ContentTypeText
	}
	parsed, err := parseURLPreserveHost(raw)
	if err != nil {
		return models.ContentTypeText
	}
	host := strings.ToLower(parsed.Hostname())
	lowerPath := strings.ToLower(parsed.Path)

	if _, ok := videoHosts[host]; ok {
		return models.ContentTypeVideo
	}
	for _, ext := range videoExtensions {
		if strings.HasSuffix(lowerPath, ext) {
			return models.ContentTypeVideo
		}
	}
	if strings.HasSuffix(lowerPath, ".pdf") {
		return models.ContentTypePDF
	}
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lowerPath, ext) {
			return models.ContentTypeImage
		}
	}
	if _, ok := filingDomains[host]; ok {
		return models.ContentTypeFiling
	}
	if _, ok := newsDomains[host]; ok {
		return models.ContentTypeNews
	}
	return models.ContentTypeText
}

// Domain extracts the lowercased hostname from a URL, or "" when unparseable.
func Domain(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
