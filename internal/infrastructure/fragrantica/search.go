// Package fragrantica extracts fragrance data from captured fragrance
// encyclopedia pages. Every extractor is best effort: a miss leaves the field
// unset and never fails the parse.
package fragrantica

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/scentpair/backend/internal/domain"
)

// SiteURL is the origin all parsed links point at
const SiteURL = "https://www.fragrantica.com"

// MaxSearchResults caps the parsed search result list
const MaxSearchResults = 20

var (
	// ![](https://fimgs.net/mdimg/perfume/m.12345.jpg)
	thumbnailPattern = regexp.MustCompile(`(?i)!\[\]\((https://fimgs\.net/mdimg/perfume/m\.(\d+)\.jpg)\)`)

	// image line, then [Name](perfume link), then a brand line
	resultBlockPattern = regexp.MustCompile(`(?i)!\[\]\((https://fimgs\.net/mdimg/perfume/m\.(\d+)\.jpg)\)\s*\n\s*\[([^\]]+)\]\(https://www\.fragrantica\.com/perfume/([^/]+)/([^)]+)\.html\)\s*\n\s*([A-Za-z][^\n]*)`)

	// [Name](https://www.fragrantica.com/perfume/Brand/Name-12345.html)
	resultLinkPattern = regexp.MustCompile(`(?i)\[([^\]]+)\]\(https://www\.fragrantica\.com/perfume/([^/]+)/([^)]+)-(\d+)\.html\)`)
)

// SearchURL builds the legacy-layout search page URL for a query
func SearchURL(query string) string {
	return SiteURL + "/search/?display=old&query=" + url.QueryEscape(query)
}

// AbsoluteURL resolves a site-relative link
func AbsoluteURL(link string) string {
	if strings.HasPrefix(link, "http") {
		return link
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return SiteURL + link
}

// ParseSearchResults extracts search hits from a captured results page.
// The structured block layout is tried first; when it yields nothing, bare
// perfume links are used with thumbnails recovered by id.
func ParseSearchResults(markdown string) []domain.SearchHit {
	results := parseResultBlocks(markdown)
	if len(results) == 0 {
		results = parseResultLinks(markdown, thumbnailsByID(markdown))
	}
	return dedupeHits(results, MaxSearchResults)
}

func parseResultBlocks(markdown string) []domain.SearchHit {
	var results []domain.SearchHit
	for _, m := range resultBlockPattern.FindAllStringSubmatch(markdown, -1) {
		imageURL, id, displayName, brandSlug, nameSlug, brandLine := m[1], m[2], m[3], m[4], m[5], m[6]

		brand := strings.TrimSpace(brandLine)
		if brand == "" {
			brand = slugToWords(brandSlug)
		}
		name := unescape(strings.TrimSpace(displayName))
		if name == "" || brand == "" {
			continue
		}

		results = append(results, domain.SearchHit{
			ID:       id,
			Name:     name,
			Brand:    brand,
			ImageURL: imageURL,
			URL:      SiteURL + "/perfume/" + brandSlug + "/" + nameSlug + ".html",
		})
	}
	return results
}

func parseResultLinks(markdown string, thumbnails map[string]string) []domain.SearchHit {
	var results []domain.SearchHit
	for _, m := range resultLinkPattern.FindAllStringSubmatch(markdown, -1) {
		displayName, brandSlug, nameSlug, id := m[1], m[2], m[3], m[4]

		brand := slugToWords(brandSlug)
		name := unescape(strings.TrimSpace(displayName))
		if name == "" || brand == "" {
			continue
		}

		results = append(results, domain.SearchHit{
			ID:       id,
			Name:     name,
			Brand:    brand,
			ImageURL: thumbnails[id],
			URL:      SiteURL + "/perfume/" + brandSlug + "/" + nameSlug + "-" + id + ".html",
		})
	}
	return results
}

func thumbnailsByID(markdown string) map[string]string {
	thumbnails := make(map[string]string)
	for _, m := range thumbnailPattern.FindAllStringSubmatch(markdown, -1) {
		thumbnails[m[2]] = m[1]
	}
	return thumbnails
}

func dedupeHits(hits []domain.SearchHit, limit int) []domain.SearchHit {
	seen := make(map[string]bool, len(hits))
	results := make([]domain.SearchHit, 0, min(len(hits), limit))
	for _, h := range hits {
		key := strings.ToLower(h.ID)
		if seen[key] {
			continue
		}
		seen[key] = true
		results = append(results, h)
		if len(results) == limit {
			break
		}
	}
	return results
}

func slugToWords(slug string) string {
	return unescape(strings.ReplaceAll(slug, "-", " "))
}

func unescape(s string) string {
	if decoded, err := url.PathUnescape(s); err == nil {
		return decoded
	}
	return s
}
