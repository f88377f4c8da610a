// Package mixesdb turns a free-text query into candidate tracklist pages
// on MixesDB. A direct category lookup is tried first, then the wiki's
// full-text search; the resulting markup is mined with a fixed priority
// list of CSS selectors.
package mixesdb

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/mixscout/mixscout/internal/domain"
	"github.com/mixscout/mixscout/internal/fetcher"
)

// Site-specific containers first, generic link patterns last.
var resultSelectors = []string{
	"#catMixesList a",
	".linkPreviewWrapperList a",
	".mw-search-results a",
	`a[href*="mix"]`,
	`a[href*="tracklist"]`,
}

// Fetcher is the transport the locator runs on.
type Fetcher interface {
	Fetch(ctx context.Context, method, url string, opts ...fetcher.Option) ([]byte, error)
}

type Locator struct {
	baseURL string
	fetcher Fetcher
}

func New(baseURL string, f Fetcher) *Locator {
	return &Locator{baseURL: strings.TrimRight(baseURL, "/"), fetcher: f}
}

// Locate returns candidate pages for the query, deduplicated by resolved
// URL. It never fails the caller: any internal error degrades to an empty
// list.
func (l *Locator) Locate(ctx context.Context, query string) []domain.Candidate {
	body, err := l.fetcher.Fetch(ctx, http.MethodGet, l.categoryURL(query))
	if err != nil || isMissingPage(body) {
		if err != nil {
			slog.Debug("Category lookup failed, falling back to search", "query", query, "error", err)
		}
		body, err = l.fetcher.Fetch(ctx, http.MethodGet, l.searchURL(query))
		if err != nil {
			slog.Warn("MixesDB search failed", "query", query, "error", err)
			return nil
		}
	}
	return l.parseCandidates(body)
}

// categoryURL maps the query onto the wiki's category naming convention:
// words joined with underscores, each capitalized on its first letter only.
func (l *Locator) categoryURL(query string) string {
	words := strings.Fields(query)
	for i, word := range words {
		words[i] = capitalize(word)
	}
	return l.baseURL + "/w/Category:" + url.PathEscape(strings.Join(words, "_"))
}

func (l *Locator) searchURL(query string) string {
	return l.baseURL + "/w/index.php?title=Special:Search&search=" + url.QueryEscape(query)
}

func (l *Locator) parseCandidates(body []byte) []domain.Candidate {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		slog.Warn("Failed to parse MixesDB markup", "error", err)
		return nil
	}

	base, err := url.Parse(l.baseURL)
	if err != nil {
		return nil
	}

	for _, selector := range resultSelectors {
		links := doc.Find(selector)
		if links.Length() == 0 {
			continue
		}

		seen := make(map[string]struct{})
		var candidates []domain.Candidate
		links.Each(func(_ int, s *goquery.Selection) {
			href, ok := s.Attr("href")
			if !ok || href == "" || href == "#" || isUtilityLink(href) {
				return
			}
			ref, err := url.Parse(href)
			if err != nil {
				return
			}
			resolved := base.ResolveReference(ref).String()
			if _, dup := seen[resolved]; dup {
				return
			}
			title := strings.TrimSpace(s.Text())
			if title == "" {
				return
			}
			seen[resolved] = struct{}{}
			candidates = append(candidates, domain.Candidate{Title: title, URL: resolved})
		})

		if len(candidates) > 0 {
			slog.Debug("Found candidates", "selector", selector, "count", len(candidates))
			return candidates
		}
	}
	return nil
}

// isUtilityLink filters wiki navigation, category and file links that can
// never be tracklist pages themselves.
func isUtilityLink(href string) bool {
	lower := strings.ToLower(href)
	return strings.Contains(lower, "category:") ||
		strings.Contains(lower, "special:") ||
		strings.Contains(lower, "file:") ||
		strings.Contains(lower, "help:") ||
		strings.Contains(lower, "action=") ||
		strings.HasPrefix(lower, "#")
}

// isMissingPage detects MediaWiki's empty-page marker on category lookups.
func isMissingPage(body []byte) bool {
	return bytes.Contains(body, []byte("noarticletext")) ||
		bytes.Contains(body, []byte("There is currently no text in this page"))
}

// capitalize upper-cases the first rune only; MediaWiki titles preserve
// the rest of the word as written.
func capitalize(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
