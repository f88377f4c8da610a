// Package service orchestrates the resolution pipeline: cache check,
// candidate location, fuzzy selection, page fetch, track extraction and
// enrichment. Every internal failure is degraded; the resolver never
// returns an error to its caller.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/mixscout/mixscout/internal/cache"
	"github.com/mixscout/mixscout/internal/domain"
	"github.com/mixscout/mixscout/internal/match"
	"github.com/mixscout/mixscout/internal/tracklist"
)

// Locator discovers candidate pages for a query.
type Locator interface {
	Locate(ctx context.Context, query string) []domain.Candidate
}

// PageFetcher downloads the HTML of a selected candidate page.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) ([]byte, error)
}

// Enricher attaches video links to parsed tracks.
type Enricher interface {
	EnrichTracks(ctx context.Context, tracks []domain.Track) []domain.Track
}

type Resolver struct {
	locator  Locator
	pages    PageFetcher
	enricher Enricher
	cache    cache.Cache
	minScore float64
}

func NewResolver(locator Locator, pages PageFetcher, enricher Enricher, c cache.Cache) *Resolver {
	return &Resolver{
		locator:  locator,
		pages:    pages,
		enricher: enricher,
		cache:    c,
		minScore: match.MinBestScore,
	}
}

// Resolve returns the tracklist result for a query, consulting the result
// cache first. Cache decode failures count as misses; cache write failures
// are logged and ignored. Panics from deeper layers are converted into a
// failed Result rather than crashing the request.
func (r *Resolver) Resolve(ctx context.Context, query string) (result domain.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Unexpected failure while resolving query", "query", query, "panic", rec)
			result = domain.Result{Success: false, Error: fmt.Sprintf("unexpected error: %v", rec)}
		}
	}()

	key := cache.TracklistKeyPrefix + query
	if r.cache != nil {
		if raw, ok, err := r.cache.Get(ctx, key); err == nil && ok {
			var cached domain.Result
			if json.Unmarshal([]byte(raw), &cached) == nil {
				slog.Debug("Tracklist cache hit", "query", query)
				return cached
			}
			slog.Debug("Discarding corrupt cache entry", "query", query)
		}
	}

	result = r.resolve(ctx, query)

	if result.Success && r.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := r.cache.Set(ctx, key, string(data), cache.TracklistTTL); err != nil {
				slog.Warn("Failed to cache tracklist result", "query", query, "error", err)
			}
		}
	}
	return result
}

func (r *Resolver) resolve(ctx context.Context, query string) domain.Result {
	candidates, effective := r.locateWithFallback(ctx, query)
	if len(candidates) == 0 {
		slog.Info("No candidates found", "query", query)
		return emptyResult()
	}

	best, ok := match.FindBestMatch(effective, candidates, r.minScore)
	if !ok {
		slog.Info("No candidate above score threshold", "query", query, "candidates", len(candidates))
		return emptyResult()
	}

	entry := domain.SearchResult{
		Title:      best.Title,
		URL:        best.URL,
		Tracks:     []domain.Track{},
		MatchScore: best.MatchScore,
	}

	page, err := r.pages.FetchPage(ctx, best.URL)
	if err != nil {
		slog.Warn("Failed to fetch candidate page", "url", best.URL, "error", err)
		return domain.Result{Success: true, Results: []domain.SearchResult{entry}}
	}

	tracks, err := tracklist.Extract(page)
	if err != nil {
		if !errors.Is(err, tracklist.ErrNoTracklist) {
			slog.Warn("Tracklist extraction failed", "url", best.URL, "error", err)
		}
		tracks = nil
	}

	if len(tracks) > 0 {
		tracks = r.enricher.EnrichTracks(ctx, tracks)
		entry.Tracks = tracks
	}

	return domain.Result{Success: true, Results: []domain.SearchResult{entry}}
}

// Matches exposes the looser top-N ranking without fetching any page.
func (r *Resolver) Matches(ctx context.Context, query string, topN int) []domain.ScoredCandidate {
	candidates, effective := r.locateWithFallback(ctx, query)
	return match.FindBestMatches(effective, candidates, topN, match.MinRankedScore)
}

// locateWithFallback retries candidate location with the trailing
// attribution clause stripped ("essential mix by pete tong" -> "essential
// mix") when the full query finds nothing. It also returns the query that
// produced the candidates, so scoring does not punish titles for missing
// the stripped clause.
func (r *Resolver) locateWithFallback(ctx context.Context, query string) ([]domain.Candidate, string) {
	candidates := r.locator.Locate(ctx, query)
	if len(candidates) > 0 {
		return candidates, query
	}
	if fallback := stripAttribution(query); fallback != query {
		slog.Debug("Retrying without attribution clause", "query", query, "fallback", fallback)
		return r.locator.Locate(ctx, fallback), fallback
	}
	return nil, query
}

var attributionClause = regexp.MustCompile(`(?i)\s+by\s+.*$`)

// stripAttribution drops a trailing "by <name>" clause from the query.
func stripAttribution(query string) string {
	if loc := attributionClause.FindStringIndex(query); loc != nil {
		return strings.TrimSpace(query[:loc[0]])
	}
	return query
}

func emptyResult() domain.Result {
	return domain.Result{Success: true, Results: []domain.SearchResult{}}
}
