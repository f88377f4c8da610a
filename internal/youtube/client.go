// Package youtube enriches parsed tracks with a playable video link and
// thumbnail from the YouTube Data API. Lookups fan out with bounded
// concurrency and are cached per (artist, track) pair, including confirmed
// misses so known-empty queries are not retried against the API quota.
package youtube

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/mixscout/mixscout/internal/cache"
	"github.com/mixscout/mixscout/internal/domain"
)

const (
	defaultEndpoint      = "https://www.googleapis.com/youtube/v3/search"
	maxConcurrentLookups = 10
	requestTimeout       = 10 * time.Second

	// notFoundMarker is the cached value for pairs the API confirmed have
	// no match. Distinct from an absent key, which means "never asked".
	notFoundMarker = "{}"
)

// VideoResult is the enrichment payload for one track.
type VideoResult struct {
	Link      string `json:"link"`
	Thumbnail string `json:"thumbnail"`
}

// Client calls the YouTube search API. Endpoint and HTTPClient are
// exported so tests can substitute doubles.
type Client struct {
	APIKey     string
	HTTPClient *http.Client
	Endpoint   string
	Cache      cache.Cache
}

func New(apiKey string, c cache.Cache) *Client {
	return &Client{
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: requestTimeout},
		Endpoint:   defaultEndpoint,
		Cache:      c,
	}
}

// EnrichTracks attaches link/thumbnail to each track that has a known
// video, leaving the fields empty otherwise. A missing API key degrades
// every track to empty fields without error. Lookups run concurrently up
// to a fixed ceiling.
func (c *Client) EnrichTracks(ctx context.Context, tracks []domain.Track) []domain.Track {
	if c.APIKey == "" || len(tracks) == 0 {
		return tracks
	}

	sem := semaphore.NewWeighted(maxConcurrentLookups)
	var wg sync.WaitGroup
	for i := range tracks {
		wg.Add(1)
		go func(track *domain.Track) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			if result, found := c.lookup(ctx, track.Artist, track.Track); found {
				track.Link = result.Link
				track.Thumbnail = result.Thumbnail
			}
		}(&tracks[i])
	}
	wg.Wait()
	return tracks
}

// lookup consults the pair cache before calling the API. API failures
// degrade to "not found" without poisoning the cache.
func (c *Client) lookup(ctx context.Context, artist, track string) (VideoResult, bool) {
	key := pairKey(artist, track)

	if c.Cache != nil {
		if raw, ok, err := c.Cache.Get(ctx, key); err == nil && ok {
			if raw == notFoundMarker {
				return VideoResult{}, false
			}
			var cached VideoResult
			if json.Unmarshal([]byte(raw), &cached) == nil && cached.Link != "" {
				return cached, true
			}
		}
	}

	result, found, err := c.search(ctx, artist+" "+track)
	if err != nil {
		slog.Warn("YouTube lookup failed", "artist", artist, "track", track, "error", err)
		return VideoResult{}, false
	}

	if c.Cache != nil {
		value := notFoundMarker
		if found {
			if data, err := json.Marshal(result); err == nil {
				value = string(data)
			}
		}
		if err := c.Cache.Set(ctx, key, value, cache.YouTubeTTL); err != nil {
			slog.Debug("Failed to cache YouTube lookup", "error", err)
		}
	}
	return result, found
}

func (c *Client) search(ctx context.Context, query string) (VideoResult, bool, error) {
	params := url.Values{
		"part":            {"snippet"},
		"q":               {query},
		"key":             {c.APIKey},
		"type":            {"video"},
		"maxResults":      {"1"},
		"videoEmbeddable": {"true"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return VideoResult{}, false, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return VideoResult{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return VideoResult{}, false, fmt.Errorf("youtube search error: %s", resp.Status)
	}

	var body struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet struct {
				Thumbnails map[string]struct {
					URL string `json:"url"`
				} `json:"thumbnails"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return VideoResult{}, false, err
	}

	if len(body.Items) == 0 {
		return VideoResult{}, false, nil
	}

	item := body.Items[0]
	return VideoResult{
		Link:      "https://www.youtube.com/watch?v=" + item.ID.VideoID,
		Thumbnail: pickThumbnail(item.Snippet.Thumbnails),
	}, true, nil
}

// pickThumbnail prefers the standard qualities in a fixed order so results
// are deterministic, falling back to whatever the API sent.
func pickThumbnail(thumbnails map[string]struct {
	URL string `json:"url"`
}) string {
	for _, quality := range []string{"default", "medium", "high"} {
		if thumb, ok := thumbnails[quality]; ok && thumb.URL != "" {
			return thumb.URL
		}
	}
	for _, thumb := range thumbnails {
		if thumb.URL != "" {
			return thumb.URL
		}
	}
	return ""
}

// pairKey hashes the case- and whitespace-normalized pair so equivalent
// spellings share one cache entry.
func pairKey(artist, track string) string {
	normalized := normalizePair(artist) + "|" + normalizePair(track)
	sum := sha1.Sum([]byte(normalized))
	return cache.YouTubeKeyPrefix + hex.EncodeToString(sum[:])
}

func normalizePair(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
