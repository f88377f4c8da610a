package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixscout/mixscout/internal/cache"
	"github.com/mixscout/mixscout/internal/domain"
)

type stubLocator struct {
	byQuery map[string][]domain.Candidate
	queries []string
	panics  bool
}

func (s *stubLocator) Locate(_ context.Context, query string) []domain.Candidate {
	if s.panics {
		panic("locator exploded")
	}
	s.queries = append(s.queries, query)
	return s.byQuery[query]
}

type stubPages struct {
	body  string
	err   error
	calls int
}

func (s *stubPages) FetchPage(context.Context, string) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.body), nil
}

type stubEnricher struct {
	calls int
}

func (s *stubEnricher) EnrichTracks(_ context.Context, tracks []domain.Track) []domain.Track {
	s.calls++
	for i := range tracks {
		tracks[i].Link = "https://www.youtube.com/watch?v=stub"
	}
	return tracks
}

const matchingTitle = "2014-05-23 - Leon Vynehall - Essential Mix"

func fixtures() (*stubLocator, *stubPages, *stubEnricher) {
	locator := &stubLocator{byQuery: map[string][]domain.Candidate{
		"leon vynehall essential mix": {
			{Title: matchingTitle, URL: "https://www.mixesdb.com/w/page"},
		},
	}}
	pages := &stubPages{body: `<ol>
		<li>[01] Leon Vynehall - It's Just</li>
		<li>[02] Four Tet - Angel Echoes</li>
	</ol>`}
	return locator, pages, &stubEnricher{}
}

func TestResolveHappyPath(t *testing.T) {
	locator, pages, enricher := fixtures()
	r := NewResolver(locator, pages, enricher, cache.NewMemory())

	result := r.Resolve(context.Background(), "leon vynehall essential mix")
	require.True(t, result.Success)
	require.Len(t, result.Results, 1)

	entry := result.Results[0]
	assert.Equal(t, matchingTitle, entry.Title)
	assert.GreaterOrEqual(t, entry.MatchScore, 50.0)
	require.Len(t, entry.Tracks, 2)
	assert.Equal(t, "Leon Vynehall", entry.Tracks[0].Artist)
	assert.Equal(t, "It's Just", entry.Tracks[0].Track)
	assert.Equal(t, "https://www.youtube.com/watch?v=stub", entry.Tracks[0].Link)
	assert.Equal(t, 1, enricher.calls)
}

func TestResolveServesRepeatFromCache(t *testing.T) {
	locator, pages, enricher := fixtures()
	r := NewResolver(locator, pages, enricher, cache.NewMemory())

	first := r.Resolve(context.Background(), "leon vynehall essential mix")
	second := r.Resolve(context.Background(), "leon vynehall essential mix")

	assert.Equal(t, first, second)
	assert.Len(t, locator.queries, 1, "second resolve must not hit the origin")
	assert.Equal(t, 1, pages.calls)
	assert.Equal(t, 1, enricher.calls)
}

func TestResolveWithoutCache(t *testing.T) {
	locator, pages, enricher := fixtures()
	r := NewResolver(locator, pages, enricher, nil)

	result := r.Resolve(context.Background(), "leon vynehall essential mix")
	require.True(t, result.Success)
	require.Len(t, result.Results, 1)
}

func TestResolveCorruptCacheEntryIsMiss(t *testing.T) {
	locator, pages, enricher := fixtures()
	store := cache.NewMemory()
	require.NoError(t, store.Set(context.Background(),
		cache.TracklistKeyPrefix+"leon vynehall essential mix", "{not json", cache.TracklistTTL))

	r := NewResolver(locator, pages, enricher, store)
	result := r.Resolve(context.Background(), "leon vynehall essential mix")
	require.True(t, result.Success)
	require.Len(t, result.Results, 1, "corrupt entry must fall through to a fresh resolve")
}

func TestResolveNoCandidates(t *testing.T) {
	locator := &stubLocator{byQuery: map[string][]domain.Candidate{}}
	r := NewResolver(locator, &stubPages{}, &stubEnricher{}, cache.NewMemory())

	result := r.Resolve(context.Background(), "nothing matches this")
	require.True(t, result.Success)
	assert.Empty(t, result.Results)
	assert.NotNil(t, result.Results, "empty outcome still serializes as []")
}

func TestResolveBelowThreshold(t *testing.T) {
	locator := &stubLocator{byQuery: map[string][]domain.Candidate{
		"leon vynehall essential mix": {
			{Title: "Completely Unrelated Gardening Tips", URL: "https://example.com/x"},
		},
	}}
	pages := &stubPages{}
	r := NewResolver(locator, pages, &stubEnricher{}, cache.NewMemory())

	result := r.Resolve(context.Background(), "leon vynehall essential mix")
	require.True(t, result.Success)
	assert.Empty(t, result.Results)
	assert.Equal(t, 0, pages.calls, "no page fetch without a confident match")
}

func TestResolveAttributionFallback(t *testing.T) {
	locator := &stubLocator{byQuery: map[string][]domain.Candidate{
		"essential mix": {
			{Title: "Essential Mix 2020-01-01", URL: "https://www.mixesdb.com/w/em"},
		},
	}}
	pages := &stubPages{body: `<ol><li>A - B</li></ol>`}
	r := NewResolver(locator, pages, &stubEnricher{}, cache.NewMemory())

	result := r.Resolve(context.Background(), "essential mix by pete tong")
	require.True(t, result.Success)
	require.Len(t, result.Results, 1)
	assert.Equal(t, []string{"essential mix by pete tong", "essential mix"}, locator.queries)
}

func TestResolvePageFetchFailure(t *testing.T) {
	locator, pages, enricher := fixtures()
	pages.err = errors.New("origin down")
	r := NewResolver(locator, pages, enricher, cache.NewMemory())

	result := r.Resolve(context.Background(), "leon vynehall essential mix")
	require.True(t, result.Success, "page failure degrades, it does not fail the request")
	require.Len(t, result.Results, 1)
	assert.Equal(t, matchingTitle, result.Results[0].Title)
	assert.Empty(t, result.Results[0].Tracks)
	assert.NotNil(t, result.Results[0].Tracks)
	assert.Equal(t, 0, enricher.calls)
}

func TestResolvePageWithoutTracklist(t *testing.T) {
	locator, pages, enricher := fixtures()
	pages.body = `<html><body><p>No ordered list here.</p></body></html>`
	r := NewResolver(locator, pages, enricher, cache.NewMemory())

	result := r.Resolve(context.Background(), "leon vynehall essential mix")
	require.True(t, result.Success)
	require.Len(t, result.Results, 1)
	assert.Empty(t, result.Results[0].Tracks)
	assert.Equal(t, 0, enricher.calls)
}

func TestResolveRecoversFromPanic(t *testing.T) {
	locator := &stubLocator{panics: true}
	r := NewResolver(locator, &stubPages{}, &stubEnricher{}, cache.NewMemory())

	result := r.Resolve(context.Background(), "anything")
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "locator exploded")
}

func TestMatches(t *testing.T) {
	locator := &stubLocator{byQuery: map[string][]domain.Candidate{
		"essential mix": {
			{Title: "Essential Mix 2020-01-01", URL: "https://example.com/1"},
			{Title: "Essential Mix 2021-06-12", URL: "https://example.com/2"},
			{Title: "Gardening Tips Weekly", URL: "https://example.com/3"},
		},
	}}
	r := NewResolver(locator, &stubPages{}, &stubEnricher{}, cache.NewMemory())

	ranked := r.Matches(context.Background(), "essential mix", 5)
	require.Len(t, ranked, 2)
	for _, candidate := range ranked {
		assert.GreaterOrEqual(t, candidate.MatchScore, 30.0)
	}
}

func TestStripAttribution(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"essential mix by pete tong", "essential mix"},
		{"Essential Mix BY Pete Tong", "Essential Mix"},
		{"no attribution here", "no attribution here"},
		{"bypass road mix", "bypass road mix"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, stripAttribution(tc.input), "input=%q", tc.input)
	}
}
