package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixscout/mixscout/internal/domain"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Leon Vynehall - Essential Mix", "leon vynehall essential mix"},
		{"  Multiple   Spaces  ", "multiple spaces"},
		{"Hyphen-ated, comma'd!", "hyphen ated commad"},
		{"2014-05-23 Solid Steel", "2014 05 23 solid steel"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.input))
		})
	}
}

func TestKeywords(t *testing.T) {
	keywords := Keywords("the essential mix by Pete Tong")
	// Stop words ("the", "by") and short tokens are dropped.
	assert.Equal(t, []string{"essential", "mix", "pete", "tong"}, keywords)

	assert.Empty(t, Keywords("by the an"))
	assert.Empty(t, Keywords(""))
}

func TestScoreBounds(t *testing.T) {
	pairs := [][2]string{
		{"leon vynehall francis inferno", "2014-05-23 - Leon Vynehall, Francis Inferno Orchestra - Solid Steel"},
		{"essential mix", "Some Totally Unrelated Page"},
		{"", "anything"},
		{"anything", ""},
		{"a b c", "?"},
		{"query with many words that will not all appear", "short title"},
	}

	for _, pair := range pairs {
		score := Score(pair[0], pair[1])
		assert.GreaterOrEqual(t, score, 0.0, "query=%q title=%q", pair[0], pair[1])
		assert.LessOrEqual(t, score, 100.0, "query=%q title=%q", pair[0], pair[1])
	}
}

func TestScoreExactNormalizedMatch(t *testing.T) {
	query := "Essential Mix, Pete-Tong"
	score := Score(query, Normalize(query))
	assert.GreaterOrEqual(t, score, 95.0)
}

func TestScoreKeywordGating(t *testing.T) {
	query := "essential mix"
	withBoth := Score(query, "Essential Mix 2020-01-01")
	missingOne := Score(query, "Essential Show 2020-01-01")
	assert.Greater(t, withBoth, missingOne)
}

func TestFindBestMatch(t *testing.T) {
	candidates := []domain.Candidate{
		{Title: "2014-05-23 - Leon Vynehall, Francis Inferno Orchestra - Solid Steel", URL: "https://example.com/a"},
		{Title: "Some Other Mix", URL: "https://example.com/b"},
		{Title: "", URL: "https://example.com/empty"},
	}

	best, ok := FindBestMatch("leon vynehall francis inferno", candidates, MinBestScore)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/a", best.URL)
	assert.GreaterOrEqual(t, best.MatchScore, MinBestScore)
}

func TestFindBestMatchBelowThreshold(t *testing.T) {
	candidates := []domain.Candidate{
		{Title: "Completely Unrelated Gardening Tips", URL: "https://example.com/x"},
	}

	_, ok := FindBestMatch("leon vynehall francis inferno", candidates, MinBestScore)
	assert.False(t, ok)
}

func TestFindBestMatchEmptyInput(t *testing.T) {
	_, ok := FindBestMatch("query", nil, MinBestScore)
	assert.False(t, ok)

	_, ok = FindBestMatch("   ", []domain.Candidate{{Title: "t", URL: "u"}}, MinBestScore)
	assert.False(t, ok)
}

func TestFindBestMatches(t *testing.T) {
	candidates := []domain.Candidate{
		{Title: "Essential Mix 2020 Pete Tong", URL: "https://example.com/1"},
		{Title: "Essential Mix 2021", URL: "https://example.com/2"},
		{Title: "Unrelated Gardening Tips Weekly", URL: "https://example.com/3"},
	}

	ranked := FindBestMatches("essential mix pete tong", candidates, 2, MinRankedScore)
	require.Len(t, ranked, 2)
	assert.Equal(t, "https://example.com/1", ranked[0].URL)
	assert.GreaterOrEqual(t, ranked[0].MatchScore, ranked[1].MatchScore)
}
