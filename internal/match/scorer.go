// Package match ranks candidate titles against a query with a blended
// fuzzy-text metric and picks the winner(s) above a score threshold.
package match

import (
	"math"
	"sort"
	"strings"
	"unicode"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/mixscout/mixscout/internal/domain"
)

const (
	// MinBestScore gates single-best selection.
	MinBestScore = 50.0
	// MinRankedScore gates the looser top-N ranking.
	MinRankedScore = 30.0
	// DefaultTopN caps the number of ranked matches returned.
	DefaultTopN = 5
)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"from": {}, "as": {}, "is": {}, "was": {}, "are": {}, "were": {}, "be": {},
	"been": {}, "have": {}, "has": {}, "had": {}, "do": {}, "does": {},
	"did": {}, "will": {}, "would": {}, "could": {}, "should": {}, "may": {},
	"might": {}, "must": {}, "can": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {},
	"they": {},
}

// Normalize lower-cases, folds hyphens and commas into spaces, strips
// punctuation and collapses whitespace.
func Normalize(text string) string {
	lower := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r == '-' || r == ',':
			b.WriteRune(' ')
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Keywords extracts the meaningful query tokens: normalized words longer
// than two characters that are not stop words.
func Keywords(text string) []string {
	var keywords []string
	for _, word := range strings.Fields(Normalize(text)) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

// Score computes the 0-100 match score between a query and a candidate
// title. Keyword coverage is the dominant signal: titles containing every
// query term get a flat bonus, missing terms are penalized. Four fuzzy
// ratios cover word order changes, token subsets, substring matches and
// plain edit distance.
func Score(query, title string) float64 {
	queryNorm := Normalize(query)
	titleNorm := Normalize(title)
	if queryNorm == "" || titleNorm == "" {
		return 0
	}

	var keywordScore, bonus, penalty float64
	if keywords := Keywords(query); len(keywords) > 0 {
		matched := 0
		for _, keyword := range keywords {
			if strings.Contains(titleNorm, keyword) {
				matched++
			}
		}
		coverage := float64(matched) / float64(len(keywords))
		keywordScore = coverage * 100
		if coverage == 1.0 {
			bonus = 20.0
		}
		penalty = (1.0 - coverage) * 30.0
	}

	base := float64(fuzzy.TokenSortRatio(queryNorm, titleNorm))*0.25 +
		float64(fuzzy.TokenSetRatio(queryNorm, titleNorm))*0.25 +
		float64(fuzzy.PartialRatio(queryNorm, titleNorm))*0.20 +
		float64(fuzzy.Ratio(queryNorm, titleNorm))*0.10 +
		keywordScore*0.20

	return math.Max(0, math.Min(100, base+bonus-penalty))
}

// FindBestMatch scores all candidates with non-empty titles and returns the
// top one if it clears minScore. The second return is false when nothing
// qualifies; that is an ordinary empty outcome, not an error.
func FindBestMatch(query string, candidates []domain.Candidate, minScore float64) (domain.ScoredCandidate, bool) {
	ranked := rank(query, candidates, minScore)
	if len(ranked) == 0 {
		return domain.ScoredCandidate{}, false
	}
	return ranked[0], true
}

// FindBestMatches returns up to topN candidates scoring at least minScore,
// best first.
func FindBestMatches(query string, candidates []domain.Candidate, topN int, minScore float64) []domain.ScoredCandidate {
	if topN <= 0 {
		topN = DefaultTopN
	}
	ranked := rank(query, candidates, minScore)
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

func rank(query string, candidates []domain.Candidate, minScore float64) []domain.ScoredCandidate {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	var scored []domain.ScoredCandidate
	for _, candidate := range candidates {
		if candidate.Title == "" {
			continue
		}
		score := Score(query, candidate.Title)
		if score >= minScore {
			scored = append(scored, domain.ScoredCandidate{Candidate: candidate, MatchScore: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchScore > scored[j].MatchScore
	})
	return scored
}
