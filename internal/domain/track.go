package domain

// Track is a single entry of a parsed tracklist. Link and Thumbnail are
// filled in by the enrichment stage and stay empty when no video is known.
type Track struct {
	ID        string `json:"id"`
	Artist    string `json:"artist"`
	Track     string `json:"track"`
	Link      string `json:"link"`
	Thumbnail string `json:"thumbnail"`
}

// Candidate is a discovered page on the origin site that may hold the
// requested tracklist.
type Candidate struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ScoredCandidate pairs a candidate with its 0-100 query match score.
type ScoredCandidate struct {
	Candidate
	MatchScore float64 `json:"match_score"`
}

// SearchResult is one resolved page together with its parsed tracks.
type SearchResult struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Tracks     []Track `json:"tracks"`
	MatchScore float64 `json:"match_score"`
}

// Result is the unit returned by the resolver and stored in the result
// cache. Success is false only for failures the resolver could not degrade;
// "nothing found" is Success true with empty Results.
type Result struct {
	Success bool           `json:"success"`
	Results []SearchResult `json:"results"`
	Error   string         `json:"error,omitempty"`
}
