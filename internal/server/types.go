package server

import "github.com/mixscout/mixscout/internal/domain"

// SearchRequest is the JSON-body form of a query.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
}

// SearchResponse is the wire shape of a resolved query.
type SearchResponse struct {
	Query   string                `json:"query"`
	Results []domain.SearchResult `json:"results"`
}

// MatchesResponse lists ranked candidates without their tracklists.
type MatchesResponse struct {
	Query   string                   `json:"query"`
	Matches []domain.ScoredCandidate `json:"matches"`
}

// ErrorResponse is the wire shape of request failures.
type ErrorResponse struct {
	Error string `json:"error"`
}
