package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mixscout/mixscout/internal/match"
)

// searchByPath resolves a query delivered as a path segment, with hyphens
// standing in for spaces: /api/search/leon-vynehall-essential-mix.
func (s *Server) searchByPath(c *gin.Context) {
	query := queryFromPath(c.Param("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "query parameter required"})
		return
	}
	s.respond(c, query)
}

// search resolves a query delivered as a JSON body.
func (s *Server) search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "query parameter required"})
		return
	}
	s.respond(c, query)
}

func (s *Server) respond(c *gin.Context, query string) {
	result := s.service.Resolve(c.Request.Context(), query)
	if !result.Success {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: result.Error})
		return
	}
	c.JSON(http.StatusOK, SearchResponse{Query: query, Results: result.Results})
}

// matches returns the ranked candidates for a query without fetching any
// tracklist page. An optional ?limit caps the list.
func (s *Server) matches(c *gin.Context) {
	query := queryFromPath(c.Param("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "query parameter required"})
		return
	}

	topN := match.DefaultTopN
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			topN = parsed
		}
	}

	ranked := s.service.Matches(c.Request.Context(), query, topN)
	c.JSON(http.StatusOK, MatchesResponse{Query: query, Matches: ranked})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) warmup(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func queryFromPath(path string) string {
	query := strings.Trim(path, "/")
	query = strings.ReplaceAll(query, "-", " ")
	return strings.TrimSpace(query)
}
