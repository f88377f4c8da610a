// Package server exposes the tracklist resolver over HTTP.
package server

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/mixscout/mixscout/config"
	"github.com/mixscout/mixscout/internal/domain"
)

// TracklistService is the resolver surface the server depends on.
type TracklistService interface {
	Resolve(ctx context.Context, query string) domain.Result
	Matches(ctx context.Context, query string, topN int) []domain.ScoredCandidate
}

// Server handles HTTP requests for tracklist searches.
type Server struct {
	cfg     *config.Config
	router  *gin.Engine
	service TracklistService
}

// New creates a new HTTP server instance.
func New(cfg *config.Config, service TracklistService) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	server := &Server{
		cfg:     cfg,
		router:  router,
		service: service,
	}
	server.setupRoutes(router)
	return server
}

func (s *Server) setupRoutes(router *gin.Engine) {
	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", s.health)
	router.GET("/warmup", s.warmup)

	api := router.Group("/api")
	{
		api.GET("/search/*query", s.searchByPath)
		api.POST("/search", s.search)
		api.GET("/matches/*query", s.matches)
	}
}

// Start starts the HTTP server.
func (s *Server) Start(port string) error {
	return s.router.Run(":" + port)
}
