package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/mixscout/mixscout/config"
	"github.com/mixscout/mixscout/internal/cache"
	"github.com/mixscout/mixscout/internal/fetcher"
	"github.com/mixscout/mixscout/internal/mixesdb"
	"github.com/mixscout/mixscout/internal/server"
	"github.com/mixscout/mixscout/internal/service"
	"github.com/mixscout/mixscout/internal/youtube"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Path to config file")
	port := flag.String("port", "", "Server port (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	var store cache.Cache
	redisClient, err := cache.Connect(context.Background(), cfg.Cache)
	switch {
	case err != nil:
		slog.Warn("Cache backend unavailable, falling back to in-process cache", "error", err)
		store = cache.NewMemory()
	case redisClient == nil:
		slog.Info("No cache backend configured, using in-process cache")
		store = cache.NewMemory()
	default:
		defer redisClient.Close()
		store = cache.NewRedis(redisClient)
	}

	f := fetcher.New(fetcher.ConfigFrom(cfg))
	locator := mixesdb.New(cfg.MixesDB.BaseURL, f)
	enricher := youtube.New(cfg.YouTubeAPIKey, store)
	resolver := service.NewResolver(locator, f, enricher, store)

	srv := server.New(cfg, resolver)

	listenPort := cfg.Server.Port
	if *port != "" {
		listenPort = *port
	}

	slog.Info("Starting tracklist search server",
		"port", listenPort,
		"hasYouTubeKey", cfg.YouTubeAPIKey != "",
		"hasRedis", redisClient != nil,
	)
	if err := srv.Start(listenPort); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
