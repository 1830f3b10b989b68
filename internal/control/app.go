// Package control wires the application together and manages its
// lifecycle: upstream client, rate limiter, optional Redis cache, content
// service, and the HTTP server.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vietddude/inkwell/internal/content"
	"github.com/vietddude/inkwell/internal/core/config"
	"github.com/vietddude/inkwell/internal/infra/notion"
	redisclient "github.com/vietddude/inkwell/internal/infra/redis"
	"github.com/vietddude/inkwell/internal/server"
)

// App is the assembled application.
type App struct {
	cfg     config.AppConfig
	service *content.Service
	cache   *redisclient.Cache
	httpSrv *server.Server
	log     *slog.Logger
}

// NewApp creates the application with all dependencies initialized.
// Caching is enabled only when a Redis URL is configured; the service
// runs uncached otherwise.
func NewApp(cfg config.AppConfig) (*App, error) {
	log := slog.Default()

	var cache *redisclient.Cache
	if cfg.Redis.URL != "" {
		ttl := time.Duration(cfg.Notion.CacheTTL) * time.Second
		c, err := redisclient.NewCache(cfg.Redis, ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to init cache: %w", err)
		}
		cache = c
		log.Info("Response cache enabled", "ttl", ttl)
	} else {
		log.Info("Response cache disabled, no redis URL configured")
	}

	client := notion.NewClient(cfg.Notion.APIKey, notion.DefaultBaseURL, notion.DefaultTimeout)
	limiter := notion.NewRateLimiter(cfg.Notion.RateLimit)

	svcCfg := content.Config{
		DatabaseID: cfg.Notion.DatabaseID,
		Logger:     log,
	}
	if cache != nil {
		svcCfg.Cache = cache
	}
	svc := content.NewService(client, limiter, svcCfg)

	return &App{
		cfg:     cfg,
		service: svc,
		cache:   cache,
		httpSrv: server.NewServer(svc, limiter, cfg.Server.Port),
		log:     log,
	}, nil
}

// Service exposes the content service, mainly for tests.
func (a *App) Service() *content.Service {
	return a.service
}

// Start launches the HTTP server. It returns once the listener is
// running; failures after that are logged from the serve goroutine.
func (a *App) Start(ctx context.Context) error {
	a.log.Info("Starting HTTP server",
		"port", a.cfg.Server.Port,
		"database_id", a.cfg.Notion.DatabaseID,
		"rate_limit", a.cfg.Notion.RateLimit)

	go func() {
		if err := a.httpSrv.Start(); err != nil && err != http.ErrServerClosed {
			a.log.Error("HTTP server failed", "error", err)
		}
	}()
	return nil
}

// Stop shuts the application down gracefully.
func (a *App) Stop(ctx context.Context) error {
	if err := a.httpSrv.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			return fmt.Errorf("failed to close cache: %w", err)
		}
	}
	a.log.Info("Application stopped")
	return nil
}
