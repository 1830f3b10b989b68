// Package server exposes the content service over HTTP: post listings,
// single-post lookup, block trees, category and status summaries, plus
// health and Prometheus endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/inkwell/internal/content"
	"github.com/vietddude/inkwell/internal/core/domain"
	"github.com/vietddude/inkwell/internal/infra/notion"
)

// ContentAPI is the slice of the content service the HTTP layer needs.
type ContentAPI interface {
	ListPublished(ctx context.Context, opts content.ListOptions) (*content.PostPage, error)
	Archive(ctx context.Context, pageNum, perPage int) (domain.Paginated[*domain.Post], error)
	GetBySlug(ctx context.Context, slug string) (*domain.Post, error)
	GetBlocks(ctx context.Context, parentID string) ([]domain.Block, error)
	ListCategories(ctx context.Context) ([]domain.CategoryInfo, error)
	PopularTags(ctx context.Context, limit int) ([]domain.TagCount, error)
	StatsByStatus(ctx context.Context) (content.Stats, error)
}

// Server provides the HTTP API for content and monitoring.
type Server struct {
	api     ContentAPI
	limiter *notion.RateLimiter
	server  *http.Server
}

// NewServer creates the HTTP server on the given port.
func NewServer(api ContentAPI, limiter *notion.RateLimiter, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		api:     api,
		limiter: limiter,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /posts", s.handleListPosts)
	mux.HandleFunc("GET /archive", s.handleArchive)
	mux.HandleFunc("GET /posts/{slug}", s.handleGetPost)
	mux.HandleFunc("GET /posts/{slug}/blocks", s.handleGetBlocks)
	mux.HandleFunc("GET /categories", s.handleCategories)
	mux.HandleFunc("GET /tags", s.handleTags)
	mux.HandleFunc("GET /stats", s.handleStats)

	return s
}

// Handler returns the route handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"rate_limiter": map[string]any{
			"queue_len": s.limiter.QueueLen(),
			"draining":  s.limiter.Draining(),
			"interval":  s.limiter.Interval().String(),
		},
	})
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := content.ListOptions{
		StartCursor: q.Get("cursor"),
		Category:    q.Get("category"),
		Search:      q.Get("q"),
	}
	if raw := q.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "invalid_request", "page_size must be an integer in [1, 100]")
			return
		}
		opts.PageSize = n
	}

	page, err := s.api.ListPublished(r.Context(), opts)
	if err != nil {
		s.writeUpstreamError(w, r, "list posts", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageNum := 1
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "page must be an integer")
			return
		}
		pageNum = n
	}
	perPage := 0
	if raw := q.Get("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "invalid_request", "per_page must be an integer in [1, 100]")
			return
		}
		perPage = n
	}

	page, err := s.api.Archive(r.Context(), pageNum, perPage)
	if err != nil {
		s.writeUpstreamError(w, r, "archive", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	post, err := s.api.GetBySlug(r.Context(), slug)
	if err != nil {
		s.writeUpstreamError(w, r, "get post", err)
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "not_found", "no published post with slug "+slug)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleGetBlocks(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	post, err := s.api.GetBySlug(r.Context(), slug)
	if err != nil {
		s.writeUpstreamError(w, r, "get post for blocks", err)
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "not_found", "no published post with slug "+slug)
		return
	}

	blocks, err := s.api.GetBlocks(r.Context(), post.ID)
	if err != nil {
		s.writeUpstreamError(w, r, "get blocks", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post_id": post.ID, "blocks": blocks})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	infos, err := s.api.ListCategories(r.Context())
	if err != nil {
		s.writeUpstreamError(w, r, "list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	tags, err := s.api.PopularTags(r.Context(), limit)
	if err != nil {
		s.writeUpstreamError(w, r, "popular tags", err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.api.StatsByStatus(r.Context())
	if err != nil {
		s.writeUpstreamError(w, r, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// writeUpstreamError maps a content-source failure onto an HTTP response.
// Classified errors keep their taxonomy code so callers can distinguish
// a missing page from an exhausted retry budget.
func (s *Server) writeUpstreamError(w http.ResponseWriter, r *http.Request, op string, err error) {
	requestID := uuid.NewString()
	slog.Error("request failed",
		"request_id", requestID,
		"op", op,
		"path", r.URL.Path,
		"error", err)

	var apiErr *notion.APIError
	if errors.As(err, &apiErr) {
		status := http.StatusBadGateway
		switch apiErr.Code {
		case notion.CodeObjectNotFound:
			status = http.StatusNotFound
		case notion.CodeInvalidRequest:
			status = http.StatusBadRequest
		case notion.CodeUnauthorized, notion.CodeRestrictedResource:
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, map[string]string{
			"error":      string(apiErr.Code),
			"message":    apiErr.Message,
			"request_id": requestID,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":      "internal_error",
		"message":    "unexpected failure",
		"request_id": requestID,
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
