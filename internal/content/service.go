// Package content is the public read surface over the remote content
// source: listing, lookup, category projection, block trees, and simple
// aggregates. Every upstream call goes through the shared rate limiter,
// error classification, and the rate-limit retry policy, in that order
// from the inside out.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vietddude/inkwell/internal/core/domain"
	"github.com/vietddude/inkwell/internal/infra/notion"
	"github.com/vietddude/inkwell/internal/metrics"
)

const (
	// DefaultPageSize is used when a listing caller does not set one.
	DefaultPageSize = 10

	// projectionPageSize bounds the window the category/count projections
	// scan. Matches the source behavior of deriving from one large page.
	projectionPageSize = 100

	// DefaultMaxBlockDepth caps recursive block resolution. The source is
	// trusted to be a genuine tree; the cap only turns a pathological
	// response into an error instead of unbounded recursion.
	DefaultMaxBlockDepth = 16
)

// ResponseCache is the optional read-through cache in front of upstream
// calls. Implementations must treat their own failures as misses.
type ResponseCache interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
}

// Config holds the service's tunables. Zero values select the defaults.
type Config struct {
	DatabaseID    string
	MaxRetries    int
	RetryDelay    time.Duration
	MaxBlockDepth int
	Cache         ResponseCache
	Logger        *slog.Logger
}

// Service orchestrates queries against one content database.
type Service struct {
	client  *notion.Client
	limiter *notion.RateLimiter
	cfg     Config
	logger  *slog.Logger
}

// NewService wires the fetch surface to a transport and the shared rate
// limiter.
func NewService(client *notion.Client, limiter *notion.RateLimiter, cfg Config) *Service {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = notion.DefaultMaxRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = notion.DefaultInitialDelay
	}
	if cfg.MaxBlockDepth == 0 {
		cfg.MaxBlockDepth = DefaultMaxBlockDepth
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:  client,
		limiter: limiter,
		cfg:     cfg,
		logger:  logger,
	}
}

// Limiter exposes the shared limiter for diagnostics.
func (s *Service) Limiter() *notion.RateLimiter {
	return s.limiter
}

// call runs one upstream operation through the fixed wrapping order:
// the rate limiter queues the raw call, classification sees its true
// error, and the retry policy re-enters the queue on each attempt.
func call[T any](ctx context.Context, s *Service, op string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	result, err := notion.RetryWithBackoff(ctx, func() (T, error) {
		metrics.APICallsTotal.WithLabelValues(op).Inc()
		return notion.SafeCall(ctx, op, func(ctx context.Context) (T, error) {
			return notion.Execute(ctx, s.limiter, func() (T, error) {
				return fn(ctx)
			})
		})
	}, s.cfg.MaxRetries, s.cfg.RetryDelay)

	metrics.APILatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		code := string(notion.CodeUnknown)
		if apiErr := notion.Classify(err, op); apiErr != nil {
			code = string(apiErr.Code)
		}
		metrics.APIErrorsTotal.WithLabelValues(op, code).Inc()
	}
	return result, err
}

// ListOptions narrows a published-post listing.
type ListOptions struct {
	// PageSize defaults to DefaultPageSize.
	PageSize int

	// StartCursor is the opaque cursor from a previous page.
	StartCursor string

	// Category is ANDed into the server-side filter when set.
	Category string

	// Search is a case-insensitive substring match over title,
	// description, and tags, applied client-side to the already fetched
	// page only. Narrowing within one page window is deliberate; it does
	// not search the whole corpus.
	Search string
}

// PostPage is one window of listing results. NextCursor and HasMore come
// back verbatim from the source.
type PostPage struct {
	Results    []*domain.Post `json:"results"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

// Stats is the status breakdown of the database.
type Stats struct {
	Published int `json:"published"`
	Draft     int `json:"draft"`
}

// ListPublished returns published posts, newest publish date first.
func (s *Service) ListPublished(ctx context.Context, opts ListOptions) (*PostPage, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}

	cacheKey := fmt.Sprintf("posts:list:%d:%s:%s:%s", opts.PageSize, opts.StartCursor, opts.Category, opts.Search)
	var cached PostPage
	if s.cacheGet(ctx, cacheKey, &cached, "list_published") {
		return &cached, nil
	}

	filters := []notion.Filter{{
		Property: "status",
		Select:   &notion.EqualsFilter{Equals: string(domain.StatusPublished)},
	}}
	if opts.Category != "" {
		filters = append(filters, notion.Filter{
			Property:    "category",
			MultiSelect: &notion.MultiSelectFilter{Contains: opts.Category},
		})
	}

	req := &notion.QueryRequest{
		Filter:      compound(filters),
		Sorts:       []notion.Sort{{Property: "published", Direction: notion.SortDescending}},
		PageSize:    opts.PageSize,
		StartCursor: opts.StartCursor,
	}

	resp, err := call(ctx, s, "list_published", func(ctx context.Context) (*notion.QueryResponse, error) {
		return s.client.QueryDatabase(ctx, s.cfg.DatabaseID, req)
	})
	if err != nil {
		return nil, err
	}

	posts := notion.TransformPages(pageResults(resp))
	if opts.Search != "" {
		posts = filterBySearch(posts, opts.Search)
	}

	page := &PostPage{
		Results: posts,
		HasMore: resp.HasMore,
	}
	if resp.NextCursor != nil {
		page.NextCursor = *resp.NextCursor
	}

	s.cacheSet(ctx, cacheKey, page)
	return page, nil
}

// GetBySlug returns the published post with an exact slug match, or nil
// when none exists. A miss is not an error.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	cacheKey := "posts:slug:" + slug
	var cached domain.Post
	if s.cacheGet(ctx, cacheKey, &cached, "get_by_slug") {
		return &cached, nil
	}

	req := &notion.QueryRequest{
		Filter: &notion.Filter{And: []notion.Filter{
			{Property: "slug", RichText: &notion.EqualsFilter{Equals: slug}},
			{Property: "status", Select: &notion.EqualsFilter{Equals: string(domain.StatusPublished)}},
		}},
	}

	resp, err := call(ctx, s, "get_by_slug", func(ctx context.Context) (*notion.QueryResponse, error) {
		return s.client.QueryDatabase(ctx, s.cfg.DatabaseID, req)
	})
	if err != nil {
		return nil, err
	}

	pages := pageResults(resp)
	if len(pages) == 0 {
		return nil, nil
	}

	post, err := notion.TransformPage(&pages[0])
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cacheKey, post)
	return post, nil
}

// GetByID retrieves one post directly by identifier. Returns nil when the
// retrieved object does not have the expected page shape.
func (s *Service) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	page, err := call(ctx, s, "get_by_id", func(ctx context.Context) (*notion.Page, error) {
		return s.client.RetrievePage(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	if page.Object != "page" || page.Properties == nil {
		return nil, nil
	}
	return notion.TransformPage(page)
}

// ListCategories derives the category catalog from currently published
// posts, count descending. It is a live projection, never a stored list.
func (s *Service) ListCategories(ctx context.Context) ([]domain.CategoryInfo, error) {
	cacheKey := "categories"
	var cached []domain.CategoryInfo
	if s.cacheGet(ctx, cacheKey, &cached, "list_categories") {
		return cached, nil
	}

	page, err := s.ListPublished(ctx, ListOptions{PageSize: projectionPageSize})
	if err != nil {
		return nil, err
	}

	infos := domain.CountCategories(page.Results)
	s.cacheSet(ctx, cacheKey, infos)
	return infos, nil
}

// CountPublished returns the number of published posts within the
// projection window.
func (s *Service) CountPublished(ctx context.Context) (int, error) {
	page, err := s.ListPublished(ctx, ListOptions{PageSize: projectionPageSize})
	if err != nil {
		return 0, err
	}
	return len(page.Results), nil
}

// Recent returns the latest limit published posts.
func (s *Service) Recent(ctx context.Context, limit int) ([]*domain.Post, error) {
	if limit <= 0 {
		limit = 5
	}
	page, err := s.ListPublished(ctx, ListOptions{PageSize: limit})
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// Archive returns one numbered page over the published posts in the
// projection window. Unlike cursor listing, page numbers can be jumped
// to directly, which suits archive-style navigation.
func (s *Service) Archive(ctx context.Context, pageNum, perPage int) (domain.Paginated[*domain.Post], error) {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}

	window, err := s.ListPublished(ctx, ListOptions{PageSize: projectionPageSize})
	if err != nil {
		return domain.Paginated[*domain.Post]{}, err
	}
	return domain.Paginate(window.Results, pageNum, perPage), nil
}

// PopularTags returns the most used tags among published posts.
func (s *Service) PopularTags(ctx context.Context, limit int) ([]domain.TagCount, error) {
	page, err := s.ListPublished(ctx, ListOptions{PageSize: projectionPageSize})
	if err != nil {
		return nil, err
	}
	return domain.PopularTags(page.Results, limit), nil
}

// StatsByStatus counts posts per status within the projection window.
func (s *Service) StatsByStatus(ctx context.Context) (Stats, error) {
	var stats Stats

	for _, status := range []domain.PostStatus{domain.StatusPublished, domain.StatusDraft} {
		req := &notion.QueryRequest{
			Filter: &notion.Filter{
				Property: "status",
				Select:   &notion.EqualsFilter{Equals: string(status)},
			},
			PageSize: projectionPageSize,
		}
		resp, err := call(ctx, s, "stats_by_status", func(ctx context.Context) (*notion.QueryResponse, error) {
			return s.client.QueryDatabase(ctx, s.cfg.DatabaseID, req)
		})
		if err != nil {
			return Stats{}, err
		}
		if status == domain.StatusPublished {
			stats.Published = len(resp.Results)
		} else {
			stats.Draft = len(resp.Results)
		}
	}
	return stats, nil
}

func (s *Service) cacheGet(ctx context.Context, key string, v any, op string) bool {
	if s.cfg.Cache == nil {
		return false
	}
	hit, err := s.cfg.Cache.GetJSON(ctx, key, v)
	if err != nil {
		s.logger.Warn("Cache read failed, falling through", "key", key, "error", err)
		metrics.CacheMissesTotal.WithLabelValues(op).Inc()
		return false
	}
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(op).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(op).Inc()
	}
	return hit
}

func (s *Service) cacheSet(ctx context.Context, key string, v any) {
	if s.cfg.Cache == nil {
		return
	}
	if err := s.cfg.Cache.SetJSON(ctx, key, v); err != nil {
		s.logger.Warn("Cache write failed", "key", key, "error", err)
	}
}

func compound(filters []notion.Filter) *notion.Filter {
	if len(filters) == 1 {
		return &filters[0]
	}
	return &notion.Filter{And: filters}
}

// pageResults keeps only results with the full page shape.
func pageResults(resp *notion.QueryResponse) []notion.Page {
	pages := make([]notion.Page, 0, len(resp.Results))
	for _, p := range resp.Results {
		if p.Properties == nil {
			continue
		}
		pages = append(pages, p)
	}
	return pages
}

func filterBySearch(posts []*domain.Post, query string) []*domain.Post {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return posts
	}

	matched := make([]*domain.Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			tagsMatch(p.Tags, q) {
			matched = append(matched, p)
		}
	}
	return matched
}

func tagsMatch(tags []string, q string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
