package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/vietddude/inkwell/internal/core/domain"
	"github.com/vietddude/inkwell/internal/infra/notion"
)

// fixturePost is the flat form the fake upstream renders into wire JSON.
type fixturePost struct {
	ID         string
	Title      string
	Slug       string
	Status     string
	Categories []string
	Tags       []string
	Published  string
	Desc       string
}

func fixtureCorpus() []fixturePost {
	posts := make([]fixturePost, 0, 12)
	for i := 1; i <= 12; i++ {
		p := fixturePost{
			ID:        fmt.Sprintf("page-%02d", i),
			Title:     fmt.Sprintf("포스트 %d", i),
			Slug:      fmt.Sprintf("post-%d", i),
			Status:    string(domain.StatusPublished),
			Published: fmt.Sprintf("2025-12-%02dT10:00:00Z", i),
			Tags:      []string{"여행"},
		}
		switch i {
		case 2, 5, 9:
			p.Categories = []string{"🍽️ 맛집"}
			p.Tags = []string{"서울", "맛집"}
		case 3:
			p.Categories = []string{"✈️ 여행"}
			p.Tags = []string{"제주도"}
			p.Desc = "제주 여행기"
		default:
			p.Categories = []string{"✈️ 여행"}
		}
		posts = append(posts, p)
	}
	return posts
}

func richText(s string) []map[string]any {
	if s == "" {
		return []map[string]any{}
	}
	return []map[string]any{{
		"type":        "text",
		"plain_text":  s,
		"annotations": map[string]any{"color": "default"},
	}}
}

func options(names []string) []map[string]any {
	out := make([]map[string]any, 0, len(names))
	for _, n := range names {
		out = append(out, map[string]any{"name": n, "color": "blue"})
	}
	return out
}

func (p fixturePost) wireJSON() map[string]any {
	return map[string]any{
		"object":           "page",
		"id":               p.ID,
		"created_time":     "2025-01-01T00:00:00Z",
		"last_edited_time": "2025-01-02T00:00:00Z",
		"properties": map[string]any{
			"title":       map[string]any{"type": "title", "title": richText(p.Title)},
			"status":      map[string]any{"type": "select", "select": map[string]any{"name": p.Status}},
			"slug":        map[string]any{"type": "rich_text", "rich_text": richText(p.Slug)},
			"description": map[string]any{"type": "rich_text", "rich_text": richText(p.Desc)},
			"category":    map[string]any{"type": "multi_select", "multi_select": options(p.Categories)},
			"tags":        map[string]any{"type": "multi_select", "multi_select": options(p.Tags)},
			"published":   map[string]any{"type": "date", "date": map[string]any{"start": p.Published}},
		},
	}
}

// fakeUpstream mimics the content API: filterable, sortable, cursor
// paginated queries plus block children listings.
type fakeUpstream struct {
	posts     []fixturePost
	blocks    map[string][]map[string]any // parent id -> children wire JSON
	queries   int
	rateLimit int // respond 429 to this many leading queries
}

func (f *fakeUpstream) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /databases/{id}/query", f.handleQuery)
	mux.HandleFunc("GET /blocks/{id}/children", f.handleChildren)
	mux.HandleFunc("GET /pages/{id}", f.handlePage)
	return mux
}

func (f *fakeUpstream) handleQuery(w http.ResponseWriter, r *http.Request) {
	f.queries++
	if f.rateLimit > 0 {
		f.rateLimit--
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"object": "error", "status": 429, "code": "rate_limited", "message": "slow down",
		})
		return
	}

	var req notion.QueryRequest
	json.NewDecoder(r.Body).Decode(&req)

	matched := make([]fixturePost, 0, len(f.posts))
	for _, p := range f.posts {
		if matchesFilter(p, req.Filter) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Published > matched[j].Published })

	offset := 0
	if req.StartCursor != "" {
		offset, _ = strconv.Atoi(strings.TrimPrefix(req.StartCursor, "offset:"))
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	end := offset + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	window := matched[offset:end]

	results := make([]map[string]any, 0, len(window))
	for _, p := range window {
		results = append(results, p.wireJSON())
	}

	resp := map[string]any{
		"object":      "list",
		"results":     results,
		"has_more":    end < len(matched),
		"next_cursor": nil,
	}
	if end < len(matched) {
		resp["next_cursor"] = fmt.Sprintf("offset:%d", end)
	}
	json.NewEncoder(w).Encode(resp)
}

func matchesFilter(p fixturePost, filter *notion.Filter) bool {
	if filter == nil {
		return true
	}
	if len(filter.And) > 0 {
		for i := range filter.And {
			if !matchesFilter(p, &filter.And[i]) {
				return false
			}
		}
		return true
	}
	switch {
	case filter.Select != nil && filter.Property == "status":
		return p.Status == filter.Select.Equals
	case filter.RichText != nil && filter.Property == "slug":
		return p.Slug == filter.RichText.Equals
	case filter.MultiSelect != nil && filter.Property == "category":
		for _, c := range p.Categories {
			if c == filter.MultiSelect.Contains {
				return true
			}
		}
		return false
	}
	return true
}

func (f *fakeUpstream) handleChildren(w http.ResponseWriter, r *http.Request) {
	parent := r.PathValue("id")
	children := f.blocks[parent]

	// Serve one block per page to exercise cursor following.
	offset := 0
	if c := r.URL.Query().Get("start_cursor"); c != "" {
		offset, _ = strconv.Atoi(c)
	}

	resp := map[string]any{"object": "list", "results": []map[string]any{}, "has_more": false, "next_cursor": nil}
	if offset < len(children) {
		resp["results"] = []map[string]any{children[offset]}
		if offset+1 < len(children) {
			resp["has_more"] = true
			resp["next_cursor"] = strconv.Itoa(offset + 1)
		}
	}
	json.NewEncoder(w).Encode(resp)
}

func (f *fakeUpstream) handlePage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	for _, p := range f.posts {
		if p.ID == id {
			json.NewEncoder(w).Encode(p.wireJSON())
			return
		}
	}
	if id == "not-a-page" {
		json.NewEncoder(w).Encode(map[string]any{"object": "comment", "id": id})
		return
	}
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]any{
		"object": "error", "status": 404, "code": "object_not_found", "message": "no such page",
	})
}

func newTestService(t *testing.T, f *fakeUpstream) *Service {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	client := notion.NewClient("ntn_test", srv.URL, time.Second)
	limiter := notion.NewRateLimiter(10)
	return NewService(client, limiter, Config{
		DatabaseID: "2d9f6c096107803ca617dce8b09ec649",
		RetryDelay: 5 * time.Millisecond,
	})
}

func TestListPublished_CategoryFilter(t *testing.T) {
	svc := newTestService(t, &fakeUpstream{posts: fixtureCorpus()})

	page, err := svc.ListPublished(context.Background(), ListOptions{Category: "🍽️ 맛집", PageSize: 10})
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}

	if len(page.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(page.Results))
	}
	if page.HasMore {
		t.Error("HasMore = true, want false")
	}

	// Descending by publish date: page-09, page-05, page-02.
	wantOrder := []string{"page-09", "page-05", "page-02"}
	for i, want := range wantOrder {
		if page.Results[i].ID != want {
			t.Errorf("results[%d] = %s, want %s", i, page.Results[i].ID, want)
		}
	}
}

func TestListPublished_CursorPagination(t *testing.T) {
	svc := newTestService(t, &fakeUpstream{posts: fixtureCorpus()})
	ctx := context.Background()

	first, err := svc.ListPublished(ctx, ListOptions{PageSize: 5})
	if err != nil {
		t.Fatalf("first page failed: %v", err)
	}
	if len(first.Results) != 5 || !first.HasMore || first.NextCursor == "" {
		t.Fatalf("first page = %d results, hasMore=%v, cursor=%q", len(first.Results), first.HasMore, first.NextCursor)
	}

	second, err := svc.ListPublished(ctx, ListOptions{PageSize: 5, StartCursor: first.NextCursor})
	if err != nil {
		t.Fatalf("second page failed: %v", err)
	}
	if len(second.Results) != 5 {
		t.Errorf("second page = %d results, want 5", len(second.Results))
	}
	if second.Results[0].ID == first.Results[0].ID {
		t.Error("second page repeats the first page")
	}
}

func TestListPublished_SearchWithinPage(t *testing.T) {
	svc := newTestService(t, &fakeUpstream{posts: fixtureCorpus()})

	page, err := svc.ListPublished(context.Background(), ListOptions{PageSize: 12, Search: "제주"})
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}

	if len(page.Results) != 1 || page.Results[0].ID != "page-03" {
		t.Fatalf("search results = %+v, want only page-03", page.Results)
	}
}

func TestArchive_ClampsPageNumber(t *testing.T) {
	svc := newTestService(t, &fakeUpstream{posts: fixtureCorpus()})
	ctx := context.Background()

	page, err := svc.Archive(ctx, 2, 5)
	if err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	if page.CurrentPage != 2 || page.TotalItems != 12 || page.TotalPages != 3 {
		t.Fatalf("page = %+v", page)
	}
	if len(page.Items) != 5 {
		t.Errorf("got %d items, want 5", len(page.Items))
	}

	// A page past the end lands on the last page instead of coming back
	// empty.
	last, err := svc.Archive(ctx, 99, 5)
	if err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	if last.CurrentPage != 3 || len(last.Items) != 2 {
		t.Errorf("clamped page = %+v", last)
	}
}

func TestGetBySlug(t *testing.T) {
	svc := newTestService(t, &fakeUpstream{posts: fixtureCorpus()})
	ctx := context.Background()

	post, err := svc.GetBySlug(ctx, "post-5")
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	if post == nil || post.ID != "page-05" {
		t.Fatalf("post = %+v, want page-05", post)
	}

	missing, err := svc.GetBySlug(ctx, "nonexistent-slug")
	if err != nil {
		t.Fatalf("miss returned error: %v", err)
	}
	if missing != nil {
		t.Errorf("miss = %+v, want nil", missing)
	}
}

func TestGetByID(t *testing.T) {
	svc := newTestService(t, &fakeUpstream{posts: fixtureCorpus()})
	ctx := context.Background()

	post, err := svc.GetByID(ctx, "page-03")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if post == nil || post.Slug != "post-3" {
		t.Fatalf("post = %+v", post)
	}

	// Wrong object shape is a nil result, not an error.
	odd, err := svc.GetByID(ctx, "not-a-page")
	if err != nil {
		t.Fatalf("odd shape returned error: %v", err)
	}
	if odd != nil {
		t.Errorf("odd shape = %+v, want nil", odd)
	}
}

func TestListCategories(t *testing.T) {
	svc := newTestService(t, &fakeUpstream{posts: fixtureCorpus()})

	infos, err := svc.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}

	if len(infos) != 2 {
		t.Fatalf("got %d categories, want 2", len(infos))
	}
	if infos[0].Name != "✈️ 여행" || infos[0].Count != 9 {
		t.Errorf("top category = %s (%d), want ✈️ 여행 (9)", infos[0].Name, infos[0].Count)
	}
	if infos[1].Name != "🍽️ 맛집" || infos[1].Count != 3 {
		t.Errorf("second category = %s (%d), want 🍽️ 맛집 (3)", infos[1].Name, infos[1].Count)
	}
}

func TestStatsByStatus(t *testing.T) {
	posts := fixtureCorpus()
	posts[0].Status = string(domain.StatusDraft)
	posts[1].Status = string(domain.StatusDraft)
	svc := newTestService(t, &fakeUpstream{posts: posts})

	stats, err := svc.StatsByStatus(context.Background())
	if err != nil {
		t.Fatalf("StatsByStatus failed: %v", err)
	}
	if stats.Published != 10 || stats.Draft != 2 {
		t.Errorf("stats = %+v, want 10 published / 2 draft", stats)
	}
}

// memCache is an in-process ResponseCache for exercising read-through
// behavior without a Redis server.
type memCache struct {
	entries map[string][]byte
}

func (m *memCache) GetJSON(_ context.Context, key string, v any) (bool, error) {
	raw, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

func (m *memCache) SetJSON(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func TestListPublished_SecondCallServedFromCache(t *testing.T) {
	f := &fakeUpstream{posts: fixtureCorpus()}
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	client := notion.NewClient("ntn_test", srv.URL, time.Second)
	svc := NewService(client, notion.NewRateLimiter(10), Config{
		DatabaseID: "2d9f6c096107803ca617dce8b09ec649",
		Cache:      &memCache{entries: map[string][]byte{}},
	})
	ctx := context.Background()

	first, err := svc.ListPublished(ctx, ListOptions{PageSize: 4})
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	second, err := svc.ListPublished(ctx, ListOptions{PageSize: 4})
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	if f.queries != 1 {
		t.Errorf("upstream saw %d queries, want 1", f.queries)
	}
	if len(second.Results) != len(first.Results) {
		t.Errorf("cached page has %d results, fresh had %d", len(second.Results), len(first.Results))
	}
}

func TestListPublished_RetriesRateLimit(t *testing.T) {
	f := &fakeUpstream{posts: fixtureCorpus(), rateLimit: 2}
	svc := newTestService(t, f)

	page, err := svc.ListPublished(context.Background(), ListOptions{PageSize: 3})
	if err != nil {
		t.Fatalf("ListPublished failed after retries: %v", err)
	}
	if len(page.Results) != 3 {
		t.Errorf("got %d results", len(page.Results))
	}
	if f.queries != 3 {
		t.Errorf("upstream saw %d queries, want 3 (two 429s then success)", f.queries)
	}
}

func TestListPublished_ExhaustsRetries(t *testing.T) {
	f := &fakeUpstream{posts: fixtureCorpus(), rateLimit: 99}
	svc := newTestService(t, f)

	_, err := svc.ListPublished(context.Background(), ListOptions{})
	apiErr := notion.Classify(err, "test")
	if apiErr.Code != notion.CodeMaxRetriesExceeded {
		t.Errorf("err = %v, want max_retries_exceeded", err)
	}
	if f.queries != 3 {
		t.Errorf("upstream saw %d queries, want exactly 3 attempts", f.queries)
	}
}
