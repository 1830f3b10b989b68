package notion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_QueryDatabase(t *testing.T) {
	var gotPath, gotAuth, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("Notion-Version")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"object": "list",
			"results": [{"object": "page", "id": "p1", "properties": {}}],
			"next_cursor": "cursor-2",
			"has_more": true
		}`))
	}))
	defer srv.Close()

	c := NewClient("ntn_testkey", srv.URL, time.Second)
	resp, err := c.QueryDatabase(context.Background(), "db123", &QueryRequest{PageSize: 10})
	if err != nil {
		t.Fatalf("QueryDatabase failed: %v", err)
	}

	if gotPath != "/databases/db123/query" {
		t.Errorf("path = %s", gotPath)
	}
	if gotAuth != "Bearer ntn_testkey" {
		t.Errorf("auth = %s", gotAuth)
	}
	if gotVersion == "" {
		t.Error("Notion-Version header not set")
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "p1" {
		t.Errorf("results = %+v", resp.Results)
	}
	if resp.NextCursor == nil || *resp.NextCursor != "cursor-2" || !resp.HasMore {
		t.Errorf("cursor = %v, hasMore = %v", resp.NextCursor, resp.HasMore)
	}
}

func TestClient_StructuredErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"object": "error", "status": 401, "code": "unauthorized", "message": "API token is invalid."}`))
	}))
	defer srv.Close()

	c := NewClient("bad", srv.URL, time.Second)
	_, err := c.RetrievePage(context.Background(), "p1")

	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("err = %v, want ResponseError", err)
	}
	if respErr.Code != "unauthorized" || respErr.Status != 401 {
		t.Errorf("code = %s, status = %d", respErr.Code, respErr.Status)
	}
}

func TestClient_Bare429(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL, time.Second)
	_, err := c.QueryDatabase(context.Background(), "db", &QueryRequest{})

	var respErr *ResponseError
	if !errors.As(err, &respErr) || respErr.Code != string(CodeRateLimited) {
		t.Errorf("err = %v, want rate_limited ResponseError", err)
	}
}

func TestClient_UnknownHTTPBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL, time.Second)
	_, err := c.QueryDatabase(context.Background(), "db", &QueryRequest{})

	var httpErr *UnknownHTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != http.StatusBadGateway {
		t.Errorf("err = %v, want UnknownHTTPError 502", err)
	}
}

func TestClient_TransportError(t *testing.T) {
	c := NewClient("k", "http://127.0.0.1:1", 100*time.Millisecond)
	_, err := c.RetrievePage(context.Background(), "p1")

	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		t.Errorf("err = %v, want ClientError", err)
	}
}

func TestClient_ListBlockChildrenCursor(t *testing.T) {
	var gotCursor string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCursor = r.URL.Query().Get("start_cursor")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object": "list", "results": [], "next_cursor": null, "has_more": false}`))
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL, time.Second)
	if _, err := c.ListBlockChildren(context.Background(), "blk", "abc"); err != nil {
		t.Fatalf("ListBlockChildren failed: %v", err)
	}
	if gotCursor != "abc" {
		t.Errorf("start_cursor = %q, want abc", gotCursor)
	}
}
