package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the production content API endpoint.
	DefaultBaseURL = "https://api.notion.com/v1"

	// apiVersion pins the wire schema this client decodes.
	apiVersion = "2022-06-28"

	// DefaultTimeout bounds a single upstream call.
	DefaultTimeout = 10 * time.Second
)

// Client is the HTTP transport to the content API. It performs no rate
// limiting, retrying, or classification itself; it returns raw typed
// errors (*ResponseError, *UnknownHTTPError, *ClientError) for the layers
// above.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a transport against baseURL with the given timeout.
// Pass DefaultBaseURL outside of tests.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// QueryDatabase runs a filtered, sorted, cursor-paginated query against
// one database.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, req *QueryRequest) (*QueryResponse, error) {
	var resp QueryResponse
	path := fmt.Sprintf("/databases/%s/query", databaseID)
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RetrievePage fetches one page by identifier.
func (c *Client) RetrievePage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	path := fmt.Sprintf("/pages/%s", pageID)
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListBlockChildren fetches one page of a parent block's children.
func (c *Client) ListBlockChildren(ctx context.Context, blockID, startCursor string) (*BlockChildrenResponse, error) {
	var resp BlockChildrenResponse
	path := fmt.Sprintf("/blocks/%s/children", blockID)
	if startCursor != "" {
		path += "?start_cursor=" + startCursor
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return &ClientError{Err: fmt.Errorf("marshal request: %w", err)}
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &ClientError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ClientError{Err: fmt.Errorf("api call: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ClientError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return c.decodeError(resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &UnknownHTTPError{Status: resp.StatusCode, Body: truncate(string(respBody), 512)}
	}
	return nil
}

// decodeError surfaces the structured error body when the API sends one,
// falling back to an untyped HTTP error. A bare 429 without a body is
// still reported as rate limited.
func (c *Client) decodeError(status int, body []byte) error {
	var respErr ResponseError
	if err := json.Unmarshal(body, &respErr); err == nil && respErr.Code != "" {
		if respErr.Status == 0 {
			respErr.Status = status
		}
		return &respErr
	}

	if status == http.StatusTooManyRequests {
		return &ResponseError{Status: status, Code: string(CodeRateLimited), Message: "too many requests"}
	}

	return &UnknownHTTPError{Status: status, Body: truncate(string(body), 512)}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
