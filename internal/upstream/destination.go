package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Header names understood by the content API
const (
	HeaderRepositoryURL = "Repository-Url"
	HeaderServingURL    = "Serving-Url"
	HeaderInfo          = "Info"
)

// PutMeta describes where an uploaded document came from
type PutMeta struct {
	RepositoryURL string
	ServingURL    string
	Updated       bool
}

// DestinationClient writes catalog documents to the content API
type DestinationClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewDestinationClient creates a client for the content API at baseURL
func NewDestinationClient(baseURL string, ts oauth2.TokenSource, timeout time.Duration) *DestinationClient {
	return &DestinationClient{
		baseURL:    ensureTrailingSlash(baseURL),
		httpClient: newHTTPClient(&http.Client{Timeout: timeout}, ts),
	}
}

// URL returns the destination URL of a catalog path
func (c *DestinationClient) URL(path string) string {
	return c.baseURL + escapePath(path)
}

// Health checks that the API answers its base URL with 200
func (c *DestinationClient) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to call content API: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Operation: "health", StatusCode: resp.StatusCode}
	}
	return nil
}

// Put uploads one document
func (c *DestinationClient) Put(ctx context.Context, path string, body []byte, meta PutMeta) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, c.URL(path), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build upload request for %s: %w", path, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if meta.RepositoryURL != "" {
		httpReq.Header.Set(HeaderRepositoryURL, meta.RepositoryURL)
	}
	if meta.ServingURL != "" {
		httpReq.Header.Set(HeaderServingURL, meta.ServingURL)
	}
	if meta.Updated {
		httpReq.Header.Set(HeaderInfo, "updated")
	}

	return c.do(httpReq, "upload", path)
}

// Delete removes one document
func (c *DestinationClient) Delete(ctx context.Context, path string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.URL(path), nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request for %s: %w", path, err)
	}

	return c.do(httpReq, "delete", path)
}

func (c *DestinationClient) do(httpReq *http.Request, operation, path string) error {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", operation, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Operation: operation, Path: path, StatusCode: resp.StatusCode, Body: snippet(raw)}
	}
	return nil
}
