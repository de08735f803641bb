package upstream

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// maxDocumentBytes caps a single fetched file
const maxDocumentBytes = 32 << 20

// ErrDocumentTooLarge is returned when a fetched file exceeds the size cap
var ErrDocumentTooLarge = errors.New("document too large")

// SourceClient reads changed files from the repository the push came from
type SourceClient struct {
	baseURL    string
	branch     string
	maxBytes   int64
	httpClient *http.Client
}

// NewSourceClient creates a client for a contents endpoint such as
// https://api.github.com/repos/org/catalog/contents/. A nil token source
// sends anonymous requests.
func NewSourceClient(baseURL, branch string, ts oauth2.TokenSource, timeout time.Duration) *SourceClient {
	return &SourceClient{
		baseURL:    ensureTrailingSlash(baseURL),
		branch:     branch,
		maxBytes:   maxDocumentBytes,
		httpClient: newHTTPClient(&http.Client{Timeout: timeout}, ts),
	}
}

// contentsDocument is the contents API response for a file
type contentsDocument struct {
	Type     string `json:"type"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

// Fetch returns the content of path at the configured branch. Contents API
// documents are decoded; any other body is returned as is.
func (c *SourceClient) Fetch(ctx context.Context, path string) ([]byte, error) {
	u := c.baseURL + escapePath(path)
	if c.branch != "" {
		u += "?ref=" + url.QueryEscape(c.branch)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build fetch request for %s: %w", path, err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Operation: "fetch", Path: path, StatusCode: resp.StatusCode, Body: snippet(raw)}
	}

	if int64(len(raw)) > c.maxBytes {
		return nil, fmt.Errorf("failed to fetch %s: %w (limit %d bytes)", path, ErrDocumentTooLarge, c.maxBytes)
	}

	return decodeContents(raw)
}

// decodeContents unwraps a base64 contents document
func decodeContents(raw []byte) ([]byte, error) {
	var doc contentsDocument
	if err := json.Unmarshal(raw, &doc); err != nil || doc.Encoding != "base64" {
		return raw, nil
	}

	// The contents API wraps base64 at 60 columns
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(doc.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to decode contents document: %w", err)
	}
	return decoded, nil
}
