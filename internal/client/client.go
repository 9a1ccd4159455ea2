// Package client submits mapped import records to a catalog server over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/importer"
)

// DefaultTimeout bounds a single import request.
const DefaultTimeout = 2 * time.Minute

// ImportPath is the server route that accepts import batches.
const ImportPath = "/api/products/import"

// APIError is an error response returned by the server.
type APIError struct {
	Status  int             `json:"-"`
	Message string          `json:"message"`
	Action  string          `json:"action"`
	Code    string          `json:"code"`
	Details json.RawMessage `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s (Code: %s). %s", e.Message, e.Code, e.Action)
}

// Rejected decodes the rejected rows attached to a VAL008 response.
func (e *APIError) Rejected() []core.Rejection {
	var out []core.Rejection
	if len(e.Details) == 0 || json.Unmarshal(e.Details, &out) != nil {
		return nil
	}
	return out
}

// Client talks to one catalog server. It implements importer.Submitter.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sends key in the X-API-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ importer.Submitter = (*Client)(nil)

// Submit posts records as {"data": [...]} and returns the server's result.
// Non-2xx responses are returned as *APIError.
func (c *Client) Submit(ctx context.Context, records []importer.MappedRecord) (core.ImportResult, error) {
	body, err := json.Marshal(struct {
		Data []importer.MappedRecord `json:"data"`
	}{Data: records})
	if err != nil {
		return core.ImportResult{}, fmt.Errorf("encode records: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ImportPath, bytes.NewReader(body))
	if err != nil {
		return core.ImportResult{}, fmt.Errorf("build import request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return core.ImportResult{}, fmt.Errorf("send import request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return core.ImportResult{}, decodeError(resp)
	}

	var result core.ImportResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return core.ImportResult{}, fmt.Errorf("decode import result: %w", err)
	}
	return result, nil
}

// decodeError reads an error body, falling back to the raw text when the
// server did not send the JSON error shape.
func decodeError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read error response: %w", err)
	}

	apiErr := &APIError{Status: resp.StatusCode}
	if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return apiErr
}

// IsAPIError reports whether err carries a server error response.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
