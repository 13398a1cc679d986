// Package upstream performs the outbound calls to the RapidAPI provider.
//
// The client does no interpretation of the response: every HTTP response,
// whatever its status, is returned as an Outcome. Only failures to obtain a
// response at all are reported as errors.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"socialgate/internal/actions"
	"socialgate/internal/models"
)

// Header names sent on every request.
const (
	HeaderAPIKey = "X-RapidAPI-Key"
	HeaderHost   = "X-RapidAPI-Host"
)

// ErrResponseTooLarge is wrapped in a TransportError when the body exceeds
// the configured limit.
var ErrResponseTooLarge = errors.New("upstream response exceeds size limit")

// Outcome is a raw upstream response.
type Outcome struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// TransportError reports that no HTTP response was received.
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream request to %s failed: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client sends GET requests with the provider's auth headers. The API key
// and host are fixed at construction.
type Client struct {
	baseURL  string
	host     string
	apiKey   string
	maxBytes int64
	http     *http.Client
}

// NewClient creates a client from the upstream configuration.
func NewClient(cfg models.UpstreamConfig) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout})
}

// NewClientWithHTTP creates a client using the given http.Client, for
// callers that need a custom transport.
func NewClientWithHTTP(cfg models.UpstreamConfig, httpClient *http.Client) *Client {
	maxBytes := cfg.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = models.DefaultMaxResponseBytes
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		host:     cfg.Host,
		apiKey:   cfg.APIKey,
		maxBytes: maxBytes,
		http:     httpClient,
	}
}

// Get performs one GET to path with the query parameters in order. It never
// retries.
func (c *Client) Get(ctx context.Context, path string, query []actions.QueryParam) (*Outcome, error) {
	target := c.baseURL + path
	if encoded := EncodeQuery(query); encoded != "" {
		target += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	req.Header.Set(HeaderAPIKey, c.apiKey)
	req.Header.Set(HeaderHost, c.host)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, &TransportError{Path: path, Err: fmt.Errorf("failed to read body after %s: %w", time.Since(start), err)}
	}
	if int64(len(body)) > c.maxBytes {
		return nil, &TransportError{Path: path, Err: ErrResponseTooLarge}
	}

	return &Outcome{
		StatusCode: resp.StatusCode,
		Body:       body,
		Header:     resp.Header,
	}, nil
}

// EncodeQuery encodes params as a query string, keeping their order.
func EncodeQuery(params []actions.QueryParam) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}
