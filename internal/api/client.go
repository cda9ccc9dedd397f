// Package api is the REST client for the course backend: annotation pins, student notes
// and the read-only content hierarchy.
package api

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

	"github.com/rs/zerolog"
)

// UserAgent is sent with every request.
const UserAgent = "model-viewer/1.0"

// ErrTooManyPages is returned when a list still has a next page after maxPages reads.
var ErrTooManyPages = errors.New("too many pages")

// maxPages bounds how many `next` links a list read follows.
const maxPages = 200

// ErrNotAuthor is returned when deleting a note that belongs to another user. No request
// is sent in that case.
var ErrNotAuthor = errors.New("api: note belongs to another user")

// StatusError is a non-2xx response.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api: %s %s returned status %d", e.Method, e.URL, e.Code)
	}
	return fmt.Sprintf("api: %s %s returned status %d: %s", e.Method, e.URL, e.Code, e.Body)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Credentials supplies the bearer token for each request and the name of the signed-in
// user. It is passed to the client instead of living in a process-wide registry.
type Credentials interface {
	Token(ctx context.Context) (string, error)
	User() string
}

// StaticCredentials is a fixed token and user name.
type StaticCredentials struct {
	AccessToken string
	Username    string
}

func (s StaticCredentials) Token(context.Context) (string, error) { return s.AccessToken, nil }

func (s StaticCredentials) User() string { return s.Username }

// Client talks to the backend on behalf of one institution.
type Client struct {
	baseURL     string
	institution int64
	creds       Credentials
	httpClient  *http.Client
	log         zerolog.Logger
}

// New creates a client for baseURL. creds may be nil for anonymous reads.
func New(baseURL string, institution int64, creds Credentials) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		institution: institution,
		creds:       creds,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		log:         zerolog.Nop(),
	}
}

// WithLogger sets the logger used for request tracing and returns c.
func (c *Client) WithLogger(log zerolog.Logger) *Client {
	c.log = log.With().Str("component", "api").Logger()
	return c
}

// WithHTTPClient replaces the underlying HTTP client and returns c.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// User returns the signed-in user name, or "" when anonymous.
func (c *Client) User() string {
	if c.creds == nil {
		return ""
	}
	return c.creds.User()
}

func (c *Client) url(format string, args ...any) string {
	return c.baseURL + fmt.Sprintf(format, args...)
}

// do sends a request and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s body: %w", url, err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return fmt.Errorf("api: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		tok, err := c.creds.Token(ctx)
		if err != nil {
			return fmt.Errorf("api: token: %w", err)
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()
	c.log.Debug().Str("method", method).Str("url", url).Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Method: method, URL: url, Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s: %w", url, err)
	}
	return nil
}

// page is one page of a paginated list.
type page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// list reads every page starting at url. Endpoints that answer with a bare JSON array
// are accepted as a single page.
func list[T any](ctx context.Context, c *Client, url string) ([]T, error) {
	var all []T
	seen := map[string]bool{}
	for n := 0; url != "" && n < maxPages; n++ {
		if seen[url] {
			return nil, fmt.Errorf("api: pagination loop at %s", url)
		}
		seen[url] = true

		var raw json.RawMessage
		if err := c.do(ctx, http.MethodGet, url, nil, &raw); err != nil {
			return nil, err
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var items []T
			if err := json.Unmarshal(trimmed, &items); err != nil {
				return nil, fmt.Errorf("api: decode %s: %w", url, err)
			}
			return append(all, items...), nil
		}
		var p page[T]
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, fmt.Errorf("api: decode %s: %w", url, err)
		}
		all = append(all, p.Results...)
		url = ""
		if p.Next != nil {
			url = *p.Next
		}
	}
	if url != "" {
		return nil, fmt.Errorf("api: list stopped after %d pages at %s: %w", maxPages, url, ErrTooManyPages)
	}
	return all, nil
}
