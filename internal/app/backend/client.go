// Package backend is the HTTP client for the study/club backend API
// (base path /study-somoim). The backend is the system of record; this
// package only moves JSON and maps failures to Go errors.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Header names sent to the backend.
const (
	HeaderUserID    = "x-user-id"
	HeaderRequestID = "x-request-id"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// Client talks to the backend API. It is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	log     *zap.Logger
	metrics *Metrics
	newID   func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for failed calls.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics attaches request metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewTransport returns a pooled transport sized for one backend host.
func NewTransport(maxConns int) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if maxConns > 0 {
		t.MaxIdleConns = maxConns
		t.MaxIdleConnsPerHost = maxConns
	}
	t.IdleConnTimeout = 90 * time.Second
	return t
}

// New creates a Client rooted at baseURL, which must be absolute and should
// include the /study-somoim base path.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("backend: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("backend: base url %q must be absolute http(s)", baseURL)
	}
	c := &Client{
		base:  u,
		http:  &http.Client{Timeout: 30 * time.Second},
		log:   zap.NewNop(),
		newID: func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.base.String() }

// call describes one request.
type call struct {
	method string
	route  string // path template, used as the metrics label
	path   string
	query  url.Values
	userID string
	body   any
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	// cl.path is already escaped; Path must hold the decoded form so an
	// escaped "/" inside an id survives String().
	u := *c.base
	u.RawPath = c.base.EscapedPath() + cl.path
	p, err := url.PathUnescape(u.RawPath)
	if err != nil {
		return fmt.Errorf("backend: build %s %s: %w", cl.method, cl.route, err)
	}
	u.Path = p
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("backend: encode %s %s: %w", cl.method, cl.route, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("backend: build %s %s: %w", cl.method, cl.route, err)
	}
	reqID := c.newID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, reqID)
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.userID != "" {
		req.Header.Set(HeaderUserID, cl.userID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(cl.method, cl.route, "error", time.Since(start))
		c.log.Warn("backend request failed",
			zap.String("method", cl.method),
			zap.String("route", cl.route),
			zap.String("request_id", reqID),
			zap.Error(err))
		return fmt.Errorf("backend: %s %s: %w", cl.method, cl.route, err)
	}
	defer resp.Body.Close()
	c.metrics.observe(cl.method, cl.route, statusClass(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseAPIError(resp, cl.path)
		c.log.Warn("backend returned error",
			zap.String("method", cl.method),
			zap.String("route", cl.route),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
			zap.String("request_id", reqID))
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("backend: read %s %s: %w", cl.method, cl.route, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return errEmptyBody
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("backend: decode %s %s: %w", cl.method, cl.route, err)
	}
	return nil
}

var errEmptyBody = errors.New("backend: empty response body")

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}

// listEnvelope accepts either a bare JSON array or {"data": [...]}.
type listEnvelope[T any] struct {
	items []T
}

func (l *listEnvelope[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, &l.items)
	}
	var env struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	l.items = env.Data
	return nil
}

// itemEnvelope accepts either a bare object or {"data": {...}}.
type itemEnvelope[T any] struct {
	item T
}

func (e *itemEnvelope[T]) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err == nil {
		if data, ok := fields["data"]; ok && len(fields) <= 2 {
			if _, hasID := fields["_id"]; !hasID {
				return json.Unmarshal(data, &e.item)
			}
		}
	}
	return json.Unmarshal(b, &e.item)
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	return q
}

// seg escapes one path segment, including any "/" in it.
func seg(s string) string { return url.PathEscape(s) }
