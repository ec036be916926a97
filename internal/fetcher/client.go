package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bangumi/internal/logger"
)

// DefaultUserAgent is sent with every request; the upstream API rejects
// requests without a browser-like agent.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_14_6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/76.0.3809.132 Safari/537.36"

// Param is a single query parameter. Values are rendered with fmt.Sprint.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered parameter list; it is appended to the URL in order.
type Params []Param

// Getter fetches a JSON document into out.
type Getter interface {
	Fetch(ctx context.Context, rawURL string, params Params, out any) error
}

// StatusError reports a non-success HTTP status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.StatusCode)
}

// Client is the default Getter.
type Client struct {
	httpClient *http.Client
	userAgent  string
	log        logger.Logger
}

var _ Getter = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithUserAgent replaces DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger failures are reported to.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  DefaultUserAgent,
		log:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch GETs rawURL with params appended and decodes the JSON body into out.
func (c *Client) Fetch(ctx context.Context, rawURL string, params Params, out any) error {
	target, err := BuildURL(rawURL, params)
	if err != nil {
		c.log.Warn("Invalid fetch url", logger.String("url", rawURL), logger.Error(err))
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		c.log.Warn("Network error", logger.String("url", target), logger.Duration("latency", latency), logger.Error(err))
		return fmt.Errorf("get %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.log.Warn("Fetch failed",
			logger.Int("status", resp.StatusCode),
			logger.String("url", target),
			logger.Duration("latency", latency),
		)
		return &StatusError{StatusCode: resp.StatusCode, URL: target}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.log.Warn("Invalid JSON response", logger.String("url", target), logger.Error(err))
		return fmt.Errorf("decode %s: %w", target, err)
	}
	c.log.Debug("Fetched", logger.String("url", target), logger.Duration("latency", latency))
	return nil
}

// Get is a typed convenience wrapper around Getter.Fetch.
func Get[T any](ctx context.Context, g Getter, rawURL string, params Params) (*T, error) {
	var out T
	if err := g.Fetch(ctx, rawURL, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BuildURL appends params to rawURL in list order, after any query the URL
// already carries.
func BuildURL(rawURL string, params Params) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if len(params) == 0 {
		return u.String(), nil
	}

	var b strings.Builder
	b.WriteString(u.RawQuery)
	for _, p := range params {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(fmt.Sprint(p.Value)))
	}
	u.RawQuery = b.String()
	return u.String(), nil
}
