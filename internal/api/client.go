// Package api fetches departure boards from a Huxley-style JSON feed.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/mobil-koeln/moko-board/internal/cache"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultCacheTTL  = 30 * time.Second
	defaultRateLimit = time.Second
	userAgent        = "moko-board/1.0"

	// maxBodySize caps a feed document
	maxBodySize = 4 << 20
	// maxErrorBodySize caps how much of a rejected response is read
	maxErrorBodySize = 4 << 10
)

// Cache interface for caching HTTP responses
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// Client fetches departure boards
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	rows       int
	cache      Cache
	limiter    *rate.Limiter
	logger     *log.Logger
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithBaseURL points the client at another feed instance
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithAPIKey sends key in the x-apikey header, as the Rail Data
// Marketplace requires
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithRows sets how many services to request
func WithRows(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.rows = n
		}
	}
}

// WithRateLimit allows at most one request per interval. Zero disables limiting.
func WithRateLimit(interval time.Duration) ClientOption {
	return func(c *Client) {
		if interval <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithLogger sets the logger
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithCache enables caching with the provided cache implementation
func WithCache(cache Cache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithDefaultCache enables an in-memory cache backed by the file cache
func WithDefaultCache() ClientOption {
	return func(c *Client) {
		mem := cache.NewMemoryCache(cache.DefaultMemorySize, defaultCacheTTL)
		fc, err := cache.NewFileCache(cache.DefaultCacheDir(), defaultCacheTTL)
		if err != nil {
			c.cache = mem
			return
		}
		c.cache = cache.NewLayered(mem, fc)
	}
}

// NewClient creates a new API client
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    DefaultBaseURL,
		rows:       DefaultRows,
		limiter:    rate.NewLimiter(rate.Every(defaultRateLimit), 1),
		logger:     log.New(io.Discard),
	}

	for _, opt := range opts {
		opt(c)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidFormat("base URL", "absolute http(s) URL")
	}

	return c, nil
}

// BaseURL returns the feed base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// DeparturesURL returns the URL FetchDepartures requests
func (c *Client) DeparturesURL(origin, destination string) string {
	return DeparturesURL(c.baseURL, origin, destination, c.rows)
}

// FetchDepartures returns the raw departure board for origin, optionally
// filtered to services calling at destination. Every failure satisfies
// errors.Is(err, ErrTransport) except a missing origin.
func (c *Client) FetchDepartures(ctx context.Context, origin, destination string) ([]byte, error) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return nil, ErrMissingField("origin")
	}
	return c.doRequest(ctx, c.DeparturesURL(origin, strings.TrimSpace(destination)))
}

// doRequest performs an HTTP GET request with optional caching
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	if c.cache != nil {
		if data, ok := c.cache.Get(reqURL); ok {
			c.logger.Debug("Feed served from cache", "url", reqURL)
			return data, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Op: "rate limit", Err: fmt.Errorf("%w: %w", ErrTimeout, err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &TransportError{Op: "create request", Err: err}
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("x-correlation-id", requestID)
	if c.apiKey != "" {
		req.Header.Set("x-apikey", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		var ue *url.Error
		if ctx.Err() != nil {
			return nil, &TransportError{Op: "request", Err: fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())}
		}
		if errors.As(err, &ue) && ue.Timeout() {
			return nil, &TransportError{Op: "request", Err: fmt.Errorf("%w: %w", ErrTimeout, err)}
		}
		return nil, &TransportError{Op: "request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Feed request rejected",
			"status", resp.StatusCode,
			"requestID", requestID,
			"elapsed", time.Since(start))
		return nil, apiError(resp, extractEndpoint(reqURL))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, &TransportError{Op: "read response body", Err: err}
	}
	if len(body) > maxBodySize {
		return nil, &TransportError{Op: "read response body", Err: ErrFeedTooLarge}
	}

	c.logger.Debug("Feed fetched",
		"endpoint", extractEndpoint(reqURL),
		"bytes", len(body),
		"requestID", requestID,
		"elapsed", time.Since(start))

	if c.cache != nil {
		if err := c.cache.Set(reqURL, body); err != nil {
			c.logger.Debug("Caching feed failed", "err", err)
		}
	}

	return body, nil
}

// errorBody covers the JSON error shapes feed gateways send
type errorBody struct {
	Message string `json:"message"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

// apiError builds the error for a rejected request, keeping the server's
// message when the body carries one
func apiError(resp *http.Response, endpoint string) *APIError {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err == nil {
		var body errorBody
		if json.Unmarshal(data, &body) == nil {
			msg := strings.TrimSpace(body.Message)
			if msg == "" {
				msg = strings.TrimSpace(body.Error.Message)
			}
			if msg != "" {
				return NewAPIErrorWithMessage(resp.StatusCode, endpoint, msg)
			}
		}
	}
	return NewAPIError(resp.StatusCode, resp.Status, endpoint)
}

// extractEndpoint extracts the endpoint path from a full URL
func extractEndpoint(fullURL string) string {
	u, err := url.Parse(fullURL)
	if err != nil {
		return fullURL
	}
	return u.Path
}
