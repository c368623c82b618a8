package reqwest

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Transport is the dispatch contract: it accepts a finished Request and
// performs the network exchange, returning a Response or a transport-level
// failure. Implementations must be safe for concurrent use; a single
// Transport is typically shared by many builders.
type Transport interface {
	// Do sends an HTTP request and returns the response.
	Do(ctx context.Context, req *Request) (*Response, error)
}

// ClientStats holds aggregate statistics for a Client.
type ClientStats struct {
	TotalRequests int64
	TotalDuration time.Duration
	AvgDuration   time.Duration
}

// ClientOptions holds configuration for creating a new Client.
type ClientOptions struct {
	// Timeout is the default timeout for all requests.
	Timeout time.Duration

	// ProxyURL is the proxy URL (HTTP or SOCKS5).
	ProxyURL string

	// FollowRedirects controls whether redirects are followed.
	FollowRedirects bool

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// UserAgent is sent when the request carries no User-Agent header.
	UserAgent string

	// RandomUserAgent enables random User-Agent header selection when the
	// request carries no User-Agent header. Takes precedence over
	// UserAgent.
	RandomUserAgent bool

	// MaxRPS is the maximum requests per second (0 = unlimited).
	MaxRPS float64
}

// Client is the default Transport implementation, backed by net/http.
// Its verb methods (Get, Post, ...) seed a RequestBuilder bound to it.
type Client struct {
	httpClient      *http.Client
	opts            ClientOptions
	limiter         *rate.Limiter
	mu              sync.RWMutex
	totalRequests   int64
	totalDurationNs int64
}

// Compile-time check that Client implements Transport.
var _ Transport = (*Client)(nil)

// NewClient creates a new Client with the given options.
func NewClient(opts ClientOptions) (*Client, error) {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: opts.InsecureSkipVerify,
		},
		// Enable HTTP/2 by default via ForceAttemptHTTP2
		ForceAttemptHTTP2: true,
	}

	// Configure proxy if provided.
	if opts.ProxyURL != "" {
		proxyURL, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("reqwest: invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
	}

	// Configure redirect policy.
	if !opts.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	c := &Client{
		httpClient: client,
		opts:       opts,
	}

	// Configure rate limiter if specified.
	if opts.MaxRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.MaxRPS), 1)
	}

	return c, nil
}

// NewRequest starts a builder for an arbitrary method and URL. The method
// token and URL are validated here; an invalid pair seeds the builder
// already failed, and the failure surfaces at Build or Send.
func (c *Client) NewRequest(method, rawURL string) *RequestBuilder {
	return NewRequest(c, method, rawURL)
}

// Get starts a GET request builder.
func (c *Client) Get(rawURL string) *RequestBuilder {
	return NewRequest(c, http.MethodGet, rawURL)
}

// Post starts a POST request builder.
func (c *Client) Post(rawURL string) *RequestBuilder {
	return NewRequest(c, http.MethodPost, rawURL)
}

// Put starts a PUT request builder.
func (c *Client) Put(rawURL string) *RequestBuilder {
	return NewRequest(c, http.MethodPut, rawURL)
}

// Patch starts a PATCH request builder.
func (c *Client) Patch(rawURL string) *RequestBuilder {
	return NewRequest(c, http.MethodPatch, rawURL)
}

// Delete starts a DELETE request builder.
func (c *Client) Delete(rawURL string) *RequestBuilder {
	return NewRequest(c, http.MethodDelete, rawURL)
}

// Head starts a HEAD request builder.
func (c *Client) Head(rawURL string) *RequestBuilder {
	return NewRequest(c, http.MethodHead, rawURL)
}

// NewRequest starts a builder bound to an arbitrary Transport. Most
// callers use the Client verb methods instead; this entry point exists so
// wrapping transports (caching, test doubles) can seed builders too.
func NewRequest(t Transport, method, rawURL string) *RequestBuilder {
	m := strings.ToUpper(strings.TrimSpace(method))
	if !validMethod(m) {
		return newRequestBuilder(t, nil, builderError(fmt.Errorf("invalid method %q", method)))
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return newRequestBuilder(t, nil, builderError(fmt.Errorf("parse url: %w", err)))
	}
	if u.Scheme == "" || u.Host == "" {
		return newRequestBuilder(t, nil, builderError(fmt.Errorf("url %q is not absolute", rawURL)))
	}
	return newRequestBuilder(t, newRequest(m, u), nil)
}

// validMethod reports whether m is an HTTP method token. Standard methods
// and extension tokens are both accepted.
func validMethod(m string) bool {
	if m == "" {
		return false
	}
	for i := 0; i < len(m); i++ {
		b := m[i]
		switch {
		case b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		case b == '-' || b == '_':
		default:
			return false
		}
	}
	return true
}

// Do sends an HTTP request and returns the response. It applies rate
// limiting, timing measurement, header transfer, mode-token forwarding,
// and optional per-request timeout overrides.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	// Rate limiting
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("reqwest: rate limiter: %w", err)
		}
	}

	rawURL := ""
	if req.URL() != nil {
		rawURL = req.URL().String()
	}

	// Build the stdlib HTTP request.
	var bodyReader io.Reader
	if req.Body().Len() > 0 {
		bodyReader = bytes.NewReader(req.Body().Bytes())
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method(), rawURL, bodyReader)
	if err != nil {
		return nil, transportError(rawURL, err)
	}

	// Transfer headers, preserving repeated names and their order.
	for _, f := range req.Headers().Fields() {
		httpReq.Header.Add(f.Name.String(), f.Value.String())
	}

	// Apply the body's content-type hint unless a Content-Type header was
	// set explicitly.
	if ct := req.Body().ContentType(); ct != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", ct)
	}

	// Forward mode tokens. Their meaning is not interpreted here; the
	// fetch mode travels as Sec-Fetch-Mode, and the cache mode as the
	// equivalent Cache-Control request directive where HTTP defines one.
	if mode := req.FetchMode(); mode != "" {
		httpReq.Header.Set("Sec-Fetch-Mode", string(mode))
	}
	if cc := cacheControlDirective(req.CacheMode()); cc != "" && httpReq.Header.Get("Cache-Control") == "" {
		httpReq.Header.Set("Cache-Control", cc)
	}

	// Fill in a User-Agent if the request did not set one.
	if httpReq.Header.Get("User-Agent") == "" {
		switch {
		case c.opts.RandomUserAgent:
			httpReq.Header.Set("User-Agent", RandomUserAgent())
		case c.opts.UserAgent != "":
			httpReq.Header.Set("User-Agent", c.opts.UserAgent)
		}
	}

	// If the request carries a timeout override we use a shallow copy of
	// the underlying client.
	httpClient := c.httpClient
	if req.Timeout() > 0 {
		cc := *c.httpClient
		cc.Timeout = req.Timeout()
		httpClient = &cc
	}

	// Perform the request with timing.
	start := time.Now()
	httpResp, err := httpClient.Do(httpReq)
	duration := time.Since(start)

	if err != nil {
		return nil, transportError(rawURL, err)
	}
	defer httpResp.Body.Close()

	// Read the response body.
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, transportError(rawURL, fmt.Errorf("reading response body: %w", err))
	}

	// Determine protocol version string.
	protocol := fmt.Sprintf("HTTP/%d.%d", httpResp.ProtoMajor, httpResp.ProtoMinor)

	resp := &Response{
		StatusCode:    httpResp.StatusCode,
		Headers:       httpResp.Header,
		Body:          body,
		ContentLength: httpResp.ContentLength,
		Duration:      duration,
		URL:           httpResp.Request.URL.String(),
		Protocol:      protocol,
	}

	// Update statistics.
	c.mu.Lock()
	c.totalRequests++
	c.totalDurationNs += duration.Nanoseconds()
	c.mu.Unlock()

	return resp, nil
}

// cacheControlDirective maps a cache mode token to the Cache-Control
// request directive HTTP defines for it, or "" when there is none.
func cacheControlDirective(mode CacheMode) string {
	switch mode {
	case CacheNoStore:
		return "no-store"
	case CacheNoCache, CacheReload:
		return "no-cache"
	case CacheOnlyIfCached:
		return "only-if-cached"
	default:
		return ""
	}
}

// SetProxy configures an HTTP or SOCKS5 proxy for subsequent requests.
func (c *Client) SetProxy(proxyURL string) error {
	parsedURL, err := url.Parse(proxyURL)
	if err != nil {
		return fmt.Errorf("reqwest: invalid proxy URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("reqwest: invalid proxy URL: missing scheme or host")
	}

	transport, ok := c.httpClient.Transport.(*http.Transport)
	if !ok {
		return fmt.Errorf("reqwest: cannot set proxy: transport is not *http.Transport")
	}

	transport.Proxy = http.ProxyURL(parsedURL)
	return nil
}

// SetRateLimit sets the maximum number of requests per second.
// A value of 0 or less disables rate limiting.
func (c *Client) SetRateLimit(rps float64) {
	if rps <= 0 {
		c.limiter = nil
		return
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
}

// Stats returns aggregate client statistics.
func (c *Client) Stats() *ClientStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := &ClientStats{
		TotalRequests: c.totalRequests,
		TotalDuration: time.Duration(c.totalDurationNs),
	}
	if c.totalRequests > 0 {
		stats.AvgDuration = time.Duration(c.totalDurationNs / c.totalRequests)
	}
	return stats
}
