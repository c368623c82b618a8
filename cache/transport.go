package cache

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rhysd/reqwest"
)

// HitHeader is set on responses served from the cache so callers can tell
// a local hit from a network round trip.
const HitHeader = "X-Reqwest-Cache"

// DefaultTTL is the freshness window used for CacheDefault requests when
// Options.TTL is zero.
const DefaultTTL = 5 * time.Minute

// ErrOnlyIfCachedMiss is the cause of the transport error returned for an
// only-if-cached request that has no stored response.
var ErrOnlyIfCachedMiss = errors.New("cache: no stored response for only-if-cached request")

// Options configures a caching Transport.
type Options struct {
	// TTL is the freshness window for CacheDefault requests. Zero means
	// DefaultTTL.
	TTL time.Duration

	// Logger receives debug-level hit/miss records. Nil disables logging.
	Logger *slog.Logger
}

// Transport wraps an upstream reqwest.Transport with a response cache.
// It is the single component that interprets the request's cache-mode
// token; everything upstream treats the token as opaque.
//
// Only GET requests are cached, and only 200 responses are stored.
type Transport struct {
	upstream reqwest.Transport
	store    Store
	ttl      time.Duration
	logger   *slog.Logger
}

// Compile-time check that Transport implements reqwest.Transport.
var _ reqwest.Transport = (*Transport)(nil)

// NewTransport wraps upstream with the given store.
func NewTransport(upstream reqwest.Transport, store Store, opts Options) *Transport {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Transport{
		upstream: upstream,
		store:    store,
		ttl:      ttl,
		logger:   opts.Logger,
	}
}

// Do dispatches req, consulting the cache according to its cache mode:
//
//   - no-store: bypass the cache entirely, neither reading nor writing
//   - reload, no-cache: go to the network, then overwrite the stored entry
//   - force-cache: serve any stored entry regardless of age
//   - only-if-cached: serve the stored entry or fail without touching the
//     network
//   - default (or unset): serve a stored entry younger than the TTL,
//     otherwise go to the network and store the result
func (t *Transport) Do(ctx context.Context, req *reqwest.Request) (*reqwest.Response, error) {
	mode := req.CacheMode()
	if req.Method() != http.MethodGet || mode == reqwest.CacheNoStore {
		return t.upstream.Do(ctx, req)
	}

	rawURL := ""
	if req.URL() != nil {
		rawURL = req.URL().String()
	}

	switch mode {
	case reqwest.CacheReload, reqwest.CacheNoCache:
		return t.fetchAndStore(ctx, req, rawURL)

	case reqwest.CacheForceCache:
		if entry := t.lookup(ctx, req.Method(), rawURL); entry != nil {
			return t.serve(entry), nil
		}
		return t.fetchAndStore(ctx, req, rawURL)

	case reqwest.CacheOnlyIfCached:
		if entry := t.lookup(ctx, req.Method(), rawURL); entry != nil {
			return t.serve(entry), nil
		}
		return nil, reqwest.NewTransportError(rawURL, ErrOnlyIfCachedMiss)

	default:
		if entry := t.lookup(ctx, req.Method(), rawURL); entry != nil && entry.Age() <= t.ttl {
			return t.serve(entry), nil
		}
		return t.fetchAndStore(ctx, req, rawURL)
	}
}

// lookup reads the store, treating lookup failures as misses: a broken
// cache must not break fetches.
func (t *Transport) lookup(ctx context.Context, method, url string) *Entry {
	entry, err := t.store.Get(ctx, method, url)
	if err != nil {
		t.log(ctx, slog.LevelWarn, "cache lookup failed", "url", url, "error", err)
		return nil
	}
	if entry == nil {
		t.log(ctx, slog.LevelDebug, "cache miss", "url", url)
		return nil
	}
	t.log(ctx, slog.LevelDebug, "cache hit", "url", url, "age", entry.Age())
	return entry
}

// fetchAndStore goes to the network and records a 200 response.
func (t *Transport) fetchAndStore(ctx context.Context, req *reqwest.Request, rawURL string) (*reqwest.Response, error) {
	resp, err := t.upstream.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	entry := &Entry{
		Method:     req.Method(),
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
		Protocol:   resp.Protocol,
	}
	if err := t.store.Put(ctx, entry); err != nil {
		t.log(ctx, slog.LevelWarn, "cache store failed", "url", rawURL, "error", err)
	}
	return resp, nil
}

// serve converts a stored entry back into a response, marked with HitHeader.
func (t *Transport) serve(entry *Entry) *reqwest.Response {
	headers := make(http.Header, len(entry.Headers)+1)
	for k, vs := range entry.Headers {
		headers[k] = append([]string(nil), vs...)
	}
	headers.Set(HitHeader, "HIT")

	return &reqwest.Response{
		StatusCode:    entry.StatusCode,
		Headers:       headers,
		Body:          entry.Body,
		ContentLength: int64(len(entry.Body)),
		URL:           entry.URL,
		Protocol:      entry.Protocol,
	}
}

func (t *Transport) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if t.logger != nil {
		t.logger.Log(ctx, level, msg, args...)
	}
}
