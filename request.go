package reqwest

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rhysd/reqwest/header"
)

// Request is a fully specified HTTP request ready to be handed to a
// Transport. Build one through a Client verb method or NewRequest rather
// than directly, so that method and URL are validated up front.
type Request struct {
	method    string
	url       *url.URL
	headers   *header.Map
	body      *Body
	fetchMode FetchMode
	cacheMode CacheMode

	// timeout is a per-request override for the transport's default
	// timeout. Zero means use the transport default.
	timeout time.Duration
}

// newRequest assembles a Request from an already validated method and URL.
func newRequest(method string, u *url.URL) *Request {
	return &Request{
		method:  method,
		url:     u,
		headers: header.NewMap(),
	}
}

// Method returns the HTTP method token.
func (r *Request) Method() string { return r.method }

// SetMethod replaces the method token. No validation is performed;
// responsibility for validity shifts to the caller.
func (r *Request) SetMethod(method string) { r.method = method }

// URL returns the request URL. The returned value is the live URL, so
// callers may mutate it in place; no re-validation is performed.
func (r *Request) URL() *url.URL { return r.url }

// SetURL replaces the request URL. No validation is performed.
func (r *Request) SetURL(u *url.URL) { r.url = u }

// Headers returns the live header map. Mutating it directly bypasses the
// builder's deferred-error bookkeeping, though entries still have to be
// constructed through the header package's validating types.
func (r *Request) Headers() *header.Map { return r.headers }

// Body returns the request payload, or nil if none is set.
func (r *Request) Body() *Body { return r.body }

// SetBody replaces the request payload. A nil body clears it.
func (r *Request) SetBody(b *Body) { r.body = b }

// FetchMode returns the fetch mode token, or "" if unset.
func (r *Request) FetchMode() FetchMode { return r.fetchMode }

// SetFetchMode replaces the fetch mode token. "" clears it.
func (r *Request) SetFetchMode(m FetchMode) { r.fetchMode = m }

// CacheMode returns the cache mode token, or "" if unset.
func (r *Request) CacheMode() CacheMode { return r.cacheMode }

// SetCacheMode replaces the cache mode token. "" clears it.
func (r *Request) SetCacheMode(m CacheMode) { r.cacheMode = m }

// Timeout returns the per-request timeout override. Zero means use the
// transport default.
func (r *Request) Timeout() time.Duration { return r.timeout }

// SetTimeout replaces the per-request timeout override.
func (r *Request) SetTimeout(d time.Duration) { r.timeout = d }

// Clone returns a deep copy of the Request.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	clone := &Request{
		method:    r.method,
		headers:   r.headers.Clone(),
		body:      r.body.clone(),
		fetchMode: r.fetchMode,
		cacheMode: r.cacheMode,
		timeout:   r.timeout,
	}
	if r.url != nil {
		u := *r.url
		clone.url = &u
	}
	return clone
}

/// String renders a debug snapshot of the request: method, URL and headers.
// Body and mode tokens are intentionally omitted.
func (r *Request) String() string {
	b := &strings.Builder{}
	b.WriteString("Request")
	fmtRequestFields(b, r)
	return b.String()
}

// fmtRequestFields writes the shared method/url/headers snapshot used by
// both Request and RequestBuilder debug output.
func fmtRequestFields(b *strings.Builder, r *Request) {
	rawURL := ""
	if r.url != nil {
		rawURL = r.url.String()
	}
	fmt.Fprintf(b, "{method: %s, url: %q, headers: %s}", r.method, rawURL, r.headers.String())
}
