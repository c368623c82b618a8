package reqwest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rhysd/reqwest/header"
)

// RequestBuilder accumulates the properties of a Request through chained
// calls before handing it to a Transport.
//
// The builder carries either an in-progress Request or the first error
// captured along the chain. Once an error is captured it is sticky: every
// later mutating call becomes a harmless pass-through and the chain can run
// to completion without intermediate error checks. Build or Send is where
// the stored error finally surfaces.
//
// A builder is single-use: Build and Send consume it, and any terminal
// call after that returns ErrBuilderConsumed. Builders are not safe for
// concurrent use; each one belongs to a single calling sequence.
type RequestBuilder struct {
	transport Transport
	req       *Request
	err       error
}

// newRequestBuilder wraps an initial outcome. Exactly one of req and err
// is non-nil.
func newRequestBuilder(t Transport, req *Request, err error) *RequestBuilder {
	return &RequestBuilder{transport: t, req: req, err: err}
}

// Body sets the request payload, converting v via the total conversion
// rules ([]byte, string, url.Values, io.Reader, *Body, fmt.Stringer).
// It never fails and is a no-op on an already failed chain.
func (b *RequestBuilder) Body(v any) *RequestBuilder {
	if b.err == nil && b.req != nil {
		b.req.body = bodyFrom(v)
	}
	return b
}

// BodyJSON marshals v as JSON and sets it as the payload with an
// application/json content type. A marshal failure is captured as a
// deferred builder error.
func (b *RequestBuilder) BodyJSON(v any) *RequestBuilder {
	if b.err != nil || b.req == nil {
		return b
	}
	data, err := json.Marshal(v)
	if err != nil {
		b.fail(fmt.Errorf("encode json body: %w", err))
		return b
	}
	b.req.body = &Body{data: data, contentType: "application/json"}
	return b
}

// Header appends a header field to the request. Both name and value are
// validated; the first validation failure anywhere in the chain is
// captured and reported by Build or Send. Repeated names accumulate
// values rather than overwriting. On an already failed chain the call is
// skipped entirely, validation included.
func (b *RequestBuilder) Header(name, value string) *RequestBuilder {
	if b.err != nil || b.req == nil {
		return b
	}
	n, err := header.NewName(name)
	if err != nil {
		b.fail(err)
		return b
	}
	v, err := header.NewValue(value)
	if err != nil {
		b.fail(err)
		return b
	}
	b.req.headers.Add(n, v)
	return b
}

// Headers appends all entries of h in lexical key order, with the same
// per-entry semantics as Header.
func (b *RequestBuilder) Headers(h map[string]string) *RequestBuilder {
	if b.err != nil || b.req == nil {
		return b
	}
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.Header(k, h[k])
		if b.err != nil {
			break
		}
	}
	return b
}

// BasicAuth sets the Authorization header from user and pass.
func (b *RequestBuilder) BasicAuth(user, pass string) *RequestBuilder {
	cred := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
	return b.Header("Authorization", "Basic "+cred)
}

// Query appends a key=value pair to the request URL's query string.
// It never fails and is a no-op on an already failed chain.
func (b *RequestBuilder) Query(key, value string) *RequestBuilder {
	if b.err == nil && b.req != nil && b.req.url != nil {
		q := b.req.url.Query()
		q.Add(key, value)
		b.req.url.RawQuery = q.Encode()
	}
	return b
}

// FetchMode sets the fetch mode token, replacing any previous value.
// It never fails and is a no-op on an already failed chain.
func (b *RequestBuilder) FetchMode(mode FetchMode) *RequestBuilder {
	if b.err == nil && b.req != nil {
		b.req.fetchMode = mode
	}
	return b
}

// CacheMode sets the cache mode token, replacing any previous value.
// It never fails and is a no-op on an already failed chain.
func (b *RequestBuilder) CacheMode(mode CacheMode) *RequestBuilder {
	if b.err == nil && b.req != nil {
		b.req.cacheMode = mode
	}
	return b
}

// Timeout sets a per-request timeout override passed through to the
// transport. It never fails and is a no-op on an already failed chain.
func (b *RequestBuilder) Timeout(d time.Duration) *RequestBuilder {
	if b.err == nil && b.req != nil {
		b.req.timeout = d
	}
	return b
}

// Build resolves the chain without dispatching: it returns the finished
// Request, or the first error captured along the chain. Build consumes
// the builder.
func (b *RequestBuilder) Build() (*Request, error) {
	req, err := b.take()
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Send resolves the chain and dispatches the request. A captured
// construction error is returned immediately and the transport is never
// invoked. Otherwise the Request is handed to the Transport and Send
// blocks until it completes, honoring ctx cancellation. Send consumes
// the builder.
func (b *RequestBuilder) Send(ctx context.Context) (*Response, error) {
	req, err := b.take()
	if err != nil {
		return nil, err
	}
	resp, err := b.transport.Do(ctx, req)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			return nil, err
		}
		rawURL := ""
		if req.url != nil {
			rawURL = req.url.String()
		}
		return nil, transportError(rawURL, err)
	}
	return resp, nil
}

// take extracts the outcome and marks the builder consumed.
func (b *RequestBuilder) take() (*Request, error) {
	if b.req == nil && b.err == nil {
		return nil, ErrBuilderConsumed
	}
	req, err := b.req, b.err
	b.req, b.err = nil, nil
	return req, err
}

// fail captures the first error of the chain, wrapped as a builder error.
// Later failures never reach this point because every chain method checks
// b.err first.
func (b *RequestBuilder) fail(err error) {
	b.err = builderError(err)
	b.req = nil
}

// String renders a debug snapshot: the request fields when the chain is
// valid, the captured error when it is failed. It never panics.
func (b *RequestBuilder) String() string {
	sb := &strings.Builder{}
	sb.WriteString("RequestBuilder")
	switch {
	case b.err != nil:
		fmt.Fprintf(sb, "{error: %v}", b.err)
	case b.req != nil:
		fmtRequestFields(sb, b.req)
	default:
		sb.WriteString("{consumed}")
	}
	return sb.String()
}
