package reqwest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Response is the result of a successful dispatch.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Headers contains the response headers.
	Headers http.Header

	// Body is the raw response body. Bodies are fully buffered; there is
	// no streaming.
	Body []byte

	// ContentLength is the content length from the response header.
	ContentLength int64

	// Duration is the round-trip time for the request.
	Duration time.Duration

	// URL is the final URL after any redirects.
	URL string

	// Protocol is the protocol version (e.g., "HTTP/1.1", "HTTP/2.0").
	Protocol string
}

// BodyString returns the response body as a string.
func (r *Response) BodyString() string {
	return string(r.Body)
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("reqwest: decode response body: %w", err)
	}
	return nil
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
