// Package testutil provides test utilities including an echo server that
// reports the request it received, for integration testing of the reqwest
// client and its builder chain.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"
)

// EchoedHeader is one header field from the request. Fields are grouped
// by name; within a name the wire order of values is preserved.
type EchoedHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Echo is the JSON document the echo server answers with.
type Echo struct {
	Method  string         `json:"method"`
	Path    string         `json:"path"`
	Query   string         `json:"query"`
	Headers []EchoedHeader `json:"headers"`
	Body    string         `json:"body"`
}

// EchoOptions tunes the echo server's behavior.
type EchoOptions struct {
	// StatusCode is the response status. Zero means 200.
	StatusCode int

	// Delay is slept before answering, for timeout tests.
	Delay time.Duration
}

// NewEchoServer starts an httptest server that answers every request with
// a JSON Echo of what it received. The caller owns the returned server and
// must Close it.
func NewEchoServer(opts EchoOptions) *httptest.Server {
	status := opts.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if opts.Delay > 0 {
			time.Sleep(opts.Delay)
		}

		body, _ := io.ReadAll(r.Body)

		echo := Echo{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(body),
		}
		// net/http canonicalizes names but preserves per-name value order;
		// replay values grouped by name.
		for name, values := range r.Header {
			for _, v := range values {
				echo.Headers = append(echo.Headers, EchoedHeader{Name: name, Value: v})
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(echo)
	}))
}

// HeaderValues extracts all echoed values for name, in wire order.
func (e *Echo) HeaderValues(name string) []string {
	var vals []string
	for _, h := range e.Headers {
		if h.Name == name {
			vals = append(vals, h.Value)
		}
	}
	return vals
}
