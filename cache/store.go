// Package cache provides a persistent HTTP response cache and a Transport
// wrapper that consults it according to the request's cache-mode token.
package cache

import (
	"context"
	"net/http"
	"time"
)

// Entry is a cached response for a method+URL pair.
type Entry struct {
	ID         string      `json:"id"`
	Method     string      `json:"method"`
	URL        string      `json:"url"`
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`
	Body       []byte      `json:"body"`
	Protocol   string      `json:"protocol"`
	StoredAt   time.Time   `json:"stored_at"`
}

// Age returns how long ago the entry was stored.
func (e *Entry) Age() time.Duration {
	return time.Since(e.StoredAt)
}

// Summary is a lightweight overview of a cached entry.
type Summary struct {
	ID         string    `json:"id"`
	Method     string    `json:"method"`
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code"`
	Size       int64     `json:"size"`
	StoredAt   time.Time `json:"stored_at"`
}

// Store persists and retrieves cached responses.
type Store interface {
	// Get returns the entry for method+url, or (nil, nil) when absent.
	Get(ctx context.Context, method, url string) (*Entry, error)

	// Put stores an entry, replacing any previous one for the same
	// method+url pair.
	Put(ctx context.Context, entry *Entry) error

	// Delete removes an entry by its ID.
	Delete(ctx context.Context, id string) error

	// List returns summaries of all entries, most recent first.
	List(ctx context.Context) ([]*Summary, error)

	// Cleanup removes entries older than maxAge and returns how many
	// were deleted. A maxAge of 0 removes everything.
	Cleanup(ctx context.Context, maxAge time.Duration) (int64, error)

	Close() error
}
