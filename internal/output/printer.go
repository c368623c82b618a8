// Package output provides formatters for fetch result output.
package output

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Result is the outcome of one fetch: either a response summary or an
// error.
type Result struct {
	URL        string
	Method     string
	StatusCode int
	Protocol   string
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
	CacheHit   bool
	Err        error
}

// Printer writes fetch results in a specific format.
type Printer interface {
	// Format returns the format name (e.g., "text", "json").
	Format() string

	// Print writes the formatted results to w.
	Print(ctx context.Context, results []*Result, w io.Writer) error
}

// New creates a printer by format name ("text" or "json").
// The format name is case-insensitive.
func New(format string) (Printer, error) {
	switch strings.ToLower(format) {
	case "text":
		return &TextPrinter{}, nil
	case "json":
		return &JSONPrinter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %q", format)
	}
}
