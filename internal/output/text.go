package output

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
)

const (
	doubleLine = "═" // ═
	singleLine = "─" // ─
	lineWidth  = 50
)

// TextPrinter outputs plain terminal text.
type TextPrinter struct {
	// Verbose controls detail level: 0=status+body, 1=+headers, 2=+timing.
	Verbose int

	// NoBody suppresses body output (e.g. for HEAD requests).
	NoBody bool
}

// Format returns "text".
func (p *TextPrinter) Format() string {
	return "text"
}

// Print writes formatted fetch results to w.
func (p *TextPrinter) Print(ctx context.Context, results []*Result, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b := &strings.Builder{}
	singleBar := strings.Repeat(singleLine, lineWidth)
	doubleBar := strings.Repeat(doubleLine, lineWidth)

	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(b, doubleBar)
		}

		fmt.Fprintf(b, "%s %s\n", res.Method, res.URL)

		if res.Err != nil {
			fmt.Fprintf(b, "Error: %v\n", res.Err)
			continue
		}

		status := fmt.Sprintf("%s %d", res.Protocol, res.StatusCode)
		if res.CacheHit {
			status += " (cached)"
		}
		fmt.Fprintln(b, status)

		if p.Verbose >= 2 {
			fmt.Fprintf(b, "Duration: %v\n", res.Duration)
			fmt.Fprintf(b, "Size: %d bytes\n", len(res.Body))
		}

		if p.Verbose >= 1 && len(res.Headers) > 0 {
			fmt.Fprintln(b, singleBar)
			names := make([]string, 0, len(res.Headers))
			for name := range res.Headers {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				for _, v := range res.Headers[name] {
					fmt.Fprintf(b, "%s: %s\n", name, v)
				}
			}
		}

		if !p.NoBody && len(res.Body) > 0 {
			fmt.Fprintln(b, singleBar)
			b.Write(res.Body)
			if res.Body[len(res.Body)-1] != '\n' {
				b.WriteByte('\n')
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
