package output

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"unicode/utf8"
)

// JSONPrinter outputs structured JSON.
type JSONPrinter struct {
	// Compact outputs single-line JSON when true (no indentation).
	Compact bool
}

// Format returns "json".
func (p *JSONPrinter) Format() string {
	return "json"
}

// jsonOutput is the top-level JSON structure.
type jsonOutput struct {
	SchemaVersion string       `json:"schema_version"`
	Tool          string       `json:"tool"`
	Results       []jsonResult `json:"results"`
}

// jsonResult represents one fetch in JSON.
type jsonResult struct {
	URL             string      `json:"url"`
	Method          string      `json:"method"`
	StatusCode      int         `json:"status_code,omitempty"`
	Protocol        string      `json:"protocol,omitempty"`
	Headers         http.Header `json:"headers,omitempty"`
	Body            string      `json:"body,omitempty"`
	BodyBase64      string      `json:"body_base64,omitempty"`
	DurationSeconds float64     `json:"duration_seconds"`
	CacheHit        bool        `json:"cache_hit"`
	Error           string      `json:"error,omitempty"`
}

// Print writes JSON fetch results to w.
func (p *JSONPrinter) Print(ctx context.Context, results []*Result, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	output := jsonOutput{
		SchemaVersion: "1.0",
		Tool:          "reqwest",
		Results:       make([]jsonResult, 0, len(results)),
	}

	for _, res := range results {
		jr := jsonResult{
			URL:             res.URL,
			Method:          res.Method,
			DurationSeconds: res.Duration.Seconds(),
			CacheHit:        res.CacheHit,
		}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		} else {
			jr.StatusCode = res.StatusCode
			jr.Protocol = res.Protocol
			jr.Headers = res.Headers
			if utf8.Valid(res.Body) {
				jr.Body = string(res.Body)
			} else {
				jr.BodyBase64 = base64.StdEncoding.EncodeToString(res.Body)
			}
		}
		output.Results = append(output.Results, jr)
	}

	enc := json.NewEncoder(w)
	if !p.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(output)
}
