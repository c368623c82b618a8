package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/rhysd/reqwest"
	"github.com/rhysd/reqwest/cache"
	"github.com/rhysd/reqwest/internal/output"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch URL [URL...]",
	Short: "Fetch one or more URLs",
	Long: `Fetch performs HTTP requests against the given URLs, building each
request through the fluent chain. Multiple URLs are fetched concurrently.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	// Request flags
	fetchCmd.Flags().StringP("method", "X", "GET", "HTTP method (GET, POST, PUT, etc.)")
	fetchCmd.Flags().StringArrayP("header", "H", nil, "Extra header (repeatable, e.g., -H 'X-Custom: value')")
	fetchCmd.Flags().StringP("data", "d", "", "Request body")
	fetchCmd.Flags().String("json", "", "Request body sent as application/json")
	fetchCmd.Flags().StringArrayP("query", "q", nil, "Query parameter (repeatable, key=value)")
	fetchCmd.Flags().StringP("user", "u", "", "Basic auth credentials (user:password)")
	fetchCmd.Flags().String("fetch-mode", "", "Fetch mode token (cors, no-cors, same-origin, navigate)")
	fetchCmd.Flags().String("cache-mode", "", "Cache mode token (default, no-store, reload, no-cache, force-cache, only-if-cached)")

	// Connection flags
	fetchCmd.Flags().String("proxy", "", "Proxy URL (http://host:port or socks5://host:port)")
	fetchCmd.Flags().Duration("timeout", 30*time.Second, "Request timeout")
	fetchCmd.Flags().Int("threads", 4, "Number of concurrent fetches")
	fetchCmd.Flags().Bool("no-redirect", false, "Do not follow redirects")
	fetchCmd.Flags().BoolP("insecure", "k", false, "Skip TLS certificate verification")
	fetchCmd.Flags().Bool("random-agent", false, "Use random User-Agent")
	fetchCmd.Flags().Float64("max-rps", 0, "Maximum requests per second (0 = unlimited)")

	// Cache flags (cache-db lives on the root command)
	fetchCmd.Flags().Duration("cache-ttl", 0, "Freshness window for cache-mode default (0 = built-in default)")

	// Output flags
	fetchCmd.Flags().StringP("output", "o", "", "Output file path")
	fetchCmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
}

// runFetch is the main fetch command handler. It wires up the pipeline:
// client → optional caching transport → builder chains → printer.
func runFetch(cmd *cobra.Command, args []string) error {
	// ------------------------------------------------------------------ //
	// 1. Read flags
	// ------------------------------------------------------------------ //
	method, _ := cmd.Flags().GetString("method")
	rawHeaders, _ := cmd.Flags().GetStringArray("header")
	data, _ := cmd.Flags().GetString("data")
	jsonData, _ := cmd.Flags().GetString("json")
	rawQuery, _ := cmd.Flags().GetStringArray("query")
	user, _ := cmd.Flags().GetString("user")
	fetchMode, _ := cmd.Flags().GetString("fetch-mode")
	cacheMode, _ := cmd.Flags().GetString("cache-mode")
	proxyURL, _ := cmd.Flags().GetString("proxy")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	threads, _ := cmd.Flags().GetInt("threads")
	noRedirect, _ := cmd.Flags().GetBool("no-redirect")
	insecure, _ := cmd.Flags().GetBool("insecure")
	randomAgent, _ := cmd.Flags().GetBool("random-agent")
	maxRPS, _ := cmd.Flags().GetFloat64("max-rps")
	cacheTTL, _ := cmd.Flags().GetDuration("cache-ttl")
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	verbose, _ := cmd.Flags().GetInt("verbose")
	cacheDB, _ := cmd.Flags().GetString("cache-db")

	if data != "" && jsonData != "" {
		return fmt.Errorf("--data and --json are mutually exclusive")
	}
	if data != "" && method == "GET" {
		method = "POST"
	}

	// ------------------------------------------------------------------ //
	// 2. Logger
	// ------------------------------------------------------------------ //
	logger := newLogger(verbose)

	// ------------------------------------------------------------------ //
	// 3. Client
	// ------------------------------------------------------------------ //
	client, err := reqwest.NewClient(reqwest.ClientOptions{
		Timeout:            timeout,
		ProxyURL:           proxyURL,
		FollowRedirects:    !noRedirect,
		InsecureSkipVerify: insecure,
		RandomUserAgent:    randomAgent,
		MaxRPS:             maxRPS,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	// ------------------------------------------------------------------ //
	// 4. Optional caching transport
	// ------------------------------------------------------------------ //
	var transport reqwest.Transport = client
	if cacheDB != "" {
		store, err := cache.NewSQLiteStore(cacheDB)
		if err != nil {
			return fmt.Errorf("failed to open response cache %q: %w", cacheDB, err)
		}
		defer store.Close()
		transport = cache.NewTransport(client, store, cache.Options{
			TTL:    cacheTTL,
			Logger: logger,
		})
	}

	// ------------------------------------------------------------------ //
	// 5. Context (CTRL+C cancels in-flight fetches)
	// ------------------------------------------------------------------ //
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// ------------------------------------------------------------------ //
	// 6. Fetch all URLs over a worker pool
	// ------------------------------------------------------------------ //
	spec := requestSpec{
		method:    method,
		headers:   rawHeaders,
		data:      data,
		jsonData:  jsonData,
		query:     rawQuery,
		user:      user,
		fetchMode: reqwest.FetchMode(fetchMode),
		cacheMode: reqwest.CacheMode(cacheMode),
	}
	results := fetchAll(ctx, logger, transport, spec, args, threads)

	// ------------------------------------------------------------------ //
	// 7. Print results
	// ------------------------------------------------------------------ //
	printer, err := newPrinter(format, verbose, method)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file %q: %w", outputPath, err)
		}
		defer f.Close()
		out = f
	}

	return printer.Print(ctx, results, out)
}

// requestSpec is the request shape shared by every URL of one fetch run.
type requestSpec struct {
	method    string
	headers   []string
	data      string
	jsonData  string
	query     []string
	user      string
	fetchMode reqwest.FetchMode
	cacheMode reqwest.CacheMode
}

// buildRequest assembles the fluent chain for one URL. Construction errors
// stay inside the builder and surface at Send.
func buildRequest(t reqwest.Transport, spec requestSpec, url string) *reqwest.RequestBuilder {
	b := reqwest.NewRequest(t, spec.method, url)

	for _, raw := range spec.headers {
		// A flag without a colon becomes a header with an empty value, the
		// way curl treats "-H 'Name;'". Invalid names are captured by the
		// builder and reported at Send.
		name, value, _ := strings.Cut(raw, ":")
		b = b.Header(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	for _, raw := range spec.query {
		key, value, _ := strings.Cut(raw, "=")
		b = b.Query(key, value)
	}
	if spec.user != "" {
		u, p, _ := strings.Cut(spec.user, ":")
		b = b.BasicAuth(u, p)
	}
	if spec.data != "" {
		b = b.Body(spec.data)
	}
	if spec.jsonData != "" {
		b = b.Body(reqwest.BodyBytes([]byte(spec.jsonData))).
			Header("Content-Type", "application/json")
	}
	if spec.fetchMode != "" {
		b = b.FetchMode(spec.fetchMode)
	}
	if spec.cacheMode != "" {
		b = b.CacheMode(spec.cacheMode)
	}
	return b
}

// fetchAll dispatches every URL over a bounded worker pool and returns the
// results in input order.
func fetchAll(ctx context.Context, logger *slog.Logger, t reqwest.Transport, spec requestSpec, urls []string, threads int) []*output.Result {
	if threads <= 0 {
		threads = 1
	}

	results := make([]*output.Result, len(urls))
	jobs := make(chan int, len(urls))
	var wg sync.WaitGroup

	for w := 0; w < threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				// Recover from panics so one bad fetch does not take the
				// whole run down.
				func() {
					defer func() {
						if r := recover(); r != nil {
							logger.Error("fetch worker recovered from panic",
								"url", urls[i],
								"panic", fmt.Sprintf("%v", r),
							)
							results[i] = &output.Result{
								URL:    urls[i],
								Method: spec.method,
								Err:    fmt.Errorf("internal error: %v", r),
							}
						}
					}()
					results[i] = fetchOne(ctx, logger, t, spec, urls[i])
				}()
			}
		}()
	}

	for i := range urls {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// fetchOne runs one builder chain to completion.
func fetchOne(ctx context.Context, logger *slog.Logger, t reqwest.Transport, spec requestSpec, url string) *output.Result {
	logger.Debug("fetching", "method", spec.method, "url", url)

	res := &output.Result{URL: url, Method: spec.method}
	resp, err := buildRequest(t, spec, url).Send(ctx)
	if err != nil {
		logger.Debug("fetch failed", "url", url, "error", err)
		res.Err = err
		return res
	}

	res.StatusCode = resp.StatusCode
	res.Protocol = resp.Protocol
	res.Headers = resp.Headers
	res.Body = resp.Body
	res.Duration = resp.Duration
	res.CacheHit = resp.Headers.Get(cache.HitHeader) == "HIT"
	logger.Debug("fetch done", "url", url, "status", resp.StatusCode, "cache_hit", res.CacheHit)
	return res
}

// newLogger builds the slog logger backing -v output.
func newLogger(verbose int) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbose >= 2:
		level = slog.LevelDebug
	case verbose == 1:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newPrinter builds the output printer for the chosen format.
func newPrinter(format string, verbose int, method string) (output.Printer, error) {
	p, err := output.New(format)
	if err != nil {
		return nil, fmt.Errorf("unknown output format %q: %w", format, err)
	}
	if tp, ok := p.(*output.TextPrinter); ok {
		tp.Verbose = verbose
		tp.NoBody = method == "HEAD"
	}
	return p, nil
}
