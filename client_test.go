package reqwest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Helper: create a default test client
// ---------------------------------------------------------------------------

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(ClientOptions{
		Timeout:         5 * time.Second,
		FollowRedirects: true,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

// ---------------------------------------------------------------------------
// Basic GET
// ---------------------------------------------------------------------------

func TestBasicGET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "hello world")
	}))
	defer srv.Close()

	c := newTestClient(t)
	resp, err := c.Get(srv.URL + "/test").Send(context.Background())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if resp.BodyString() != "hello world" {
		t.Errorf("Body = %q, want %q", resp.BodyString(), "hello world")
	}
	if !resp.IsSuccess() {
		t.Error("IsSuccess() = false, want true")
	}
}

// ---------------------------------------------------------------------------
// POST with body and content-type hint
// ---------------------------------------------------------------------------

func TestPOSTWithJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}))
	defer srv.Close()

	c := newTestClient(t)
	resp, err := c.Post(srv.URL+"/submit").
		BodyJSON(map[string]string{"key": "value"}).
		Send(context.Background())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.BodyString() != `{"key":"value"}` {
		t.Errorf("Body = %q", resp.BodyString())
	}

	var decoded map[string]string
	if err := resp.JSON(&decoded); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if decoded["key"] != "value" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestExplicitContentTypeWinsOverHint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/vnd.custom" {
			t.Errorf("Content-Type = %q, want application/vnd.custom", ct)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t)
	_, err := c.Post(srv.URL).
		Header("Content-Type", "application/vnd.custom").
		Body("payload").
		Send(context.Background())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Header transfer, repeated names included
// ---------------------------------------------------------------------------

func TestHeaderTransferPreservesRepeatedNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Values("X-A")
		if len(got) != 2 || got[0] != "1" || got[1] != "2" {
			t.Errorf("X-A on wire = %v, want [1 2]", got)
		}
		if r.Header.Get("X-Custom") != "custom-value" {
			t.Errorf("X-Custom = %q", r.Header.Get("X-Custom"))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t)
	_, err := c.Get(srv.URL).
		Header("X-A", "1").
		Header("X-A", "2").
		Header("X-Custom", "custom-value").
		Send(context.Background())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Mode token forwarding
// ---------------------------------------------------------------------------

func TestModeTokenForwarding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Sec-Fetch-Mode"); got != "cors" {
			t.Errorf("Sec-Fetch-Mode = %q, want cors", got)
		}
		if got := r.Header.Get("Cache-Control"); got != "no-store" {
			t.Errorf("Cache-Control = %q, want no-store", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t)
	_, err := c.Get(srv.URL).
		FetchMode(ModeCORS).
		CacheMode(CacheNoStore).
		Send(context.Background())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Redirect policy
// ---------------------------------------------------------------------------

func redirectServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/redirect" {
			http.Redirect(w, r, "/final", http.StatusFound)
			return
		}
		fmt.Fprint(w, "final page")
	}))
}

func TestRedirectFollowing(t *testing.T) {
	srv := redirectServer(t)
	defer srv.Close()

	c, _ := NewClient(ClientOptions{
		Timeout:         5 * time.Second,
		FollowRedirects: true,
	})
	resp, err := c.Get(srv.URL + "/redirect").Send(context.Background())
	if err != nil {
		t.Fatalf("Send (follow): %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("follow: StatusCode = %d, want 200", resp.StatusCode)
	}
	if !strings.HasSuffix(resp.URL, "/final") {
		t.Errorf("follow: URL = %q, want suffix /final", resp.URL)
	}
}

func TestRedirectNotFollowing(t *testing.T) {
	srv := redirectServer(t)
	defer srv.Close()

	c, _ := NewClient(ClientOptions{
		Timeout:         5 * time.Second,
		FollowRedirects: false,
	})
	resp, err := c.Get(srv.URL + "/redirect").Send(context.Background())
	if err != nil {
		t.Fatalf("Send (no-follow): %v", err)
	}
	if resp.StatusCode != 302 {
		t.Errorf("no-follow: StatusCode = %d, want 302", resp.StatusCode)
	}
}

// ---------------------------------------------------------------------------
// Proxy configuration (test setting, not actual proxy)
// ---------------------------------------------------------------------------

func TestSetProxy(t *testing.T) {
	c := newTestClient(t)
	if err := c.SetProxy("http://127.0.0.1:8080"); err != nil {
		t.Fatalf("SetProxy: %v", err)
	}
	if err := c.SetProxy("://bad-url"); err == nil {
		t.Error("SetProxy with invalid URL should return error")
	}
}

// ---------------------------------------------------------------------------
// Timeout handling
// ---------------------------------------------------------------------------

func TestTimeoutHandling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := NewClient(ClientOptions{Timeout: 100 * time.Millisecond})
	_, err := c.Get(srv.URL).Send(context.Background())
	if err == nil {
		t.Error("expected timeout error, got nil")
	}
	if !IsTransportError(err) {
		t.Errorf("error kind = %v, want transport error", err)
	}
}

func TestPerRequestTimeoutOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// Client has 5s timeout, but the builder overrides to 100ms.
	c, _ := NewClient(ClientOptions{Timeout: 5 * time.Second})
	_, err := c.Get(srv.URL).
		Timeout(100 * time.Millisecond).
		Send(context.Background())
	if err == nil {
		t.Error("expected timeout error from per-request override, got nil")
	}
}

// ---------------------------------------------------------------------------
// User-Agent injection
// ---------------------------------------------------------------------------

func TestUserAgentOption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "reqwest-test/1.0" {
			t.Errorf("User-Agent = %q, want reqwest-test/1.0", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := NewClient(ClientOptions{
		Timeout:   5 * time.Second,
		UserAgent: "reqwest-test/1.0",
	})
	if _, err := c.Get(srv.URL).Send(context.Background()); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestRandomUserAgentHeader(t *testing.T) {
	var seen atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := NewClient(ClientOptions{
		Timeout:         5 * time.Second,
		RandomUserAgent: true,
	})
	if _, err := c.Get(srv.URL).Send(context.Background()); err != nil {
		t.Fatalf("Send: %v", err)
	}

	ua, _ := seen.Load().(string)
	found := false
	for _, agent := range userAgents {
		if ua == agent {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("User-Agent %q is not from the userAgents pool", ua)
	}
}

func TestExplicitUserAgentNotOverridden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "explicit/2.0" {
			t.Errorf("User-Agent = %q, want explicit/2.0", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := NewClient(ClientOptions{
		Timeout:         5 * time.Second,
		RandomUserAgent: true,
	})
	_, err := c.Get(srv.URL).
		Header("User-Agent", "explicit/2.0").
		Send(context.Background())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Stats tracking and rate limiting
// ---------------------------------------------------------------------------

func TestStatsTracking(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t)
	for i := 0; i < 3; i++ {
		if _, err := c.Get(srv.URL).Send(context.Background()); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
	}

	stats := c.Stats()
	if stats.TotalRequests != 3 {
		t.Errorf("TotalRequests = %d, want 3", stats.TotalRequests)
	}
	if stats.AvgDuration <= 0 {
		t.Errorf("AvgDuration = %v, want > 0", stats.AvgDuration)
	}
}

func TestSetRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t)
	c.SetRateLimit(10) // 10 rps -> ~100ms between requests

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := c.Get(srv.URL).Send(context.Background()); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
	}
	// First request is immediate; the next two wait ~100ms each.
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("3 requests at 10 rps took %v, want >= 150ms", elapsed)
	}

	c.SetRateLimit(0)
	if c.limiter != nil {
		t.Error("SetRateLimit(0) should disable the limiter")
	}
}

// ---------------------------------------------------------------------------
// Context cancellation
// ---------------------------------------------------------------------------

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := c.Get(srv.URL).Send(ctx)
	if err == nil {
		t.Error("expected cancellation error, got nil")
	}
}

// ---------------------------------------------------------------------------
// Status codes
// ---------------------------------------------------------------------------

func TestStatusCodeHandling(t *testing.T) {
	codes := []int{200, 302, 403, 404, 500}
	for _, code := range codes {
		code := code
		t.Run(fmt.Sprintf("status_%d", code), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(code)
			}))
			defer srv.Close()

			c, _ := NewClient(ClientOptions{
				Timeout:         5 * time.Second,
				FollowRedirects: false, // don't follow 302
			})
			resp, err := c.Get(srv.URL).Send(context.Background())
			if err != nil {
				t.Fatalf("Send: %v", err)
			}
			if resp.StatusCode != code {
				t.Errorf("StatusCode = %d, want %d", resp.StatusCode, code)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Interface satisfaction and method validation
// ---------------------------------------------------------------------------

func TestClientSatisfiesTransport(t *testing.T) {
	var _ Transport = newTestClient(t)
}

func TestValidMethod(t *testing.T) {
	valid := []string{"GET", "POST", "PURGE", "X-CUSTOM"}
	for _, m := range valid {
		if !validMethod(m) {
			t.Errorf("validMethod(%q) = false, want true", m)
		}
	}
	invalid := []string{"", "GE T", "GET\n", "GET/1"}
	for _, m := range invalid {
		if validMethod(m) {
			t.Errorf("validMethod(%q) = true, want false", m)
		}
	}
}
