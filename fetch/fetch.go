// Package fetch performs the plain-HTTP leg of a fetch attempt: extension
// skipping, retry with backoff, user-agent/referer rotation, per-host
// tunables, and the soft-block heuristics that decide whether a page
// needs to be escalated to headless rendering.
package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"sitetext/hostconfig"
	"sitetext/urlmap"
)

// Result is a completed fetch attempt.
type Result struct {
	HTML     string
	FinalURL string
	Status   int
}

// Reason tags why a fetch did not produce usable content, per the error
// taxonomy: skip-ext, http-status:N, soft-block, login-page, error-page,
// too-large, transport.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonSkipExt     Reason = "skip-ext"
	ReasonSoftBlock   Reason = "soft-block"
	ReasonLoginPage   Reason = "login-page"
	ReasonErrorPage   Reason = "error-page"
	ReasonTooLarge    Reason = "too-large"
	ReasonTransport   Reason = "transport"
)

// StatusReason formats the http-status:N reason.
func StatusReason(code int) Reason {
	return Reason(fmt.Sprintf("http-status:%d", code))
}

const maxBodyBytes = 5 * 1024 * 1024 // 5MB, matches the render backend's cap

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

var referers = []string{
	"https://www.google.com/",
	"https://duckduckgo.com/",
	"https://www.bing.com/",
	"",
}

func randomUserAgent() string { return userAgents[rand.Intn(len(userAgents))] }
func randomReferer() string   { return referers[rand.Intn(len(referers))] }

// Client performs HTTP fetches with per-host connection pooling and a
// request counter so the underlying transport is recycled periodically,
// matching the source system's every-50-requests session rotation.
type Client struct {
	clients  map[bool]*http.Client // keyed by InsecureSkipVerify
	requests int
}

// NewClient returns a Client with separate transports for verified and
// unverified hosts.
func NewClient() *Client {
	return &Client{clients: make(map[bool]*http.Client)}
}

func (c *Client) clientFor(insecure bool) *http.Client {
	if cl, ok := c.clients[insecure]; ok {
		return cl
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
	}
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	cl := &http.Client{Transport: transport}
	c.clients[insecure] = cl
	return cl
}

// recycle drops and rebuilds transports every 50 requests, so long runs
// don't accumulate stale keep-alive connections against flaky hosts.
func (c *Client) recycle() {
	c.requests++
	if c.requests%50 == 0 {
		c.clients = make(map[bool]*http.Client)
	}
}

// Simple performs up to 3 attempts at a plain GET, honoring the host's
// timeout and TLS policy, rotating user agent and referer each attempt.
func (c *Client) Simple(ctx context.Context, targetURL string, host string) (Result, Reason, error) {
	if urlmap.ShouldSkip(targetURL) {
		return Result{}, ReasonSkipExt, nil
	}

	cfg := hostconfig.For(host)
	var lastErr error

	for attempt := 0; attempt < 3; attempt++ {
		c.recycle()

		reqCtx, cancel := context.WithTimeout(ctx, cfg.TotalTimeout)
		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, targetURL, nil)
		if err != nil {
			cancel()
			return Result{}, ReasonTransport, err
		}
		req.Header.Set("User-Agent", randomUserAgent())
		if ref := randomReferer(); ref != "" {
			req.Header.Set("Referer", ref)
		}
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := c.clientFor(cfg.InsecureSkipVerify).Do(req)
		cancel()
		if err != nil {
			lastErr = err
			time.Sleep(backoff(attempt, cfg.RetryBaseDelay))
			continue
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
		resp.Body.Close()
		if err != nil {
			lastErr = err
			time.Sleep(backoff(attempt, cfg.RetryBaseDelay))
			continue
		}
		if len(body) > maxBodyBytes {
			return Result{}, ReasonTooLarge, nil
		}

		finalURL := targetURL
		if resp.Request != nil && resp.Request.URL != nil {
			finalURL = resp.Request.URL.String()
		}

		if resp.StatusCode >= 400 {
			return Result{HTML: string(body), FinalURL: finalURL, Status: resp.StatusCode},
				StatusReason(resp.StatusCode), nil
		}

		html := string(body)
		if reason := classify(html, finalURL); reason != ReasonNone {
			return Result{HTML: html, FinalURL: finalURL, Status: resp.StatusCode}, reason, nil
		}

		return Result{HTML: html, FinalURL: finalURL, Status: resp.StatusCode}, ReasonNone, nil
	}

	return Result{}, ReasonTransport, lastErr
}

func backoff(attempt int, base time.Duration) time.Duration {
	d := base * time.Duration(1<<attempt)
	jitter := time.Duration(rand.Int63n(int64(base)))
	return d + jitter
}

// classify runs the soft-block / login / error-page heuristics over a
// fetched body.
func classify(html, finalURL string) Reason {
	lower := strings.ToLower(html)

	if len(html) < 500 {
		if strings.Contains(lower, "access denied") || strings.Contains(lower, "javascript required") ||
			strings.Contains(lower, "enable javascript") {
			return ReasonSoftBlock
		}
	}
	if isLoginPage(lower, finalURL) {
		return ReasonLoginPage
	}
	if isErrorPage(lower) {
		return ReasonErrorPage
	}

	weakText := visibleTextLen(html) < 200
	lowStructure := strings.Count(lower, "<p") < 5 && strings.Count(lower, "<div") < 5
	jsWarning := strings.Contains(lower, "javascript required") || strings.Contains(lower, "please enable javascript")
	jsSuspect := strings.Contains(html, "zmi.js") || strings.Contains(html, "/++resource++") ||
		strings.Contains(lower, "<noscript")

	if jsWarning || (weakText && lowStructure) || (weakText && jsSuspect) {
		return ReasonSoftBlock
	}
	return ReasonNone
}

var loginPathTokens = []string{"/login", "/signin", "/sign-in", "/auth/", "/sso/"}

func isLoginPage(lower, finalURL string) bool {
	lowerURL := strings.ToLower(finalURL)
	for _, tok := range loginPathTokens {
		if strings.Contains(lowerURL, tok) {
			return true
		}
	}
	return strings.Contains(lower, `type="password"`) &&
		(strings.Contains(lower, "sign in") || strings.Contains(lower, "log in") || strings.Contains(lower, "anmelden"))
}

func isErrorPage(lower string) bool {
	markers := []string{"404 not found", "page not found", "seite nicht gefunden", "403 forbidden", "500 internal server error"}
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func visibleTextLen(html string) int {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return len(strings.TrimSpace(b.String()))
}
