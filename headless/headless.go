// Package headless renders a page in a real browser when the plain HTTP
// fetch comes back soft-blocked or JS-gated. It is the render backend
// adapter: each call gets its own fresh chromedp context bounded by a
// semaphore, so only a limited number of browser tabs run at once.
package headless

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"golang.org/x/sync/semaphore"

	"sitetext/hostconfig"
)

const maxRenderedBytes = 5 * 1024 * 1024

// stealthScript masks the automation signals a bot-detection script
// would otherwise key on, so the render path looks like a regular
// browser tab rather than a headless one.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
window.chrome = { runtime: {}, loadTimes: function() {}, csi: function() {}, app: {} };
Object.defineProperty(navigator, 'plugins', {
    get: () => [
        { name: 'Chrome PDF Plugin', filename: 'internal-pdf-viewer', description: 'Portable Document Format' },
        { name: 'Chrome PDF Viewer', filename: 'mhjfbmdgcfjbbpaeojofohoefgiehjai', description: '' },
        { name: 'Native Client', filename: 'internal-nacl-plugin', description: '' },
    ],
});
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
    parameters.name === 'notifications' ?
        Promise.resolve({ state: Notification.permission }) :
        originalQuery(parameters)
);
`

var consentSelectors = []string{
	`button[id*="accept" i]`,
	`button[class*="accept" i]`,
	`button[id*="consent" i]`,
	`a[id*="accept" i]`,
	`#onetrust-accept-btn-handler`,
}

// Result is a completed render.
type Result struct {
	HTML     string
	FinalURL string
}

// Renderer bounds concurrent browser tabs with a semaphore sized
// max_workers/6 (minimum 4), matching the source system's js_semaphore.
type Renderer struct {
	sem *semaphore.Weighted
}

// NewRenderer sizes the render pool from the worker-pool width.
func NewRenderer(maxWorkers int) *Renderer {
	n := maxWorkers / 6
	if n < 4 {
		n = 4
	}
	return &Renderer{sem: semaphore.NewWeighted(int64(n))}
}

// Render loads targetURL in a fresh headless browser tab, clicks a
// consent banner if one appears, waits render_wait_ms, scrolls, and
// returns the rendered HTML. Up to 3 attempts run, each in
// its own fresh browser context, with exponential backoff between them,
// bounded for the whole call by the render-pool semaphore.
func (r *Renderer) Render(ctx context.Context, targetURL, host string) (Result, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return Result{}, fmt.Errorf("headless: acquiring render slot: %w", err)
	}
	defer r.sem.Release(1)

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Result{}, ctx.Err()
			case <-time.After(renderBackoff(attempt)):
			}
		}
		result, err := r.renderOnce(ctx, targetURL, host)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return Result{}, fmt.Errorf("headless: exhausted retries rendering %s: %w", targetURL, lastErr)
}

func renderBackoff(attempt int) time.Duration {
	base := time.Second * time.Duration(1<<(attempt-1))
	jitter := time.Duration(rand.Int63n(int64(time.Second)))
	return base + jitter
}

func (r *Renderer) renderOnce(ctx context.Context, targetURL, host string) (Result, error) {
	cfg := hostconfig.For(host)

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("headless", "new"),
		chromedp.WindowSize(1920, 1080),
	}
	if cfg.InsecureSkipVerify {
		allocOpts = append(allocOpts, chromedp.Flag("ignore-certificate-errors", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()

	timeoutCtx, timeoutCancel := context.WithTimeout(allocCtx, cfg.TotalTimeout+15*time.Second)
	defer timeoutCancel()

	browserCtx, browserCancel := chromedp.NewContext(timeoutCtx)
	defer browserCancel()

	var html, finalURL string
	err := chromedp.Run(browserCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
		network.SetExtraHTTPHeaders(network.Headers(map[string]interface{}{
			"Accept-Language": "en-US,en;q=0.9,de;q=0.8",
		})),
		navigateWithFallback(targetURL),
		clickConsent(cfg.ConsentClickTimeout),
		chromedp.Sleep(cfg.RenderWait),
		scrollPage(),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		return Result{}, fmt.Errorf("headless: rendering %s: %w", targetURL, err)
	}
	if len(html) > maxRenderedBytes {
		return Result{}, fmt.Errorf("headless: rendered page exceeds size cap")
	}
	if isLoginOrAuthURL(finalURL) {
		return Result{}, fmt.Errorf("headless: final URL looks like a login/auth redirect: %s", finalURL)
	}

	return Result{HTML: html, FinalURL: finalURL}, nil
}

// navigateWithFallback navigates to targetURL (chromedp.Navigate waits for
// the load event), then waits up to 8s for <body> to be ready; if it is
// not, it sleeps a fixed 3s and goes on with whatever DOM is there. There
// is no separate network-idle or DOMContentLoaded stage, and a failed
// Navigate is returned as an error without any retry at a looser wait.
func navigateWithFallback(targetURL string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := chromedp.Navigate(targetURL).Do(ctx); err != nil {
			return err
		}
		waitCtx, cancel := context.WithTimeout(ctx, 8*time.Second)
		defer cancel()
		if err := chromedp.WaitReady("body", chromedp.ByQuery).Do(waitCtx); err != nil {
			// Page never fully settled; give it a fixed grace window and
			// move on with whatever DOM is there.
			chromedp.Sleep(3 * time.Second).Do(ctx)
		}
		return nil
	})
}

func clickConsent(timeout time.Duration) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		clickCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		for _, sel := range consentSelectors {
			var exists bool
			_ = chromedp.Evaluate(`document.querySelector('`+sel+`') !== null`, &exists).Do(clickCtx)
			if exists {
				_ = chromedp.Click(sel, chromedp.ByQuery).Do(clickCtx)
				chromedp.Sleep(300 * time.Millisecond).Do(clickCtx)
				return nil
			}
		}
		return nil
	})
}

// scrollPage steps down the page 300px at a time to trigger lazy-loaded
// content, then resets scroll position to the top before capture.
func scrollPage() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for i := 0; i < 10; i++ {
			if err := chromedp.Evaluate(`window.scrollBy(0, 300)`, nil).Do(ctx); err != nil {
				return nil
			}
			chromedp.Sleep(100 * time.Millisecond).Do(ctx)
		}
		return chromedp.Evaluate(`window.scrollTo(0, 0)`, nil).Do(ctx)
	})
}

func isLoginOrAuthURL(u string) bool {
	lower := strings.ToLower(u)
	for _, tok := range []string{"/login", "/signin", "/sign-in", "/auth/", "/sso/"} {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}
