// Package coordinator drives the end-to-end pipeline: it takes the tasks
// loaded by urlmap, orders them by depth, applies the depth and URL
// limits, and runs a bounded worker pool that fetches, cleans, extracts,
// detects language, and chunks each page, writing the two summary files
// the pipeline produces.
package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"sitetext/chunk"
	"sitetext/chunkdoc"
	"sitetext/clean"
	"sitetext/extract"
	"sitetext/fetch"
	"sitetext/headless"
	"sitetext/langdetect"
	"sitetext/urlmap"
)

const (
	processedURLsCap  = 10_000
	contentHashesCap  = 100_000
	fullTextHashesCap = 100_000
)

// Options configures a pipeline run.
type Options struct {
	MaxDepth   int // 0 means unbounded
	Limit      int // 0 means unbounded
	BatchSize  int
	MaxWorkers int
	ChunkOpts  chunk.Options

	// ExcludedKeywords gates whether a page's structural chunks are even
	// considered: if the page title contains one of these words (case
	// insensitive), the structural chunker is skipped for it entirely,
	// beyond the login/error-page rejection the structural chunker already
	// does on its own. Defaulted to the source system's list.
	ExcludedKeywords []string
}

// defaultExcludedKeywords mirrors processing.py's Processor.excluded_keywords
// default list.
var defaultExcludedKeywords = []string{"cookie", "privacy", "disclaimer", "login", "password"}

func titleExcluded(title string, keywords []string) bool {
	lower := strings.ToLower(title)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// DefaultOptions sizes the worker pool from the host's CPU count, capped
// at 200, and picks a batch size of min(30, 2*workers) -- the host-RAM
// half of the source formula needs a cgroup/meminfo read this package
// doesn't have a portable way to do, so it's approximated by CPU count
// alone here.
func DefaultOptions() Options {
	workers := runtime.NumCPU() * 2
	if workers > 200 {
		workers = 200
	}
	if workers < 4 {
		workers = 4
	}
	batch := workers * 2
	if batch > 30 {
		batch = 30
	}
	return Options{
		BatchSize: batch, MaxWorkers: workers, ChunkOpts: chunk.DefaultOptions(),
		ExcludedKeywords: defaultExcludedKeywords,
	}
}

// lruDedup adapts a hashicorp/golang-lru cache to chunk.Dedup.
type lruDedup struct {
	c *lru.Cache[string, struct{}]
}

func newLRUDedup(size int) *lruDedup {
	c, err := lru.New[string, struct{}](size)
	if err != nil {
		panic(fmt.Sprintf("coordinator: building LRU cache: %v", err))
	}
	return &lruDedup{c: c}
}

func (d *lruDedup) Seen(hash string) bool {
	if d.c.Contains(hash) {
		return true
	}
	d.c.Add(hash, struct{}{})
	return false
}

// Coordinator runs the pipeline against a fetch client and render
// backend, tracking results behind bounded LRU sets so a long-running
// crawl never grows memory unboundedly.
type Coordinator struct {
	// RunID is a per-run correlation id, stamped into error_urls entries
	// and available to the caller for log correlation across a run.
	RunID string

	opts      Options
	client    *fetch.Client
	renderer  *headless.Renderer
	cleaner   *clean.Cleaner
	extractor *extract.Extractor

	processedURLs *lru.Cache[string, bool]
	contentDedup  *lruDedup
	fullTextDedup *lruDedup

	mu          sync.Mutex
	redirected  map[string]string
	errored     map[string]string
	pageRecords []chunkdoc.PageRecord
	docsByURL   map[string][]chunkdoc.Document
}

// New builds a Coordinator from opts, defaulting anything left zero.
func New(opts Options) *Coordinator {
	defaults := DefaultOptions()
	if opts.MaxWorkers == 0 {
		opts.MaxWorkers = defaults.MaxWorkers
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = defaults.BatchSize
	}
	if opts.ChunkOpts == (chunk.Options{}) {
		opts.ChunkOpts = defaults.ChunkOpts
	}
	if opts.ExcludedKeywords == nil {
		opts.ExcludedKeywords = defaultExcludedKeywords
	}
	processedURLs, _ := lru.New[string, bool](processedURLsCap)
	return &Coordinator{
		RunID:         uuid.NewString(),
		opts:          opts,
		client:        fetch.NewClient(),
		renderer:      headless.NewRenderer(opts.MaxWorkers),
		cleaner:       clean.New(),
		extractor:     extract.New(),
		processedURLs: processedURLs,
		contentDedup:  newLRUDedup(contentHashesCap),
		fullTextDedup: newLRUDedup(fullTextHashesCap),
		redirected:    make(map[string]string),
		errored:       make(map[string]string),
		docsByURL:     make(map[string][]chunkdoc.Document),
	}
}

// Result is what a single page's processing produces.
type Result struct {
	URL   string
	Docs  []chunkdoc.Document
	Error error
}

// Run processes tasks in depth order, batch by batch, with a bounded
// worker pool inside each batch. A task's error never aborts its batch
// or the run: it's recorded and the task is skipped.
func (co *Coordinator) Run(ctx context.Context, tasks []urlmap.Task) ([]chunkdoc.Document, error) {
	tasks = orderAndTruncate(tasks, co.opts.MaxDepth, co.opts.Limit)

	var all []chunkdoc.Document
	batchSize := co.opts.BatchSize
	if batchSize <= 0 {
		batchSize = 30
	}

	for start := 0; start < len(tasks); start += batchSize {
		end := start + batchSize
		if end > len(tasks) {
			end = len(tasks)
		}
		batch := tasks[start:end]

		results := co.runBatch(ctx, batch)
		for _, r := range results {
			if r.Error != nil {
				co.mu.Lock()
				co.errored[r.URL] = fmt.Sprintf("[%s] %s", co.RunID, r.Error.Error())
				co.mu.Unlock()
				continue
			}
			all = append(all, r.Docs...)
		}
		log.Printf("coordinator: processed %d/%d URLs", end, len(tasks))
	}

	return all, nil
}

func (co *Coordinator) runBatch(ctx context.Context, batch []urlmap.Task) []Result {
	results := make([]Result, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(co.opts.MaxWorkers)

	for i, task := range batch {
		i, task := i, task
		g.Go(func() error {
			docs, err := co.processURL(gctx, task)
			results[i] = Result{URL: task.URL, Docs: docs, Error: err}
			return nil // never abort the batch for one task's failure
		})
	}
	_ = g.Wait()
	return results
}

// processURL fetches, cleans, extracts, detects language, and chunks one
// page. A page already seen under another URL (via redirect) short-
// circuits to the cached result instead of repeating the work.
func (co *Coordinator) processURL(ctx context.Context, task urlmap.Task) ([]chunkdoc.Document, error) {
	co.mu.Lock()
	cached, hit := co.docsByURL[task.URL]
	co.mu.Unlock()
	if hit {
		return cached, nil
	}
	if co.processedURLs.Contains(task.URL) {
		return nil, nil
	}

	host := hostOf(task.URL)
	result, reason, err := co.client.Simple(ctx, task.URL, host)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if reason == fetch.ReasonSkipExt {
		co.processedURLs.Add(task.URL, true)
		return nil, nil
	}

	usedBrowser := false
	if needsRender(reason) {
		rendered, rerr := co.renderer.Render(ctx, task.URL, host)
		if rerr != nil {
			return nil, fmt.Errorf("render-failed: %w", rerr)
		}
		result.HTML = rendered.HTML
		result.FinalURL = rendered.FinalURL
		usedBrowser = true
	} else if reason != "" {
		return nil, fmt.Errorf("%s", reason)
	}

	if result.FinalURL != "" && result.FinalURL != task.URL {
		co.mu.Lock()
		co.redirected[task.URL] = result.FinalURL
		co.mu.Unlock()
		if co.processedURLs.Contains(result.FinalURL) {
			co.processedURLs.Add(task.URL, true)
			return nil, nil
		}
	}

	co.processedURLs.Add(task.URL, true)
	if result.FinalURL != "" {
		co.processedURLs.Add(result.FinalURL, true)
	}

	doc, perr := goquery.NewDocumentFromReader(strings.NewReader(result.HTML))
	if perr != nil {
		return nil, fmt.Errorf("parsing html: %w", perr)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	content, sample := co.extractor.Extract(doc)
	language := langdetect.Detect(task.URL, doc, sample)

	if len(content) >= chunkdoc.MinChunkChars {
		co.mu.Lock()
		co.pageRecords = append(co.pageRecords, chunkdoc.PageRecord{
			URL: task.URL, Title: title, CharacterCount: len(content),
			WordCount: len(strings.Fields(content)), Language: language, Depth: task.Depth,
		})
		co.mu.Unlock()
	}

	var docs []chunkdoc.Document
	docs = append(docs, chunk.Character(task.URL, title, task.Depth, language, content, co.opts.ChunkOpts, co.contentDedup)...)
	if !titleExcluded(title, co.opts.ExcludedKeywords) {
		docs = append(docs, chunk.Structural(task.URL, title, task.Depth, language, doc, co.cleaner, co.opts.ChunkOpts, co.contentDedup)...)
	}
	docs = append(docs, chunk.FullText(task.URL, title, task.Depth, language, content, co.opts.ChunkOpts, co.fullTextDedup)...)

	_ = usedBrowser // surfaced for future metrics; not part of the output contract

	co.mu.Lock()
	co.docsByURL[task.URL] = docs
	if result.FinalURL != "" {
		co.docsByURL[result.FinalURL] = docs
	}
	co.mu.Unlock()

	return docs, nil
}

// needsRender reports whether a fetch outcome should be retried through
// the render backend rather than surfaced as a terminal error.
func needsRender(reason fetch.Reason) bool {
	switch reason {
	case fetch.ReasonSoftBlock, fetch.ReasonLoginPage, fetch.ReasonErrorPage, fetch.ReasonTooLarge:
		return true
	default:
		return false
	}
}

func hostOf(rawURL string) string {
	idx := strings.Index(rawURL, "://")
	if idx < 0 {
		return rawURL
	}
	rest := rawURL[idx+3:]
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

// orderAndTruncate sorts tasks by ascending depth (stable, so same-depth
// order is preserved), drops anything past MaxDepth when MaxDepth > 0,
// and truncates to Limit when Limit > 0.
func orderAndTruncate(tasks []urlmap.Task, maxDepth, limit int) []urlmap.Task {
	out := make([]urlmap.Task, 0, len(tasks))
	for _, t := range tasks {
		if maxDepth > 0 && t.Depth > maxDepth {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Depth < out[j].Depth })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// WriteOutputs writes redirected_urls.json (only if any redirects were
// recorded) and page_character_counts_final.json to dir.
func (co *Coordinator) WriteOutputs(dir string) error {
	co.mu.Lock()
	defer co.mu.Unlock()

	if len(co.redirected) > 0 {
		if err := writeJSON(dir+"/redirected_urls.json", co.redirected); err != nil {
			return err
		}
	}

	summary := characterCountSummary(co.pageRecords)
	summary.ErroredURLs = co.errored
	return writeJSON(dir+"/page_character_counts_final.json", summary)
}

type languageBreakdown struct {
	PageCount      int `json:"page_count"`
	CharacterCount int `json:"character_count"`
}

type characterCountSummaryDoc struct {
	Pages         []chunkdoc.PageRecord        `json:"pages"`
	TotalPages    int                          `json:"total_pages"`
	TotalChars    int                          `json:"total_characters"`
	ByLanguage    map[string]languageBreakdown `json:"by_language"`
	ErroredURLs   map[string]string            `json:"errored_urls,omitempty"`
}

func characterCountSummary(records []chunkdoc.PageRecord) characterCountSummaryDoc {
	doc := characterCountSummaryDoc{Pages: records, ByLanguage: make(map[string]languageBreakdown)}
	for _, r := range records {
		doc.TotalPages++
		doc.TotalChars += r.CharacterCount
		b := doc.ByLanguage[r.Language]
		b.PageCount++
		b.CharacterCount += r.CharacterCount
		doc.ByLanguage[r.Language] = b
	}
	return doc
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}
