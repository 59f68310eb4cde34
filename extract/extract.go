// Package extract selects semantically meaningful blocks from a parsed
// page, de-duplicates them by content fingerprint, and joins them into the
// page's full body text plus a language-detection sample (the two are
// currently the same text, per the contract in §4.C).
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"sitetext/chunk"
	"sitetext/clean"
)

// DefaultContentTags is the supplemented content_tags override (§SPEC_FULL
// "content_tags override"): plain tags and classed selectors a caller can
// replace or extend through Options.ContentTags; comprehensiveTags places
// them between its fixed prefix and fixed suffix lists.
var DefaultContentTags = []string{
	"p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "ul", "ol",
	"td", "th", "tr", "table", "caption", "dt", "dd", "span",
	"article", "section", "main", "div",
	"div.teaser-text", "div.content", "div.text-block",
	"div.publication-item", "div.news-item", "div.portlet-body",
	"div.event-details", "div.indico-content", "div.publication-list",
	"div.event-description", "div.news-content", "div.status-report",
	"div.status", "div.monitor", "div.experiment", "div.results",
	"div.timetable",
}

// Options configures the extractor. UseTags is accepted for interface
// parity with the source system but has no behavioural branch (§9 Open
// Questions: "an implementation may elide it").
type Options struct {
	ContentTags []string
	UseTags     bool
}

// DefaultOptions returns the extractor defaults.
func DefaultOptions() Options {
	return Options{ContentTags: DefaultContentTags, UseTags: true}
}

// Extractor runs the ordered-tag harvesting pass described in §4.C.
type Extractor struct {
	Cleaner *clean.Cleaner
	Options Options
}

// New returns an Extractor using the default cleaner and options.
func New() *Extractor {
	return &Extractor{Cleaner: clean.New(), Options: DefaultOptions()}
}

// prePruneSelector removes navigation/legal/social/sharing containers
// before the tag walk begins, applied to the whole document.
const prePruneSelector = `[id*="nav" i], [class*="nav" i], ` +
	`[id*="menu" i], [class*="menu" i], ` +
	`[id*="sidebar" i], [class*="sidebar" i], ` +
	`[id*="quicklinks" i], [class*="quicklinks" i], ` +
	`p.copyright, div.copyright, footer, ` +
	`[class*="footer" i], [id*="footer" i], ` +
	`[class*="impressum" i], [id*="impressum" i], ` +
	`[class*="datenschutz" i], [id*="datenschutz" i], ` +
	`[class*="legal" i], [id*="legal" i], ` +
	`[class*="social" i], [id*="social" i], ` +
	`[class*="share" i], [id*="share" i], ` +
	`[class*="links" i], [id*="links" i], ` +
	`[class*="bottom" i], [id*="bottom" i], ` +
	`[class*="contact" i], [id*="contact" i], ` +
	`[class*="mastodon" i], [class*="facebook" i], ` +
	`[class*="instagram" i], [class*="linkedin" i], ` +
	`[class*="twitter" i], [class*="rss" i], ` +
	`a[href*="impressum"], a[href*="datenschutz"], ` +
	`a[href*="privacy"], a[href*="accessibility"], ` +
	`a[href*="kontakt"], a[href*="contact"], ` +
	`a[href*="social"], a[href*="linkedin"], ` +
	`a[href*="twitter"], a[href*="facebook"], ` +
	`a[href*="instagram"], a[href*="mastodon"], ` +
	`a[href*="rss"]`

var skipIDs = map[string]bool{
	"cookie-bar": true, "footer": true, "page-footer": true, "site-footer": true,
}

var skipClasses = map[string]bool{
	"cookie-bar": true, "LinkElementTitle": true, "ZMSTeaserContainer": true,
	"footer": true, "copyright": true, "link": true, "site-footer": true,
	"ZMSDocument0": true,
}

var footerIDPattern = regexp.MustCompile(`(?i)(footer|page-footer|site-footer)`)

// Extract implements §4.C. It returns the joined body text twice (content,
// sample) per the spec's contract that both are currently equal.
func (e *Extractor) Extract(doc *goquery.Document) (content, sample string) {
	if doc == nil {
		return "", ""
	}

	doc.Find(prePruneSelector).Each(func(_ int, s *goquery.Selection) { s.Remove() })

	processed := make(map[*html.Node]bool)
	seenHashes := make(map[string]bool)
	var parts []string

	for _, tag := range e.comprehensiveTags() {
		for _, el := range selectTag(doc.Selection, tag) {
			node := el.Get(0)
			if processed[node] || shouldSkipElement(el) {
				continue
			}
			if hasProcessedAncestor(el, processed) || hasProcessedDescendant(el, processed) {
				continue
			}

			rawHTML, err := goquery.OuterHtml(el)
			if err != nil {
				continue
			}
			cleanedText := e.Cleaner.Clean(rawHTML)
			if len(cleanedText) < minChunkChars {
				continue
			}

			hash := chunk.Fingerprint(cleanedText, "")
			if seenHashes[hash] {
				continue
			}
			seenHashes[hash] = true

			markProcessed(el, processed)
			parts = append(parts, cleanedText)
		}
	}

	joined := strings.Join(parts, "\n")
	joined = e.Cleaner.FinalizeText(joined)
	return joined, joined
}

const minChunkChars = 30

// comprehensiveTags mirrors processing.py's comprehensive_tags: a fixed
// prefix, then the caller's content tags, then a fixed suffix. Order
// matters -- later tags subsume earlier ones via the already-processed
// ancestor guard.
func (e *Extractor) comprehensiveTags() []string {
	tags := []string{
		"p[id]", "p", "h1", "h2", "h3", "h4", "h5", "h6",
		"div.content-section", "div.module", "div.text", "div.content",
		"div.text-block", "div.main-content", "div.publication-item",
		"div.news-item", "div.event-details", "div.news-content",
		"div.status-report", "div.status", "div.monitor",
	}
	tags = append(tags, e.Options.ContentTags...)
	tags = append(tags,
		"table", "table.i-table", "caption", "td", "th", "tr",
		"section", "article", "main", "span", "div",
	)
	return tags
}

func selectTag(root *goquery.Selection, tag string) []*goquery.Selection {
	var sel *goquery.Selection
	if strings.Contains(tag, ".") {
		parts := strings.SplitN(tag, ".", 2)
		sel = root.Find(parts[0] + "." + parts[1])
	} else if strings.HasPrefix(tag, "p[") {
		sel = root.Find("p[id]")
	} else {
		sel = root.Find(tag)
	}
	out := make([]*goquery.Selection, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) { out = append(out, s) })
	return out
}

func shouldSkipElement(s *goquery.Selection) bool {
	node := s.Get(0)
	if id, ok := s.Attr("id"); ok && skipIDs[id] {
		return true
	}
	if class, ok := s.Attr("class"); ok {
		for _, c := range strings.Fields(class) {
			if skipClasses[c] {
				return true
			}
		}
	}
	if node.Data == "li" {
		return true
	}
	if s.Closest("li").Length() > 0 {
		return true
	}
	for p := node.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			for _, a := range p.Attr {
				if a.Key == "id" && footerIDPattern.MatchString(a.Val) {
					return true
				}
			}
		}
	}
	return false
}

func hasProcessedAncestor(s *goquery.Selection, processed map[*html.Node]bool) bool {
	for p := s.Get(0).Parent; p != nil; p = p.Parent {
		if processed[p] {
			return true
		}
	}
	return false
}

func hasProcessedDescendant(s *goquery.Selection, processed map[*html.Node]bool) bool {
	found := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if processed[n] {
			found = true
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := s.Get(0).FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return found
}

func markProcessed(s *goquery.Selection, processed map[*html.Node]bool) {
	node := s.Get(0)
	processed[node] = true
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			processed[n] = true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
}
