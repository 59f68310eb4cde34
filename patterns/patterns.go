// Package patterns holds the compiled noise-matching catalogue used by the
// cleaner and extractor. The catalogue is data: regex groups and selector
// lists, grouped by priority and applied in a fixed order, so that adding
// coverage for a new site pattern never requires touching Go control flow.
package patterns

import "regexp"

// Group names, in application order. Later groups see the output of earlier
// ones.
const (
	Critical     = "CRITICAL"
	High         = "HIGH"
	Medium       = "MEDIUM"
	Low          = "LOW"
	Specialized  = "SPECIALIZED"
	Cleanup      = "CLEANUP"
	TextCleanup  = "TEXT_CLEANUP"
	Whitespace   = "WHITESPACE"
)

// Catalogue is the compiled, ordered pattern library. A zero Catalogue is
// not usable; construct one with Default.
type Catalogue struct {
	Critical    []*regexp.Regexp
	High        []*regexp.Regexp
	Medium      []*regexp.Regexp
	Low         []*regexp.Regexp
	Specialized []*regexp.Regexp
	Cleanup     []*regexp.Regexp
	TextCleanup []*regexp.Regexp
	Whitespace  *regexp.Regexp

	// CookieTextPatterns match lone phrases that identify a cookie-banner
	// text node; used by the cleaner's text-node ancestor walk, not by
	// ApplyHTML/ApplyText below.
	CookieTextPatterns []*regexp.Regexp
}

func compileAll(exprs []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

// ApplyHTML runs the HTML-oriented groups (CRITICAL through CLEANUP) over a
// raw HTML string, in order.
func (c *Catalogue) ApplyHTML(html string) string {
	html = applyGroup(html, c.Critical)
	html = applyGroup(html, c.High)
	html = applyGroup(html, c.Medium)
	html = applyGroup(html, c.Low)
	html = applyGroup(html, c.Specialized)
	html = applyGroup(html, c.Cleanup)
	return html
}

// ApplyText runs the text-oriented groups (TEXT_CLEANUP then WHITESPACE)
// over already-extracted text.
func (c *Catalogue) ApplyText(text string) string {
	text = applyGroup(text, c.TextCleanup)
	text = c.Whitespace.ReplaceAllString(text, " ")
	return text
}

func applyGroup(s string, group []*regexp.Regexp) string {
	for _, p := range group {
		s = p.ReplaceAllString(s, "")
	}
	return s
}
