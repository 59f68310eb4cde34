// Package clean turns raw fetched HTML into normalised plain text: it picks
// a candidate main-content node, prunes a long catalogue of noise
// selectors, runs the pattern library over the serialised markup, then
// walks the remaining text nodes to drop cookie-banner residue and
// duplicate DOI identifiers.
package clean

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"sitetext/patterns"
)

// mainContentSelectors are tried in order; the first one that matches
// anything wins. This mirrors html.Parse's findContentRoot strategy chain,
// re-expressed over goquery selections.
var mainContentSelectors = []string{
	"main", "article",
	`section[class*="content"]`,
	`div[class*="main-content"]`,
	`div[class*="content-section"]`,
	`div[class*="text-block"]`,
	`div[id="content"]`, `div[id="main"]`, `div[id="bodyContent"]`,
	`div[class*="content"]`,
	`div[class*="text"]`,
	`div[class*="body"]`,
	`div[class*="page"]`,
	`div[class*="container"]`,
	"center",
}

// noiseSelectors are removed, both from the candidate main-content node and
// from the document as a whole, before the pattern library runs.
var noiseSelectors = []string{
	`div[id="overall"]`, `div[class="wrapper"]`, `header[id="header"]`,
	`div[id="mobile_menu_header"]`, `div[id="mobile_menu"]`, `div[id="mobile_dropdown"]`,
	`div[id="top"]`, `div[id="logoarea"]`, `div[id="topleft"]`, `div[id="topright"]`,
	`div[id="topmenu"]`, `nav[id="menu"]`, `ul[id="main_menu"]`,
	"nav", `ul[id*="menu" i]`, `ol[id*="menu" i]`,
	`div[id="icons"]`, `div[class="topright_button"]`,
	`li[class*="ZMS"]`, `a[class*="ZMS"]`,
	`img[class="imgNoborder"]`, `img[id*="logo"]`, `img[id*="icon"]`,
	`a[target="_blank"]`, `a[href*="doi.org"]`, `a[href*="DOI"]`,
	`a[href*="journals.aps.org"]`, `a[href*="dx.doi.org"]`, `a[href*="doi:"]`,
	`a[href*="abstract"]`, `a[href*="citation"]`,
	`div[class="clear"]`, `div[class="loading"]`,
	"footer", `div[id*="footer" i]`, `div[class*="footer" i]`, `div[class*="copyright" i]`,
	`div[class*="teaser" i]`, `div[class*="LinkElement" i]`, `div[class*="quicklinks" i]`,
	`div[class*="ZMS" i]`, `div[id*="teaser" i]`, `div[id*="quicklinks" i]`,
	`[data-cookie]`, `[data-consent]`, `[class*="cookie" i]`, `[class*="consent" i]`,
	`[style*="display:none" i]`, `[style*="visibility:hidden" i]`,
	`div[id="quick_nav_container"]`,
	`a[href*="data_privacy_policy"]`, `a[href*="declaration_of_accessibility"]`,
	`ul[style*="padding-bottom"]`,
	`button[class*="btt"]`, `div[class*="btt"]`,
	`ul[class*="footer__links"]`, `div[class*="footer__logos"]`,
	`img[alt*="Logo"]`, `a[href*="linkedin"]`, `a[href*="twitter"]`,
	`li[class*="ZMSFolder"]`, `li[class*="ZMSDocument"]`,
	`a[class*="ZMSFolder"]`, `a[class*="ZMSDocument"]`,
	`p[class~="hidden"][class~="showforprint"]`,
	`[class*="showforprint" i]`, `[class*="show-for-print" i]`,
	`a[class*="print" i]`, `a[class*="changelang" i]`,
	`div[class*="nav" i]`, `div[id*="nav" i]`,
	`div[class*="menu" i]`, `div[id*="menu" i]`,
	`ul[class*="menu" i]`, `ul[id*="menu" i]`,
	`li[class*="menu" i]`, `li[id*="menu" i]`,
	`a[class*="menu" i]`, `a[id*="menu" i]`,
	`section[class*="nav" i]`, `section[class*="menu" i]`,
	`ul[class*="nav" i]`, `ul[id*="nav" i]`,
	`div[id*="content-nav" i]`,
	`div[id="page-footer"]`,
	`ul[id="footer-nav"]`,
}

var doiHrefPattern = regexp.MustCompile(`(?i)(doi\.org|journals\.aps\.org|dx\.doi\.org|DOI:)`)
var doiTextPattern = regexp.MustCompile(`(?i)\b10\.\d{4,9}/[-._;()/:A-Z0-9]+\b`)
var copyrightPattern = regexp.MustCompile(`(?i)©\s*\d{4}\s*Deutsches\s*Elektronen-Synchrotron\s*DESY`)

// Cleaner applies the pattern library and selector catalogue above.
type Cleaner struct {
	Patterns *patterns.Catalogue
}

// New returns a Cleaner using the default pattern catalogue.
func New() *Cleaner {
	return &Cleaner{Patterns: patterns.Default()}
}

// Clean implements §4.B: it turns a raw HTML string into normalised plain
// text, or an empty string if there's nothing left after cleaning.
func (c *Cleaner) Clean(rawHTML string) string {
	if rawHTML == "" {
		return ""
	}

	text := c.stripStructural(rawHTML)
	text = c.Patterns.ApplyHTML(text)
	return c.FinalizeText(text)
}

// FinalizeText runs steps 5-8 of §4.B (re-parse and strip leftover text
// nodes if tags remain, TEXT_CLEANUP + whitespace collapse, DOI dedup) on
// text that has already had the HTML-oriented pattern groups applied. The
// content extractor re-runs this over its joined output, matching the
// original's double pass.
func (c *Cleaner) FinalizeText(text string) string {
	if strings.Contains(text, "<") && strings.Contains(text, ">") {
		text = c.stripTextNodes(text)
	}
	text = c.Patterns.ApplyText(text)
	text = dedupeDOIs(text)
	return strings.TrimSpace(collapseSpaces(text))
}

// stripStructural selects the candidate main-content node, removes noise
// selectors from it and the full document, removes orphan <li> elements,
// removes DOI anchors, and serialises the result. On parse failure it
// degrades to a bare tag strip, matching the original's except/continue
// behaviour.
func (c *Cleaner) stripStructural(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return stripTags(rawHTML)
	}

	main := findMainContent(doc)

	for _, sel := range noiseSelectors {
		main.Find(sel).Union(doc.Find(sel)).Each(func(_ int, s *goquery.Selection) {
			s.Remove()
		})
	}

	main.Find("li").Each(func(_ int, s *goquery.Selection) {
		if s.Closest(`#content`).Length() == 0 {
			s.Remove()
		}
	})

	main.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if doiHrefPattern.MatchString(href) {
			s.Remove()
		}
	})

	out, err := goquery.OuterHtml(main)
	if err != nil {
		return stripTags(rawHTML)
	}
	return out
}

// findMainContent tries mainContentSelectors in order, falling through to
// <body> and finally the document root.
func findMainContent(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	for _, sel := range mainContentSelectors {
		if s := doc.Find(sel); s.Length() > 0 {
			found = s.First()
			break
		}
	}
	if found != nil {
		return found
	}
	if body := doc.Find("body"); body.Length() > 0 {
		return body.First()
	}
	return doc.Selection
}

// stripTextNodes re-parses the partially-cleaned markup, drops copyright
// text nodes, and for every text node matching a cookie-banner phrase
// ascends up to four ancestors looking for a block-level container to
// remove, then returns the plain text.
func (c *Cleaner) stripTextNodes(partial string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(partial))
	if err != nil {
		return stripTags(partial)
	}

	removeCookieBannerTextNodes(doc.Selection.Nodes, c.Patterns.CookieTextPatterns)
	removeCopyrightTextNodes(doc.Selection.Nodes)

	return strings.TrimSpace(extractText(doc.Selection))
}

var blockLevelAncestors = map[string]bool{
	"div": true, "section": true, "aside": true, "p": true, "span": true,
}

func removeCookieBannerTextNodes(nodes []*html.Node, cookiePatterns []*regexp.Regexp) {
	for _, n := range nodes {
		walkTextNodes(n, func(tn *html.Node) {
			lower := strings.ToLower(tn.Data)
			for _, p := range cookiePatterns {
				if p.MatchString(lower) {
					ascendAndRemove(tn, 4)
					return
				}
			}
		})
	}
}

func removeCopyrightTextNodes(nodes []*html.Node) {
	for _, n := range nodes {
		walkTextNodes(n, func(tn *html.Node) {
			if copyrightPattern.MatchString(tn.Data) {
				tn.Data = ""
			}
		})
	}
}

// walkTextNodes calls fn for every text node in the subtree rooted at n.
// Nodes removed by fn mid-walk are tolerated: fn only mutates the node it
// is given or an ancestor, never a sibling still to be visited.
func walkTextNodes(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.TextNode {
		fn(n)
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		walkTextNodes(c, fn)
		c = next
	}
}

// ascendAndRemove climbs from a text node up to n ancestors and removes the
// first block-level element it finds, mirroring the original's four-hop
// ancestor walk for cookie-banner removal.
func ascendAndRemove(tn *html.Node, maxHops int) {
	parent := tn.Parent
	for i := 0; i < maxHops && parent != nil; i++ {
		if blockLevelAncestors[parent.Data] {
			if parent.Parent != nil {
				parent.Parent.RemoveChild(parent)
			}
			return
		}
		parent = parent.Parent
	}
}

func extractText(s *goquery.Selection) string {
	var parts []string
	for _, n := range s.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

func stripTags(s string) string {
	return tagPattern.ReplaceAllString(s, " ")
}

var spacesPattern = regexp.MustCompile(`\s+`)

func collapseSpaces(s string) string {
	return spacesPattern.ReplaceAllString(s, " ")
}

func dedupeDOIs(text string) string {
	seen := make(map[string]bool)
	return doiTextPattern.ReplaceAllStringFunc(text, func(doi string) string {
		if seen[doi] {
			return ""
		}
		seen[doi] = true
		return doi
	})
}
