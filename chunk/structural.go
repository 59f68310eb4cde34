package chunk

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"sitetext/chunkdoc"
	"sitetext/clean"
)

// sectionTags is the ordered Pass-1 selector list, ported from
// processing.py's section_tags: sections/articles/main first, then the
// classed divs the source system's pages commonly use for content blocks,
// then the generic text-bearing and tabular/list elements.
var sectionTags = []string{
	"section", "article", "main",
	"div.content-section", "div.module", "div.text",
	"div.content", "div.text-block", "div.main-content", "div.container", "div.row",
	"div.card", "div.content-main", "div.teaser-text", "div.publication-item",
	"div.news-item", "div.portlet-body", "div.event-details", "div.indico-content",
	"div.publication-list", "div.event-description", "div.news-content",
	"div.status-report", "div.status", "div.monitor", "div.experiment", "div.results",
	"div.timetable",
	"p", "p[id]", "span", "table", "table.i-table", "caption",
	"td", "th", "tr", "ul", "ol", "li",
	"h1", "h2", "h3", "h4", "h5", "h6",
}
var headingTags = map[string]int{"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6}

// minTextSampleLen mirrors processing.py's MIN_TEXT_SAMPLE_LENGTH: an error
// page detector threshold, not a chunk-size constant.
const minTextSampleLen = 50

var loginIntentPattern = regexp.MustCompile(`(?i)log\s*in|sign\s*in|authenticate`)

var notFoundPhrases = []string{
	"not found", "page doesn't exist", "404", "page not found", "does not exist",
	"could not be found", "site error", "error was encountered", "error occurred",
}

var errorEncounteredPublishing = regexp.MustCompile(`(?i)error.*encountered.*publishing`)

// isLoginPage implements the structural chunker's login-page rejection: a
// login-typed form, a password input, or a login-intent button/anchor/title.
func isLoginPage(doc *goquery.Document) bool {
	if doc.Find(`form[id*="login" i], form[action*="login" i]`).Length() > 0 {
		return true
	}
	if doc.Find(`input[name="username"]`).Length() > 0 {
		return true
	}
	if doc.Find(`input[name="password"][type="password"]`).Length() > 0 {
		return true
	}
	if doc.Find(`div.login-box, div.auth-form`).Length() > 0 {
		return true
	}
	found := false
	doc.Find("button, a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if loginIntentPattern.MatchString(s.Text()) {
			found = true
			return false
		}
		return true
	})
	if found {
		return true
	}
	if val, ok := doc.Find("input").Filter(`[value]`).Attr("value"); ok && loginIntentPattern.MatchString(val) {
		return true
	}
	title := doc.Find("title").First().Text()
	return loginIntentPattern.MatchString(title)
}

// isNotFoundPage implements the structural chunker's error-page rejection:
// title, h1-h3 headings or body text containing a "not found"-style phrase,
// body text matching "error ... encountered ... publishing", or total
// visible text shorter than minTextSampleLen.
func isNotFoundPage(doc *goquery.Document) bool {
	title := strings.ToLower(doc.Find("title").First().Text())
	for _, phrase := range notFoundPhrases {
		if strings.Contains(title, phrase) {
			return true
		}
	}

	pageText := strings.ToLower(strings.TrimSpace(doc.Find("body").Text()))
	if errorEncounteredPublishing.MatchString(pageText) {
		return true
	}

	headingMatch := false
	doc.Find("h1, h2, h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		heading := strings.ToLower(strings.TrimSpace(s.Text()))
		for _, phrase := range notFoundPhrases {
			if strings.Contains(heading, phrase) {
				headingMatch = true
				return false
			}
		}
		return true
	})
	if headingMatch {
		return true
	}

	for _, phrase := range notFoundPhrases {
		if strings.Contains(pageText, phrase) {
			return true
		}
	}
	return len(pageText) < minTextSampleLen
}

type rawSection struct {
	title string
	level int
	text  string
}

// Structural implements the three-pass structure-based chunker:
//
//  1. collect disjoint matches of sectionTags (sections, articles, main,
//     classed content <div>s, then paragraphs, spans, tables, lists and
//     headings), skipping any match nested inside one already collected;
//  2. if none were found, walk the body top to bottom tracking the
//     currently open heading at each of the six levels, flushing a
//     section whenever a new heading closes out an equal-or-deeper one;
//  3. if that also finds nothing, treat the whole body as one section.
func Structural(source, title string, depth int, language string, doc *goquery.Document, cleaner *clean.Cleaner, opts Options, dedup Dedup) []chunkdoc.Document {
	if doc == nil {
		return nil
	}
	if isLoginPage(doc) || isNotFoundPage(doc) {
		return nil
	}

	sections := collectTaggedSections(doc, cleaner, title)
	if len(sections) == 0 {
		sections = collectHeadingSections(doc, cleaner)
	}
	if len(sections) == 0 {
		sections = collectWholeBody(doc, cleaner, title)
	}

	var allDocs []chunkdoc.Document
	seen := make(map[string]bool)
	for _, sec := range sections {
		windows := splitTextBySize(sec.text, opts.MaxSize, opts.Overlap)
		for _, w := range windows {
			text := strings.TrimSpace(collapseWhitespace(w))
			if len(text) < chunkdoc.MinChunkChars {
				continue
			}
			hash := Fingerprint(text, sec.title)
			if seen[hash] {
				continue
			}
			seen[hash] = true
			if dedup != nil && dedup.Seen(hash) {
				continue
			}
			allDocs = append(allDocs, chunkdoc.Document{
				PageContent: text,
				Metadata: chunkdoc.Metadata{
					Source: source, Title: title, Depth: depth, Language: language,
					ChunkType:    chunkdoc.Structural,
					SectionTitle: sec.title,
					SectionLevel: sec.level,
				},
			})
		}
	}
	for i := range allDocs {
		allDocs[i].Metadata.ChunkIndex = i
		allDocs[i].Metadata.TotalChunks = len(allDocs)
		allDocs[i].Metadata.Continued = i > 0
	}
	return allDocs
}

// collectTaggedSections gathers top-level matches of sectionTags,
// skipping any match nested inside an already-collected one.
func collectTaggedSections(doc *goquery.Document, cleaner *clean.Cleaner, pageTitle string) []rawSection {
	var sections []rawSection
	taken := make(map[*html.Node]bool)

	for _, sel := range sectionTags {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			node := s.Get(0)
			if nestedInTaken(node, taken) {
				return
			}
			rawHTML, err := goquery.OuterHtml(s)
			if err != nil {
				return
			}
			text := cleaner.Clean(rawHTML)
			if strings.TrimSpace(text) == "" {
				return
			}
			taken[node] = true
			sections = append(sections, rawSection{
				title: headingTextWithin(s, pageTitle),
				level: 0,
				text:  text,
			})
		})
	}
	return sections
}

func nestedInTaken(n *html.Node, taken map[*html.Node]bool) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if taken[p] {
			return true
		}
	}
	return false
}

// headingTextWithin returns the nearest enclosed heading's text, or the
// page title when the matched element contains no heading of its own.
func headingTextWithin(s *goquery.Selection, pageTitle string) string {
	if h := s.Find("h1, h2, h3, h4, h5, h6").First(); h.Length() > 0 {
		return strings.TrimSpace(h.Text())
	}
	return pageTitle
}

// collectHeadingSections walks the body's text and element nodes in
// document order, keeping a stack of currently open headings keyed by
// level. Each time a heading of level L is seen, any open section at
// level >= L is flushed (its accumulated text becomes a section), and a
// new section starts under the new heading.
func collectHeadingSections(doc *goquery.Document, cleaner *clean.Cleaner) []rawSection {
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	type openSection struct {
		title string
		level int
		buf   strings.Builder
	}
	var stack []*openSection
	var finished []rawSection

	flushFrom := func(level int) {
		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			text := top.buf.String()
			if strings.TrimSpace(text) != "" {
				finished = append(finished, rawSection{title: top.title, level: top.level, text: text})
			}
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if lvl, ok := headingTags[n.Data]; ok {
				flushFrom(lvl)
				title := strings.TrimSpace(textContent(n))
				stack = append(stack, &openSection{title: title, level: lvl})
				return
			}
		}
		if n.Type == html.TextNode {
			if len(stack) > 0 {
				stack[len(stack)-1].buf.WriteString(n.Data)
				stack[len(stack)-1].buf.WriteString(" ")
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range body.Nodes {
		walk(n)
	}
	flushFrom(0)
	for i := range finished {
		finished[i].text = cleaner.FinalizeText(finished[i].text)
	}
	return finished
}

func collectWholeBody(doc *goquery.Document, cleaner *clean.Cleaner, title string) []rawSection {
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	text := cleaner.FinalizeText(body.Text())
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return []rawSection{{title: title, level: 0, text: text}}
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

