// Package chunk splits a page's text into the three overlapping and
// non-overlapping chunk families described in §4.D: fixed-size overlapping
// windows, heading-delimited sections, and a single full-text record.
// Character chunking splits the text it is given as is and runs no
// cleaner of its own; in the pipeline that text is the extractor's body
// text, which the pattern library has already cleaned. Structural
// chunking splits each section's text after the cleaner has run on it.
// Each window is whitespace-collapsed before it is fingerprinted and
// emitted.
package chunk

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"

	"sitetext/chunkdoc"
)

// Options bounds the character chunker's window.
type Options struct {
	MaxSize int
	Overlap int
}

// DefaultOptions matches the source system's defaults.
func DefaultOptions() Options {
	return Options{MaxSize: 1200, Overlap: 200}
}

var sentenceBoundary = regexp.MustCompile(`[.!?]\s+|[.!?]$|\n\s*\n`)

// Dedup tracks content fingerprints across calls so the coordinator can
// share one bounded set across many pages. A nil Dedup disables
// cross-call dedup (only within-call duplicates are still dropped).
type Dedup interface {
	// Seen reports whether hash has already been recorded, and records it
	// if not: a single-call test-and-set.
	Seen(hash string) bool
}

// Character implements the character-window chunker: overlapping windows
// of up to opts.MaxSize runes, each boundary nudged to the nearest
// sentence end within the rightmost 30% of the window, falling back to a
// word boundary, skipped if the page is below the minimum chunk length.
func Character(source, title string, depth int, language, originalText string, opts Options, dedup Dedup) []chunkdoc.Document {
	windows := splitTextBySize(originalText, opts.MaxSize, opts.Overlap)
	return buildDocs(source, title, depth, language, chunkdoc.Character, windows, dedup)
}

// FullText implements the full-text chunker: it emits exactly one document
// per URL, holding the complete cleaned body, gated only by the minimum
// chunk length floor (mirrors process_url's full-text block, not the
// windowed, dead create_full_text_chunks helper).
func FullText(source, title string, depth int, language, originalText string, opts Options, dedup Dedup) []chunkdoc.Document {
	return buildDocs(source, title, depth, language, chunkdoc.FullText, []string{originalText}, dedup)
}

func buildDocs(source, title string, depth int, language string, kind chunkdoc.ChunkType, windows []string, dedup Dedup) []chunkdoc.Document {
	var docs []chunkdoc.Document
	seen := make(map[string]bool)
	for _, w := range windows {
		text := strings.TrimSpace(collapseWhitespace(w))
		if len(text) < chunkdoc.MinChunkChars {
			continue
		}
		hash := Fingerprint(text, "")
		if seen[hash] {
			continue
		}
		seen[hash] = true
		if dedup != nil && dedup.Seen(hash) {
			continue
		}
		docs = append(docs, chunkdoc.Document{
			PageContent: text,
			Metadata: chunkdoc.Metadata{
				Source: source, Title: title, Depth: depth, Language: language,
				ChunkType: kind,
			},
		})
	}
	for i := range docs {
		docs[i].Metadata.ChunkIndex = i
		docs[i].Metadata.TotalChunks = len(docs)
		docs[i].Metadata.Continued = i > 0
	}
	return docs
}

// splitTextBySize walks the text in overlapping windows, moving each
// window's right edge back to the last sentence boundary within the
// rightmost 30%, or to the last word boundary if no sentence boundary is
// found. When that cut would leave a window shorter than the minimum
// chunk size, the window keeps its full maxSize width instead, and may
// then end mid-word.
func splitTextBySize(text string, maxSize, overlap int) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}
	if n <= maxSize {
		return []string{text}
	}

	minChunk := maxSize / 2
	if alt := maxSize - overlap; alt > minChunk {
		minChunk = alt
	}

	var windows []string
	start := 0
	for start < n {
		end := start + maxSize
		if end >= n {
			windows = append(windows, string(runes[start:n]))
			break
		}

		searchFrom := start + int(float64(maxSize)*0.7)
		if searchFrom < start {
			searchFrom = start
		}
		window := string(runes[searchFrom:end])
		cut := -1
		if loc := lastSentenceBoundary(window); loc >= 0 {
			cut = searchFrom + loc
		} else if loc := lastWordBoundary(string(runes[start:end])); loc >= 0 && start+loc-start >= minChunk {
			cut = start + loc
		}

		if cut <= start || cut-start < minChunk {
			cut = end
		}

		windows = append(windows, string(runes[start:cut]))

		next := cut - overlap
		if next <= start {
			next = cut
		}
		next = nudgeToWordBoundary(runes, next)
		start = next
	}
	return windows
}

func lastSentenceBoundary(window string) int {
	matches := sentenceBoundary.FindAllStringIndex(window, -1)
	if len(matches) == 0 {
		return -1
	}
	last := matches[len(matches)-1]
	return last[1]
}

func lastWordBoundary(window string) int {
	idx := strings.LastIndexAny(window, " \t\n")
	if idx < 0 {
		return -1
	}
	return idx + 1
}

func nudgeToWordBoundary(runes []rune, pos int) int {
	if pos <= 0 {
		return 0
	}
	if pos >= len(runes) {
		return len(runes)
	}
	for pos < len(runes) && !isSpace(runes[pos-1]) {
		pos++
	}
	return pos
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}

// Fingerprint is the single content-fingerprint function shared by every
// package that needs to dedup text: MD5 of the lowercased,
// whitespace-normalized text joined with its section title (empty for
// callers with no section concept, e.g. the content extractor).
func Fingerprint(text, sectionTitle string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ") + "|" + sectionTitle
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
