// Package langdetect assigns a two-letter language code to a fetched
// page: a filename shortcut, then statistical detection over the page
// text, then a chain of HTML language hints, defaulting to English.
package langdetect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	whatlanggo "github.com/RadhiFadlillah/whatlanggo"
)

const (
	minSampleLen = 50
	maxSampleLen = 1000
	defaultLang  = "en"
)

// Detect returns a two-letter language code for a page, given its URL,
// parsed document (may be nil), and extracted text sample.
func Detect(pageURL string, doc *goquery.Document, sample string) string {
	if strings.HasSuffix(strings.ToLower(pageURL), "_ger.html") {
		return "de"
	}

	if trimmed := strings.TrimSpace(sample); len(trimmed) >= minSampleLen {
		text := trimmed
		if len(text) > maxSampleLen {
			text = text[:maxSampleLen]
		}
		info := whatlanggo.Detect(text)
		if info.IsReliable() {
			if code := iso6391(info.Lang); code != "" {
				return code
			}
		}
	}

	if doc != nil {
		if code := htmlLangHint(doc); code != "" {
			return code
		}
	}

	return defaultLang
}

func htmlLangHint(doc *goquery.Document) string {
	if v, ok := doc.Find("html").First().Attr("lang"); ok {
		if code := twoLetter(v); code != "" {
			return code
		}
	}
	if v, ok := doc.Find("html").First().Attr("xml:lang"); ok {
		if code := twoLetter(v); code != "" {
			return code
		}
	}
	if v, ok := metaContent(doc, "http-equiv", "content-language"); ok {
		if code := twoLetter(v); code != "" {
			return code
		}
	}
	if v, ok := metaContent(doc, "property", "og:locale"); ok {
		if code := twoLetter(v); code != "" {
			return code
		}
	}
	return ""
}

func metaContent(doc *goquery.Document, attr, value string) (string, bool) {
	sel := doc.Find("meta[" + attr + "=\"" + value + "\"]").First()
	if sel.Length() == 0 {
		return "", false
	}
	return sel.Attr("content")
}

func twoLetter(v string) string {
	v = strings.TrimSpace(v)
	if len(v) < 2 {
		return ""
	}
	return strings.ToLower(v[:2])
}

// iso6391 maps the subset of whatlanggo's ISO 639-3 language constants
// this corpus actually sees to their two-letter codes. Anything outside
// that set falls through to the HTML-hint chain instead of guessing.
func iso6391(lang whatlanggo.Lang) string {
	switch lang {
	case whatlanggo.Eng:
		return "en"
	case whatlanggo.Deu:
		return "de"
	case whatlanggo.Fra:
		return "fr"
	case whatlanggo.Spa:
		return "es"
	case whatlanggo.Ita:
		return "it"
	case whatlanggo.Nld:
		return "nl"
	case whatlanggo.Por:
		return "pt"
	case whatlanggo.Rus:
		return "ru"
	default:
		return ""
	}
}
