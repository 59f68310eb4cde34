package langdetect

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestDetectGermanFilenameShortcut(t *testing.T) {
	got := Detect("https://example.org/page_ger.html", nil, "")
	if got != "de" {
		t.Errorf("Detect() = %q, want de for _ger.html suffix", got)
	}
}

func TestDetectFallsBackToHTMLLangAttribute(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html lang="fr"><body><p>x</p></body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := Detect("https://example.org/page", doc, "")
	if got != "fr" {
		t.Errorf("Detect() = %q, want fr from html lang attribute", got)
	}
}

func TestDetectDefaultsToEnglish(t *testing.T) {
	got := Detect("https://example.org/page", nil, "")
	if got != "en" {
		t.Errorf("Detect() = %q, want en default", got)
	}
}
