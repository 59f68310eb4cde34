package chunk

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"sitetext/clean"
)

func parseDoc(t *testing.T, htmlStr string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestStructuralUsesSectionTags(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<section><h2>First Section</h2><p>`+strings.Repeat("content word ", 20)+`</p></section>
		<section><h2>Second Section</h2><p>`+strings.Repeat("other word ", 20)+`</p></section>
	</body></html>`)

	docs := Structural("https://example.org/a", "Page", 0, "en", doc, clean.New(), DefaultOptions(), nil)
	if len(docs) < 2 {
		t.Fatalf("Structural() returned %d docs, want at least 2", len(docs))
	}
	titles := map[string]bool{}
	for _, d := range docs {
		titles[d.Metadata.SectionTitle] = true
	}
	if !titles["First Section"] || !titles["Second Section"] {
		t.Errorf("Structural() section titles = %v, missing expected headings", titles)
	}
}

func TestStructuralChunksParagraphsUnderHeadings(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<h2>Intro</h2>
		<p>`+strings.Repeat("intro word ", 20)+`</p>
		<h2>Details</h2>
		<p>`+strings.Repeat("detail word ", 20)+`</p>
	</body></html>`)

	docs := Structural("https://example.org/b", "Page", 0, "en", doc, clean.New(), DefaultOptions(), nil)
	if len(docs) < 2 {
		t.Fatalf("Structural() returned %d docs, want at least 2", len(docs))
	}
}

func TestStructuralFallsBackToWholeBody(t *testing.T) {
	doc := parseDoc(t, `<html><body><div>`+strings.Repeat("plain word ", 30)+`</div></body></html>`)
	docs := Structural("https://example.org/c", "Page", 0, "en", doc, clean.New(), DefaultOptions(), nil)
	if len(docs) == 0 {
		t.Fatal("Structural() returned no docs for whole-body fallback")
	}
}

func TestStructuralNilDocument(t *testing.T) {
	docs := Structural("https://example.org/d", "Page", 0, "en", nil, clean.New(), DefaultOptions(), nil)
	if docs != nil {
		t.Errorf("Structural(nil) = %v, want nil", docs)
	}
}

func TestStructuralRejectsLoginPage(t *testing.T) {
	doc := parseDoc(t, `<html><head><title>Sign In</title></head><body>
		<form id="login-form" action="/login"><input name="username"><input name="password" type="password"></form>
		<p>`+strings.Repeat("content word ", 20)+`</p>
	</body></html>`)
	docs := Structural("https://example.org/e", "Page", 0, "en", doc, clean.New(), DefaultOptions(), nil)
	if docs != nil {
		t.Errorf("Structural() on login page = %v, want nil", docs)
	}
}

func TestStructuralRejectsNotFoundPage(t *testing.T) {
	doc := parseDoc(t, `<html><head><title>404 Page Not Found</title></head><body>
		<p>`+strings.Repeat("content word ", 20)+`</p>
	</body></html>`)
	docs := Structural("https://example.org/f", "Page", 0, "en", doc, clean.New(), DefaultOptions(), nil)
	if docs != nil {
		t.Errorf("Structural() on not-found page = %v, want nil", docs)
	}
}
