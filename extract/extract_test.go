package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustParse(t *testing.T, htmlStr string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestExtractJoinsParagraphsAndDropsNav(t *testing.T) {
	e := New()
	doc := mustParse(t, `<html><body>
		<nav id="main-nav">Home | About | Contact</nav>
		<main>
			<p>This is the first real paragraph of article body text, well above threshold.</p>
			<p>This is a second distinct paragraph also well above the minimum chunk length.</p>
		</main>
		<footer class="site-footer">Copyright 2024</footer>
	</body></html>`)

	content, sample := e.Extract(doc)
	if content != sample {
		t.Errorf("Extract() content != sample: %q vs %q", content, sample)
	}
	if strings.Contains(content, "Home | About") {
		t.Errorf("Extract() = %q, nav text should have been pruned", content)
	}
	if !strings.Contains(content, "first real paragraph") {
		t.Errorf("Extract() = %q, missing first paragraph", content)
	}
	if !strings.Contains(content, "second distinct paragraph") {
		t.Errorf("Extract() = %q, missing second paragraph", content)
	}
}

func TestExtractDedupesRepeatedContent(t *testing.T) {
	e := New()
	doc := mustParse(t, `<html><body>
		<div class="content">
			<p>Repeated announcement text that appears more than once on this page.</p>
		</div>
		<div class="content-section">
			<p>Repeated announcement text that appears more than once on this page.</p>
		</div>
	</body></html>`)

	content, _ := e.Extract(doc)
	count := strings.Count(content, "Repeated announcement text")
	if count != 1 {
		t.Errorf("Extract() kept %d copies of duplicate paragraph, want 1; got %q", count, content)
	}
}

func TestExtractNilDocument(t *testing.T) {
	e := New()
	content, sample := e.Extract(nil)
	if content != "" || sample != "" {
		t.Errorf("Extract(nil) = (%q, %q), want empty strings", content, sample)
	}
}
