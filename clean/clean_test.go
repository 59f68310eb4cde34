package clean

import (
	"strings"
	"testing"
)

func TestCleanStripsNavAndScripts(t *testing.T) {
	c := New()
	html := `<html><body><nav id="menu">Home | About</nav><main><p>Hello world, this is the real article body text.</p></main><script>evil()</script></body></html>`
	got := c.Clean(html)
	if strings.Contains(got, "evil()") {
		t.Errorf("Clean() = %q, still contains script body", got)
	}
	if !strings.Contains(got, "Hello world") {
		t.Errorf("Clean() = %q, expected to retain main article text", got)
	}
}

func TestCleanEmptyInput(t *testing.T) {
	c := New()
	if got := c.Clean(""); got != "" {
		t.Errorf("Clean(\"\") = %q, want empty", got)
	}
}

func TestCleanDedupesDOIs(t *testing.T) {
	c := New()
	html := `<main><p>See 10.1234/abcDEF and again 10.1234/abcDEF for details.</p></main>`
	got := c.Clean(html)
	count := strings.Count(got, "10.1234/abcDEF")
	if count != 1 {
		t.Errorf("Clean() kept %d DOI occurrences, want 1; got %q", count, got)
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	c := New()
	html := `<main><div class="wrapper"><p>Stable article content well above threshold length.</p></div></main>`
	once := c.Clean(html)
	twice := c.Clean(once)
	if once != twice {
		t.Errorf("Clean() not idempotent: once=%q twice=%q", once, twice)
	}
}
