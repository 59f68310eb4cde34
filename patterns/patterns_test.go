package patterns

import (
	"strings"
	"testing"
)

func TestApplyHTMLStripsScriptsAndNav(t *testing.T) {
	c := Default()
	html := `<div id="main"><script>alert(1)</script><nav id="menu">Home | About</nav><p>Real content here.</p></div>`
	got := c.ApplyHTML(html)
	if strings.Contains(got, "alert(1)") {
		t.Errorf("ApplyHTML(%q) = %q, still contains script body", html, got)
	}
	if !strings.Contains(got, "Real content here.") {
		t.Errorf("ApplyHTML(%q) = %q, want it to retain paragraph text", html, got)
	}
}

func TestApplyTextCollapsesWhitespace(t *testing.T) {
	c := Default()
	got := c.ApplyText("hello  world   \t\nagain")
	want := "hello world again"
	if got != want {
		t.Errorf("ApplyText() = %q, want %q", got, want)
	}
}

func TestApplyTextDropsCookieTokens(t *testing.T) {
	c := Default()
	got := c.ApplyText("Please accept our cookie policy before continuing")
	if strings.Contains(got, "cookie") {
		t.Errorf("ApplyText() = %q, expected cookie token removed", got)
	}
}
