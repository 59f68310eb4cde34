package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSimpleFetchesOKPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>" + strings.Repeat("<p>content paragraph here</p>", 10) + "</body></html>"))
	}))
	defer srv.Close()

	c := NewClient()
	result, reason, err := c.Simple(context.Background(), srv.URL, "127.0.0.1")
	if err != nil {
		t.Fatalf("Simple: %v", err)
	}
	if reason != ReasonNone {
		t.Errorf("reason = %q, want none", reason)
	}
	if !strings.Contains(result.HTML, "content paragraph") {
		t.Errorf("HTML missing expected content: %q", result.HTML)
	}
}

func TestSimpleSkipsNonHTMLExtension(t *testing.T) {
	c := NewClient()
	result, reason, err := c.Simple(context.Background(), "https://example.org/file.pdf", "example.org")
	if err != nil {
		t.Fatalf("Simple: %v", err)
	}
	if reason != ReasonSkipExt {
		t.Errorf("reason = %q, want skip-ext", reason)
	}
	if result.HTML != "" {
		t.Errorf("HTML = %q, want empty for skipped extension", result.HTML)
	}
}

func TestSimpleReturnsHTTPStatusReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("not found"))
	}))
	defer srv.Close()

	c := NewClient()
	_, reason, err := c.Simple(context.Background(), srv.URL, "127.0.0.1")
	if err != nil {
		t.Fatalf("Simple: %v", err)
	}
	if reason != "http-status:404" {
		t.Errorf("reason = %q, want http-status:404", reason)
	}
}

func TestSimpleDetectsSoftBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("access denied"))
	}))
	defer srv.Close()

	c := NewClient()
	_, reason, err := c.Simple(context.Background(), srv.URL, "127.0.0.1")
	if err != nil {
		t.Fatalf("Simple: %v", err)
	}
	if reason != ReasonSoftBlock {
		t.Errorf("reason = %q, want soft-block", reason)
	}
}

func TestClassifyDetectsLoginPage(t *testing.T) {
	html := `<html><body><form><input type="password">Please sign in</form></body></html>`
	if got := classify(html, "https://example.org/account"); got != ReasonLoginPage {
		t.Errorf("classify() = %q, want login-page", got)
	}
}
