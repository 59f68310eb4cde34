package headless

import "testing"

func TestNewRendererProducesUsableSemaphore(t *testing.T) {
	r := NewRenderer(12)
	if r.sem == nil {
		t.Fatal("NewRenderer() produced nil semaphore")
	}
}

func TestIsLoginOrAuthURL(t *testing.T) {
	cases := map[string]bool{
		"https://example.org/login":        true,
		"https://example.org/account/sso/": true,
		"https://example.org/article/1":    false,
	}
	for u, want := range cases {
		if got := isLoginOrAuthURL(u); got != want {
			t.Errorf("isLoginOrAuthURL(%q) = %v, want %v", u, got, want)
		}
	}
}
