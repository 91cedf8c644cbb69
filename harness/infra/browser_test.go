package infra

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"limites-harness/harness/domain"
)

func TestTextXPath_Quoting(t *testing.T) {
	cases := map[string]string{
		"Dashboard de Limites": `//*[text()[normalize-space(.)="Dashboard de Limites"]]`,
		`say "oi"`:             `//*[text()[normalize-space(.)='say "oi"']]`,
		`it's "x"`:             `//*[text()[normalize-space(.)=concat("it's ", '"', "x", '"')]]`,
	}
	for in, want := range cases {
		if got := TextXPath(in); got != want {
			t.Fatalf("TextXPath(%q):\n got %s\nwant %s", in, got, want)
		}
	}
}

func TestNewBrowser_Defaults(t *testing.T) {
	b := NewBrowser("http://localhost:3000/", WithBrowserHeader("X-User-Role", "admin"))
	if b.baseURL != "http://localhost:3000" {
		t.Fatalf("expected trailing slash trimmed, got %q", b.baseURL)
	}
	if !b.headless || b.expectTimeout != 5*time.Second {
		t.Fatalf("unexpected defaults: headless=%v timeout=%s", b.headless, b.expectTimeout)
	}
	if b.headers["X-User-Role"] != "admin" {
		t.Fatalf("expected role header, got %v", b.headers)
	}
}

// Precisa de Chrome instalado: E2E_BROWSER=1 go test ./harness/infra/...
func TestBrowser_ExpectTextAgainstLocalPage(t *testing.T) {
	if os.Getenv("E2E_BROWSER") == "" {
		t.Skip("set E2E_BROWSER=1 to run with a local Chrome")
	}

	var role string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/dashboard" {
			role = r.Header.Get("X-User-Role")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, "<html><body><h1> Dashboard de Limites </h1></body></html>")
	}))
	defer srv.Close()

	b := NewBrowser(srv.URL, WithBrowserHeader("X-User-Role", "admin"), WithExecPath(os.Getenv("E2E_CHROME_PATH")))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := b.ExpectText(ctx, "/dashboard", "Dashboard de Limites"); err != nil {
		t.Fatalf("expected heading to be visible: %v", err)
	}
	if role != "admin" {
		t.Fatalf("expected X-User-Role header on page request, got %q", role)
	}

	short := NewBrowser(srv.URL, WithExpectTimeout(300*time.Millisecond), WithExecPath(os.Getenv("E2E_CHROME_PATH")))
	err := short.ExpectText(ctx, "/dashboard", "Outro Título")
	if !errors.Is(err, domain.ErrTextNotVisible) {
		t.Fatalf("expected ErrTextNotVisible, got %v", err)
	}
}
