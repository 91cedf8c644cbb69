package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"limites-harness/harness/domain"
)

// Browser abre o front-end num Chrome headless por chamada.
// Os headers extras valem para todas as requisições da página.
type Browser struct {
	baseURL       string
	headers       map[string]string
	headless      bool
	execPath      string
	expectTimeout time.Duration
	logf          func(string, ...any)
}

type BrowserOption func(*Browser)

func WithBrowserHeader(key, value string) BrowserOption {
	return func(b *Browser) { b.headers[key] = value }
}

func WithHeadless(headless bool) BrowserOption {
	return func(b *Browser) { b.headless = headless }
}

// WithExecPath aponta o binário do Chrome/Chromium (vazio = procurar no PATH).
func WithExecPath(path string) BrowserOption {
	return func(b *Browser) { b.execPath = path }
}

// WithExpectTimeout é quanto ExpectText espera o texto aparecer (padrão 5s).
func WithExpectTimeout(d time.Duration) BrowserOption {
	return func(b *Browser) { b.expectTimeout = d }
}

func WithBrowserLogf(logf func(string, ...any)) BrowserOption {
	return func(b *Browser) { b.logf = logf }
}

func NewBrowser(baseURL string, opts ...BrowserOption) *Browser {
	b := &Browser{
		baseURL:       strings.TrimRight(baseURL, "/"),
		headers:       map[string]string{},
		headless:      true,
		expectTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Browser) session(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 800),
	)
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	var ctxOpts []chromedp.ContextOption
	if b.logf != nil {
		ctxOpts = append(ctxOpts, chromedp.WithLogf(b.logf))
	}
	bctx, bcancel := chromedp.NewContext(allocCtx, ctxOpts...)
	return bctx, func() {
		bcancel()
		allocCancel()
	}
}

func (b *Browser) open(route string) chromedp.Tasks {
	headers := network.Headers{}
	for k, v := range b.headers {
		headers[k] = v
	}
	return chromedp.Tasks{
		network.Enable(),
		network.SetExtraHTTPHeaders(headers),
		chromedp.Navigate(b.baseURL + route),
	}
}

// ExpectText navega até route e espera um elemento cujo texto (sem espaços nas
// pontas) seja exatamente text ficar visível dentro do expect timeout.
func (b *Browser) ExpectText(ctx context.Context, route, text string) error {
	bctx, cancel := b.session(ctx)
	defer cancel()

	// o primeiro Run aloca o navegador; não pode usar ctx derivado com timeout
	if err := chromedp.Run(bctx, b.open(route)); err != nil {
		return fmt.Errorf("navigate %s: %w", route, err)
	}

	waitCtx, waitCancel := context.WithTimeout(bctx, b.expectTimeout)
	defer waitCancel()
	if err := chromedp.Run(waitCtx, chromedp.WaitVisible(TextXPath(text), chromedp.BySearch)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %q at %s after %s", domain.ErrTextNotVisible, text, route, b.expectTimeout)
		}
		return fmt.Errorf("wait for %q: %w", text, err)
	}
	return nil
}

// Screenshot captura a área visível da página em route como PNG.
func (b *Browser) Screenshot(ctx context.Context, route string) ([]byte, error) {
	bctx, cancel := b.session(ctx)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(bctx, b.open(route), chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("screenshot %s: %w", route, err)
	}
	return buf, nil
}

// TextXPath casa elementos com um nó de texto igual a text.
func TextXPath(text string) string {
	return "//*[text()[normalize-space(.)=" + xpathLiteral(text) + "]]"
}

// xpathLiteral cita s para XPath 1.0, que não tem escape de aspas.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		if p != "" {
			quoted = append(quoted, `"`+p+`"`)
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
