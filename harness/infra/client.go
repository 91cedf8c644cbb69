package infra

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"limites-harness/harness/domain"
)

const (
	pathPresign     = "/documents/storage/presign-upload"
	pathDocuments   = "/documents/"
	pathRecalculate = "/limits/recalculate"
)

// Client fala com a API externa. Todo corpo é JSON e vai com
// Content-Type: application/json; os headers extras saem em toda requisição.
type Client struct {
	baseURL string
	headers [][2]string
	timeout time.Duration
	hc      *fasthttp.Client
}

type ClientOption func(*Client)

// WithHeader adiciona um header enviado em toda requisição.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) { c.headers = append(c.headers, [2]string{key, value}) }
}

// WithTimeout define o timeout por requisição (padrão 60s). d <= 0 mantém o atual.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithFastHTTPClient troca o client fasthttp (ex: para ajustar pool de conexões).
func WithFastHTTPClient(hc *fasthttp.Client) ClientOption {
	return func(c *Client) { c.hc = hc }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hc == nil {
		c.hc = &fasthttp.Client{
			Name:                   "limites-harness",
			MaxConnsPerHost:        512,
			MaxIdleConnDuration:    30 * time.Second,
			// o path já sai escapado por PathEscape
			DisablePathNormalizing: true,
		}
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Presign(ctx context.Context, req domain.PresignRequest) (domain.Response, error) {
	return c.do(ctx, domain.CallPresign, http.MethodPost, pathPresign, req)
}

func (c *Client) PatchDocument(ctx context.Context, docID string, changes []domain.FieldPatch) (domain.Response, error) {
	return c.do(ctx, domain.CallPatch, http.MethodPatch, pathDocuments+url.PathEscape(docID), changes)
}

func (c *Client) Recalculate(ctx context.Context, req domain.RecalculateRequest) (domain.Response, error) {
	return c.do(ctx, domain.CallRecalculate, http.MethodPost, pathRecalculate, req)
}

func (c *Client) do(ctx context.Context, call domain.Call, method, path string, payload any) (domain.Response, error) {
	resp := domain.Response{Call: call, Method: method, Path: path}
	if err := ctx.Err(); err != nil {
		resp.Unsent = true
		return resp, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		resp.Unsent = true
		return resp, fmt.Errorf("%s: encode body: %w", call, err)
	}

	req := fasthttp.AcquireRequest()
	res := fasthttp.AcquireResponse()
	release := func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(res)
	}

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	for _, h := range c.headers {
		req.Header.Set(h[0], h[1])
	}
	req.SetBody(body)

	// o deadline do ctx vence o timeout quando for mais cedo
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	// DoDeadline não observa ctx: a chamada roda à parte e o cancelamento
	// devolve o controle na hora. req/res só voltam ao pool quando ela termina.
	done := make(chan error, 1)
	start := time.Now()
	go func() { done <- c.hc.DoDeadline(req, res, deadline) }()

	select {
	case err = <-done:
	case <-ctx.Done():
		resp.Duration = time.Since(start)
		go func() {
			<-done
			release()
		}()
		return resp, fmt.Errorf("%s %s: %w", method, path, ctx.Err())
	}
	defer release()

	resp.Duration = time.Since(start)
	if err != nil {
		return resp, fmt.Errorf("%s %s: %w", method, path, err)
	}

	resp.Status = res.StatusCode()
	resp.Body = append([]byte(nil), res.Body()...)
	return resp, nil
}
