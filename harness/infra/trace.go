package infra

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"limites-harness/harness/domain"
)

// Exchange é uma troca request/response gravada no trace.
type Exchange struct {
	Call       domain.Call     `json:"call"`
	Method     string          `json:"method"`
	Path       string          `json:"path"`
	Status     int             `json:"status"`
	DurationMS float64         `json:"duration_ms"`
	Request    json.RawMessage `json:"request,omitempty"`
	Response   string          `json:"response,omitempty"`
	Error      string          `json:"error,omitempty"`
	At         time.Time       `json:"at"`
}

// TracingAPI envolve uma domain.API e grava cada chamada.
type TracingAPI struct {
	api domain.API

	mu        sync.Mutex
	exchanges []Exchange
}

func NewTracingAPI(api domain.API) *TracingAPI {
	return &TracingAPI{api: api}
}

func (t *TracingAPI) Presign(ctx context.Context, req domain.PresignRequest) (domain.Response, error) {
	at := time.Now()
	resp, err := t.api.Presign(ctx, req)
	t.add(at, req, resp, err)
	return resp, err
}

func (t *TracingAPI) PatchDocument(ctx context.Context, docID string, changes []domain.FieldPatch) (domain.Response, error) {
	at := time.Now()
	resp, err := t.api.PatchDocument(ctx, docID, changes)
	t.add(at, changes, resp, err)
	return resp, err
}

func (t *TracingAPI) Recalculate(ctx context.Context, req domain.RecalculateRequest) (domain.Response, error) {
	at := time.Now()
	resp, err := t.api.Recalculate(ctx, req)
	t.add(at, req, resp, err)
	return resp, err
}

func (t *TracingAPI) add(at time.Time, payload any, resp domain.Response, err error) {
	ex := Exchange{
		Call:       resp.Call,
		Method:     resp.Method,
		Path:       resp.Path,
		Status:     resp.Status,
		DurationMS: float64(resp.Duration) / float64(time.Millisecond),
		Response:   string(resp.Body),
		At:         at,
	}
	if b, mErr := json.Marshal(payload); mErr == nil {
		ex.Request = b
	}
	if err != nil {
		ex.Error = err.Error()
	}

	t.mu.Lock()
	t.exchanges = append(t.exchanges, ex)
	t.mu.Unlock()
}

func (t *TracingAPI) Exchanges() []Exchange {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Exchange(nil), t.exchanges...)
}

// WriteFile grava as trocas em dir/trace.json e devolve o caminho.
func (t *TracingAPI) WriteFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create trace dir: %w", err)
	}
	b, err := json.MarshalIndent(struct {
		Exchanges []Exchange `json:"exchanges"`
	}{t.Exchanges()}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode trace: %w", err)
	}
	path := filepath.Join(dir, "trace.json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write trace: %w", err)
	}
	return path, nil
}
