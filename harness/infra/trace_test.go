package infra

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"

	"limites-harness/harness/domain"
)

func TestTracingAPI_RecordsAndWritesExchanges(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusOK)
	tr := NewTracingAPI(NewClient(srv.URL))

	if _, err := tr.PatchDocument(context.Background(), "doc-1", []domain.FieldPatch{{Path: "a", Value: 1, Source: "e2e"}}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if _, err := tr.Recalculate(context.Background(), domain.RecalculateRequest{TenantID: "demo", Year: 2024, DocIDs: []string{"doc-1"}}); err != nil {
		t.Fatalf("recalculate: %v", err)
	}

	ex := tr.Exchanges()
	if len(ex) != 2 {
		t.Fatalf("expected 2 exchanges, got %d", len(ex))
	}
	if ex[0].Call != domain.CallPatch || ex[0].Method != http.MethodPatch || ex[0].Path != "/documents/doc-1" || ex[0].Status != 200 {
		t.Fatalf("unexpected first exchange: %+v", ex[0])
	}
	if string(ex[0].Request) != `[{"path":"a","value":1,"source":"e2e"}]` {
		t.Fatalf("unexpected traced request: %s", ex[0].Request)
	}

	dir := filepath.Join(t.TempDir(), "attempt-2")
	path, err := tr.WriteFile(dir)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc struct {
		Exchanges []Exchange `json:"exchanges"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("invalid trace JSON: %v", err)
	}
	if len(doc.Exchanges) != 2 || doc.Exchanges[1].Call != domain.CallRecalculate {
		t.Fatalf("unexpected trace file: %+v", doc.Exchanges)
	}
}
