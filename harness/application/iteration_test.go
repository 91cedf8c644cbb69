package application

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"limites-harness/harness/domain"
)

func newIteration(api domain.API) LoadIteration {
	return LoadIteration{
		API:      api,
		TenantID: "demo",
		DocID:    "demo-doc",
		Year:     2024,
		Profile:  K6Profile(rand.New(rand.NewPCG(1, 2))),
	}
}

func TestLoadIteration_IssuesPresignPatchRecalculate(t *testing.T) {
	api := newFakeAPI()
	it := newIteration(api)

	outs := it.Iterate(context.Background())
	if len(outs) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outs))
	}

	calls := api.Calls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(calls))
	}

	p := calls[0]
	if p.call != domain.CallPresign {
		t.Fatalf("expected presign first, got %s", p.call)
	}
	if p.presign.Key != "load/demo-doc.txt" || p.presign.ContentType != "text/plain" || p.presign.TenantID != "demo" {
		t.Fatalf("unexpected presign payload: %+v", p.presign)
	}

	patch := calls[1]
	if patch.call != domain.CallPatch || patch.docID != "demo-doc" {
		t.Fatalf("expected patch of demo-doc, got %s %q", patch.call, patch.docID)
	}
	if len(patch.patch) != 2 {
		t.Fatalf("expected 2 field edits, got %d", len(patch.patch))
	}
	gross := patch.patch[0]
	if gross.Path != "totals.gross_amount" || gross.Source != "loadtest" {
		t.Fatalf("unexpected first edit: %+v", gross)
	}
	v, ok := gross.Value.(float64)
	if !ok || v < 0 || v >= 500 {
		t.Fatalf("expected random gross amount in [0,500), got %v", gross.Value)
	}
	text := patch.patch[1]
	if text.Path != "storage.mock_text" || text.Value != "patched during load" || text.Source != "loadtest" {
		t.Fatalf("unexpected second edit: %+v", text)
	}

	rec := calls[2]
	if rec.call != domain.CallRecalculate {
		t.Fatalf("expected recalculate last, got %s", rec.call)
	}
	if rec.recalc.TenantID != "demo" || rec.recalc.Year != 2024 || len(rec.recalc.DocIDs) != 1 || rec.recalc.DocIDs[0] != "demo-doc" {
		t.Fatalf("unexpected recalc payload: %+v", rec.recalc)
	}

	if got := it.Pause(); got != time.Second {
		t.Fatalf("expected 1s pause, got %s", got)
	}
}

func TestLoadIteration_ContinuesAfterFailedCheck(t *testing.T) {
	api := newFakeAPI()
	api.status[domain.CallPresign] = 500

	outs := newIteration(api).Iterate(context.Background())
	if len(outs) != 3 {
		t.Fatalf("expected iteration to continue after failed check, got %d outcomes", len(outs))
	}
	if outs[0].Passed() {
		t.Fatalf("expected presign 500 to fail its check")
	}
	if !outs[1].Passed() || !outs[2].Passed() {
		t.Fatalf("expected patch and recalc to pass")
	}
}

func TestLoadIteration_ToleratesMissingDocumentAndSyncRecalc(t *testing.T) {
	api := newFakeAPI()
	api.status[domain.CallPatch] = 404
	api.status[domain.CallRecalculate] = 200

	for _, o := range newIteration(api).Iterate(context.Background()) {
		if !o.Passed() {
			t.Fatalf("expected %s (status %d) to pass", o.Call, o.Response.Status)
		}
	}
}

func TestLoadIteration_TransportErrorFailsCheck(t *testing.T) {
	api := newFakeAPI()
	api.errs[domain.CallRecalculate] = errors.New("connection refused")

	outs := newIteration(api).Iterate(context.Background())
	if outs[2].Passed() {
		t.Fatalf("expected transport error to fail the check")
	}
}

func TestLoadIteration_StopsWhenContextDone(t *testing.T) {
	api := newFakeAPI()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if outs := newIteration(api).Iterate(ctx); len(outs) != 0 {
		t.Fatalf("expected no outcomes with canceled ctx, got %d", len(outs))
	}
	if n := len(api.Calls()); n != 0 {
		t.Fatalf("expected no calls, got %d", n)
	}
}

func TestLocustProfile(t *testing.T) {
	api := newFakeAPI()
	it := newIteration(api)
	it.Profile = LocustProfile(rand.New(rand.NewPCG(3, 4)))

	it.Iterate(context.Background())
	calls := api.Calls()
	if calls[0].presign.Key != "locust/demo-doc.txt" {
		t.Fatalf("expected locust key, got %q", calls[0].presign.Key)
	}
	if calls[1].patch[0].Value != 123.45 || calls[1].patch[0].Source != "locust" {
		t.Fatalf("unexpected locust edit: %+v", calls[1].patch[0])
	}
	for i := 0; i < 50; i++ {
		if p := it.Pause(); p < time.Second || p > 2*time.Second {
			t.Fatalf("expected pause in [1s,2s], got %s", p)
		}
	}
}

func TestProfileByName(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 1))
	if p, ok := ProfileByName("", rnd); !ok || p.Name != "k6" {
		t.Fatalf("expected empty name to select k6, got %q ok=%v", p.Name, ok)
	}
	if p, ok := ProfileByName("locust", rnd); !ok || p.Name != "locust" {
		t.Fatalf("expected locust profile, got %q ok=%v", p.Name, ok)
	}
	if _, ok := ProfileByName("jmeter", rnd); ok {
		t.Fatalf("expected unknown profile to be rejected")
	}
}
