package application

import (
	"context"
	"sync"
	"time"

	"limites-harness/harness/domain"
)

type recordedCall struct {
	call    domain.Call
	docID   string
	presign domain.PresignRequest
	patch   []domain.FieldPatch
	recalc  domain.RecalculateRequest
}

// fakeAPI responde com status fixos por chamada e guarda o que recebeu.
type fakeAPI struct {
	mu     sync.Mutex
	calls  []recordedCall
	status map[domain.Call]int
	errs   map[domain.Call]error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		status: map[domain.Call]int{
			domain.CallPresign:     200,
			domain.CallPatch:       200,
			domain.CallRecalculate: 202,
		},
		errs: map[domain.Call]error{},
	}
}

func (f *fakeAPI) respond(rc recordedCall) (domain.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, rc)
	resp := domain.Response{Call: rc.call, Status: f.status[rc.call], Duration: time.Millisecond}
	if err := f.errs[rc.call]; err != nil {
		resp.Status = 0
		return resp, err
	}
	return resp, nil
}

func (f *fakeAPI) Presign(_ context.Context, req domain.PresignRequest) (domain.Response, error) {
	return f.respond(recordedCall{call: domain.CallPresign, presign: req})
}

func (f *fakeAPI) PatchDocument(_ context.Context, docID string, changes []domain.FieldPatch) (domain.Response, error) {
	return f.respond(recordedCall{call: domain.CallPatch, docID: docID, patch: changes})
}

func (f *fakeAPI) Recalculate(_ context.Context, req domain.RecalculateRequest) (domain.Response, error) {
	return f.respond(recordedCall{call: domain.CallRecalculate, recalc: req})
}

func (f *fakeAPI) Calls() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

type memorySink struct {
	mu      sync.Mutex
	samples []domain.Sample
	err     error
}

func (s *memorySink) Record(_ context.Context, sm domain.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, sm)
	return s.err
}

func (s *memorySink) Samples() []domain.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Sample(nil), s.samples...)
}
