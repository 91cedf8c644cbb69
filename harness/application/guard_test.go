package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"limites-harness/harness/domain"
)

type recordingPacer struct {
	calls []domain.Call
	err   error
}

func (p *recordingPacer) Wait(_ context.Context, call domain.Call) error {
	p.calls = append(p.calls, call)
	return p.err
}

func TestGuardedAPI_PacesEveryCallByName(t *testing.T) {
	api := newFakeAPI()
	pacer := &recordingPacer{}
	pool := &countingPool{}
	g := GuardedAPI{API: api, Pacer: pacer, Gate: InFlightGate{Pool: pool}}

	newIteration(g).Iterate(context.Background())

	want := []domain.Call{domain.CallPresign, domain.CallPatch, domain.CallRecalculate}
	if len(pacer.calls) != len(want) {
		t.Fatalf("expected %d paced calls, got %v", len(want), pacer.calls)
	}
	for i := range want {
		if pacer.calls[i] != want[i] {
			t.Fatalf("expected %s at %d, got %s", want[i], i, pacer.calls[i])
		}
	}
	if pool.acquired != 3 || pool.released != 3 {
		t.Fatalf("expected 3 acquire/release pairs, got %d/%d", pool.acquired, pool.released)
	}
}

func TestGuardedAPI_NoSlotFailsWithoutCallingAPI(t *testing.T) {
	api := newFakeAPI()
	g := GuardedAPI{API: api, Gate: InFlightGate{Pool: blockingPool{}, Timeout: 5 * time.Millisecond}}

	resp, err := g.Presign(context.Background(), domain.PresignRequest{})
	if !errors.Is(err, ErrNoSlot) {
		t.Fatalf("expected ErrNoSlot, got %v", err)
	}
	if resp.Call != domain.CallPresign || resp.Status != 0 || !resp.Unsent {
		t.Fatalf("expected unsent presign response, got %+v", resp)
	}
	if n := len(api.Calls()); n != 0 {
		t.Fatalf("expected API not to be called, got %d", n)
	}
}

func TestGuardedAPI_PacerErrorPropagates(t *testing.T) {
	api := newFakeAPI()
	g := GuardedAPI{API: api, Pacer: &recordingPacer{err: context.Canceled}}

	_, err := g.Recalculate(context.Background(), domain.RecalculateRequest{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected pacer error, got %v", err)
	}
}
