package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"limites-harness/harness/domain"
)

// blockingPool nunca libera vaga: só sai quando ctx encerra.
type blockingPool struct{}

func (blockingPool) Acquire(ctx context.Context) (func(), bool) {
	<-ctx.Done()
	return nil, false
}

type countingPool struct {
	acquired int
	released int
}

func (p *countingPool) Acquire(context.Context) (func(), bool) {
	p.acquired++
	return func() { p.released++ }, true
}

func TestInFlightGate_NoPoolIsUnlimited(t *testing.T) {
	leave, err := InFlightGate{}.Enter(context.Background(), domain.CallPatch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	leave()
}

func TestInFlightGate_TimeoutReturnsErrNoSlot(t *testing.T) {
	g := InFlightGate{Pool: blockingPool{}, Timeout: 10 * time.Millisecond}

	_, err := g.Enter(context.Background(), domain.CallRecalculate)
	if !errors.Is(err, ErrNoSlot) {
		t.Fatalf("expected ErrNoSlot, got %v", err)
	}
}

func TestInFlightGate_CanceledRunIsNotErrNoSlot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := InFlightGate{Pool: blockingPool{}}.Enter(ctx, domain.CallPresign)
	if errors.Is(err, ErrNoSlot) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestInFlightGate_DelegatesToPool(t *testing.T) {
	pool := &countingPool{}

	leave, err := InFlightGate{Pool: pool}.Enter(context.Background(), domain.CallPatch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	leave()
	if pool.acquired != 1 || pool.released != 1 {
		t.Fatalf("expected 1 acquire/release, got %d/%d", pool.acquired, pool.released)
	}
}
