package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"limites-harness/harness/domain"
)

var ErrNoSlot = errors.New("no in-flight slot available")

// InFlightGate controla a entrada das chamadas no pool de vagas.
//
// Sem Pool não há limite. Com Timeout > 0 a espera por vaga é limitada; ao
// estourar, a chamada falha com ErrNoSlot sem chegar à API e entra na taxa
// de http_req_failed como qualquer outra falha de transporte.
type InFlightGate struct {
	Pool    domain.SlotPool
	Timeout time.Duration
}

func (g InFlightGate) Enter(ctx context.Context, call domain.Call) (leave func(), err error) {
	if g.Pool == nil {
		return func() {}, nil
	}

	wait := ctx
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		wait, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	release, ok := g.Pool.Acquire(wait)
	if ok {
		return release, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: wait for slot: %w", call, err)
	}
	return nil, fmt.Errorf("%s: %w after %s", call, ErrNoSlot, g.Timeout)
}
