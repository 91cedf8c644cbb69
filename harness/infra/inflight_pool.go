package infra

import (
	"context"
	"sync"
	"sync/atomic"

	"limites-harness/harness/domain"
)

// InFlightPool é o semáforo de MAX_IN_FLIGHT. Guarda o pico de ocupação para
// o log do fim da carga.
type InFlightPool struct {
	slots chan struct{}
	busy  atomic.Int64
	peak  atomic.Int64
}

var _ domain.SlotPool = (*InFlightPool)(nil)

// NewInFlightPool: size < 1 vira 1.
func NewInFlightPool(size int) *InFlightPool {
	return &InFlightPool{slots: make(chan struct{}, max(size, 1))}
}

func (p *InFlightPool) Acquire(ctx context.Context) (func(), bool) {
	if ctx.Err() != nil {
		return nil, false
	}
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, false
	}

	n := p.busy.Add(1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			p.busy.Add(-1)
			<-p.slots
		})
	}, true
}

func (p *InFlightPool) Size() int { return cap(p.slots) }

func (p *InFlightPool) Busy() int { return int(p.busy.Load()) }

// Peak é a maior ocupação já vista.
func (p *InFlightPool) Peak() int { return int(p.peak.Load()) }
