package infra

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"limites-harness/harness/domain"
)

// Throttle é um token bucket (x/time/rate) por endpoint.
// Limita a taxa de chegada de cada chamada, somando todos os VUs.
type Throttle struct {
	mu      sync.Mutex
	entries map[domain.Call]*rate.Limiter
	rps     rate.Limit
	burst   int
}

// NewThrottle com rps <= 0 não limita nada; burst <= 0 vira 1.
func NewThrottle(rps float64, burst int) *Throttle {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &Throttle{
		entries: make(map[domain.Call]*rate.Limiter),
		rps:     limit,
		burst:   burst,
	}
}

func (t *Throttle) RPS() float64 { return float64(t.rps) }
func (t *Throttle) Burst() int   { return t.burst }

// Get devolve o limiter da chamada, criando na primeira vez.
func (t *Throttle) Get(call domain.Call) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	if lim, ok := t.entries[call]; ok {
		return lim
	}
	lim := rate.NewLimiter(t.rps, t.burst)
	t.entries[call] = lim
	return lim
}

// Wait implementa domain.Pacer.
func (t *Throttle) Wait(ctx context.Context, call domain.Call) error {
	return t.Get(call).Wait(ctx)
}
