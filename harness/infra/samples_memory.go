package infra

import (
	"context"
	"sync"
	"time"

	"limites-harness/harness/domain"
)

// MemorySampleStore agrega as amostras em memória para o relatório final.
//
// Guarda todas as durações (necessárias para o p(95)), então o consumo
// cresce com o número de requisições da execução.
type MemorySampleStore struct {
	mu        sync.Mutex
	requests  int64
	failed    int64
	durations []time.Duration
	byCheck   map[string]domain.Counters
	byCall    map[domain.Call]domain.Counters
}

func NewMemorySampleStore() *MemorySampleStore {
	return &MemorySampleStore{
		byCheck: make(map[string]domain.Counters),
		byCall:  make(map[domain.Call]domain.Counters),
	}
}

func (s *MemorySampleStore) Record(_ context.Context, sm domain.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests++
	if sm.Failed {
		s.failed++
	}
	if !sm.Unsent {
		s.durations = append(s.durations, sm.Duration)
	}

	if sm.Check != "" {
		s.byCheck[sm.Check] = bump(s.byCheck[sm.Check], sm.Passed)
	}
	if sm.Call != "" {
		s.byCall[sm.Call] = bump(s.byCall[sm.Call], !sm.Failed)
	}
	return nil
}

func bump(c domain.Counters, passed bool) domain.Counters {
	if passed {
		c.Passed++
	} else {
		c.Failed++
	}
	return c
}

// Snapshot devolve uma cópia das métricas agregadas até agora.
func (s *MemorySampleStore) Snapshot() domain.RunMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := domain.RunMetrics{
		Requests:  s.requests,
		Failed:    s.failed,
		Durations: append([]time.Duration(nil), s.durations...),
		Checks:    make(map[string]domain.Counters, len(s.byCheck)),
		ByCall:    make(map[domain.Call]domain.Counters, len(s.byCall)),
	}
	for k, v := range s.byCheck {
		m.Checks[k] = v
	}
	for k, v := range s.byCall {
		m.ByCall[k] = v
	}
	return m
}
