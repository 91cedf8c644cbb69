package domain

import (
	"context"
	"time"
)

// Sample é o registro de uma requisição feita durante a carga.
//
// Failed alimenta http_req_failed; Passed alimenta a taxa do check.
// As duas coincidem hoje (ver Check), mas são mantidas separadas porque
// uma falha de transporte é sempre Failed, mesmo sem check associado.
type Sample struct {
	Run       string
	VU        int
	Iteration int

	Call     Call
	Check    string
	Status   int
	Duration time.Duration
	Passed   bool
	Failed   bool
	Unsent   bool // não saiu: fica fora de http_req_duration
	Err      string

	At time.Time
}

// SampleSink é a estratégia de persistência das amostras.
//
// O engine trata erro como best-effort (loga e segue a carga).
type SampleSink interface {
	Record(ctx context.Context, s Sample) error
}

// Counters conta resultados de um check ou de uma chamada.
type Counters struct {
	Passed int64 `json:"passed"`
	Failed int64 `json:"failed"`
}

// Total retorna Passed+Failed.
func (c Counters) Total() int64 { return c.Passed + c.Failed }

// Rate retorna a fração de Passed (0 quando vazio).
func (c Counters) Rate() float64 {
	if c.Total() == 0 {
		return 0
	}
	return float64(c.Passed) / float64(c.Total())
}

// RunMetrics é a foto agregada de uma execução.
type RunMetrics struct {
	Requests  int64
	Failed    int64
	Durations []time.Duration

	Checks map[string]Counters
	ByCall map[Call]Counters
}

// ErrorRate é a fração de requisições com falha (0 quando não houve requisição).
func (m RunMetrics) ErrorRate() float64 {
	if m.Requests == 0 {
		return 0
	}
	return float64(m.Failed) / float64(m.Requests)
}
