package application

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"limites-harness/harness/domain"
)

// Engine roda VUs independentes em paralelo pelo tempo configurado.
//
// Cada VU recebe seu próprio Iterator (sem estado mutável compartilhado).
// Ao fim de Duration nenhum VU começa nova iteração, mas a iteração em curso
// termina. Cancelar ctx (sinal) interrompe as chamadas em curso e as restantes e descarta
// as falhas causadas pelo cancelamento. Pânico num VU vira o erro de Run.
type Engine struct {
	RunID       string
	VUs         int
	Duration    time.Duration
	NewIterator func(vu int) Iterator
	Sink        domain.SampleSink

	// OnSinkError recebe erros do Sink (best-effort). Pode ser nil.
	OnSinkError func(error)
	Now         func() time.Time
}

// Run retorna o número de iterações concluídas.
func (e Engine) Run(ctx context.Context) (int64, error) {
	if e.VUs <= 0 {
		return 0, errors.New("vus must be > 0")
	}
	if e.Duration <= 0 {
		return 0, errors.New("duration must be > 0")
	}
	if e.NewIterator == nil {
		return 0, errors.New("iterator factory is required")
	}
	if e.Now == nil {
		e.Now = time.Now
	}

	// um VU que entra em pânico encerra os demais via gctx
	g, gctx := errgroup.WithContext(ctx)
	stop, cancel := context.WithTimeout(gctx, e.Duration)
	defer cancel()

	var iterations atomic.Int64
	for vu := 1; vu <= e.VUs; vu++ {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("vu %d panicked: %v", vu, r)
				}
			}()
			e.runVU(ctx, stop, vu, &iterations)
			return nil
		})
	}
	err := g.Wait()
	return iterations.Load(), err
}

func (e Engine) runVU(ctx, stop context.Context, vu int, iterations *atomic.Int64) {
	it := e.NewIterator(vu)
	for iter := 0; stop.Err() == nil; iter++ {
		for _, o := range it.Iterate(ctx) {
			if o.Err != nil && ctx.Err() != nil {
				continue
			}
			e.record(ctx, vu, iter, o)
		}
		iterations.Add(1)

		if !sleepCtx(stop, it.Pause()) {
			return
		}
	}
}

func (e Engine) record(ctx context.Context, vu, iter int, o Outcome) {
	if e.Sink == nil {
		return
	}
	passed := o.Passed()
	s := domain.Sample{
		Run:       e.RunID,
		VU:        vu,
		Iteration: iter,
		Call:      o.Call,
		Check:     o.Check.Name,
		Status:    o.Response.Status,
		Duration:  o.Response.Duration,
		Passed:    passed,
		Failed:    !passed,
		Unsent:    o.Response.Unsent,
		At:        e.Now(),
	}
	if o.Err != nil {
		s.Err = o.Err.Error()
	}
	if err := e.Sink.Record(context.WithoutCancel(ctx), s); err != nil && e.OnSinkError != nil {
		e.OnSinkError(err)
	}
}

// sleepCtx dorme d ou até ctx encerrar. Retorna false se ctx encerrou.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
