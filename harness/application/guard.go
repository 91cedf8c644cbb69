package application

import (
	"context"
	"fmt"

	"limites-harness/harness/domain"
)

// GuardedAPI aplica o Pacer e o limite de requisições em voo antes de
// delegar cada chamada. A espera não entra na latência medida pela API.
type GuardedAPI struct {
	API   domain.API
	Pacer domain.Pacer
	Gate  InFlightGate
}

func (g GuardedAPI) Presign(ctx context.Context, req domain.PresignRequest) (domain.Response, error) {
	return g.guard(ctx, domain.CallPresign, func() (domain.Response, error) {
		return g.API.Presign(ctx, req)
	})
}

func (g GuardedAPI) PatchDocument(ctx context.Context, docID string, changes []domain.FieldPatch) (domain.Response, error) {
	return g.guard(ctx, domain.CallPatch, func() (domain.Response, error) {
		return g.API.PatchDocument(ctx, docID, changes)
	})
}

func (g GuardedAPI) Recalculate(ctx context.Context, req domain.RecalculateRequest) (domain.Response, error) {
	return g.guard(ctx, domain.CallRecalculate, func() (domain.Response, error) {
		return g.API.Recalculate(ctx, req)
	})
}

func (g GuardedAPI) guard(ctx context.Context, call domain.Call, fn func() (domain.Response, error)) (domain.Response, error) {
	if g.Pacer != nil {
		if err := g.Pacer.Wait(ctx, call); err != nil {
			return domain.Response{Call: call, Unsent: true}, fmt.Errorf("%s: pace: %w", call, err)
		}
	}

	leave, err := g.Gate.Enter(ctx, call)
	if err != nil {
		return domain.Response{Call: call, Unsent: true}, err
	}
	defer leave()

	return fn()
}
