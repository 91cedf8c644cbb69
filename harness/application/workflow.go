package application

import (
	"context"
	"fmt"
	"time"

	"limites-harness/harness/domain"
)

// Workflow é o fluxo de negócio do e2e: patch de um campo seguido do recálculo
// dos limites do documento, com orçamento de latência para os dois juntos.
type Workflow struct {
	API      domain.API
	TenantID string
	DocID    string
	Year     int
	Value    any
	Source   string
	Budget   time.Duration
	Now      func() time.Time
}

type WorkflowResult struct {
	Patch       domain.Response
	Recalculate domain.Response
	Elapsed     time.Duration
}

// Run mede de imediatamente antes do patch até logo depois da resposta do recálculo.
// Elapsed igual ao orçamento ainda passa.
func (w Workflow) Run(ctx context.Context) (WorkflowResult, error) {
	if w.Budget <= 0 {
		w.Budget = 5 * time.Second
	}
	if w.Now == nil {
		w.Now = time.Now
	}
	if w.Year == 0 {
		w.Year = 2024
	}
	if w.Source == "" {
		w.Source = "e2e"
	}
	if w.Value == nil {
		w.Value = 100.0
	}

	var res WorkflowResult
	start := w.Now()

	patch, err := w.API.PatchDocument(ctx, w.DocID, []domain.FieldPatch{
		{Path: "totals.gross_amount", Value: w.Value, Source: w.Source},
	})
	res.Patch = patch
	if err != nil {
		return res, fmt.Errorf("patch document %s: %w", w.DocID, err)
	}
	if !patch.OK() {
		return res, &domain.StatusError{Call: domain.CallPatch, Status: patch.Status}
	}

	rec, err := w.API.Recalculate(ctx, domain.RecalculateRequest{
		TenantID: w.TenantID,
		Year:     w.Year,
		DocIDs:   []string{w.DocID},
	})
	res.Recalculate = rec
	if err != nil {
		return res, fmt.Errorf("recalculate limits: %w", err)
	}
	if !rec.OK() {
		return res, &domain.StatusError{Call: domain.CallRecalculate, Status: rec.Status}
	}

	res.Elapsed = w.Now().Sub(start)
	if res.Elapsed > w.Budget {
		return res, &domain.BudgetError{Elapsed: res.Elapsed, Budget: w.Budget}
	}
	return res, nil
}
