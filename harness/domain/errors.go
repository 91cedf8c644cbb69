package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrBudgetExceeded   = errors.New("latency budget exceeded")
	ErrTextNotVisible   = errors.New("text not visible")
)

// StatusError indica que uma chamada respondeu fora do esperado.
type StatusError struct {
	Call   Call
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Call, e.Status)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// BudgetError indica que patch+recálculo passou do orçamento de latência.
type BudgetError struct {
	Elapsed time.Duration
	Budget  time.Duration
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("patch+recalculate took %s, budget %s", e.Elapsed, e.Budget)
}

func (e *BudgetError) Unwrap() error { return ErrBudgetExceeded }
