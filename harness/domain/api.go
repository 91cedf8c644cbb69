package domain

import (
	"context"
	"time"
)

// Call identifica um dos endpoints exercitados pelo harness.
type Call string

const (
	CallPresign     Call = "presign"
	CallPatch       Call = "patch"
	CallRecalculate Call = "recalculate"
)

// Response é o que o harness observa de uma chamada: status, latência e corpo.
//
// Status é 0 quando a requisição não chegou a ter resposta (erro de rede/timeout).
// Unsent marca a chamada barrada antes de sair (pacer, vaga, ctx): conta como
// falha, mas não tem latência.
type Response struct {
	Call     Call
	Method   string
	Path     string
	Status   int
	Duration time.Duration
	Body     []byte
	Unsent   bool
}

// OK segue a convenção "response.ok()": qualquer status 2xx.
func (r Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// API é o serviço externo de documentos/limites visto como caixa-preta.
//
// Implementações retornam a Response mesmo quando err != nil, para que a
// latência de falhas de transporte também seja contabilizada.
type API interface {
	Presign(ctx context.Context, req PresignRequest) (Response, error)
	PatchDocument(ctx context.Context, docID string, changes []FieldPatch) (Response, error)
	Recalculate(ctx context.Context, req RecalculateRequest) (Response, error)
}

// Frontend representa o front-end navegável (dashboard).
type Frontend interface {
	// ExpectText navega até route e espera um elemento com exatamente text ficar visível.
	ExpectText(ctx context.Context, route, text string) error
	// Screenshot captura a página em route (PNG).
	Screenshot(ctx context.Context, route string) ([]byte, error)
}
