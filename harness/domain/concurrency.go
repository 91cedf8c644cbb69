package domain

import "context"

// SlotPool limita quantas requisições da carga podem estar em voo.
//
// Acquire espera uma vaga até ctx encerrar; com ok=true o chamador devolve a
// vaga chamando release.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}

// Pacer segura uma chamada até ela poder sair (ex: token bucket por endpoint).
type Pacer interface {
	Wait(ctx context.Context, call Call) error
}
