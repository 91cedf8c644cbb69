package application

import (
	"context"
	"math/rand/v2"
	"time"

	"limites-harness/harness/domain"
)

// Outcome é o resultado de uma chamada dentro de uma iteração.
type Outcome struct {
	Call     domain.Call
	Check    domain.Check
	Response domain.Response
	Err      error
}

// Passed é verdadeiro quando a chamada teve resposta e o status passou no check.
func (o Outcome) Passed() bool {
	return o.Err == nil && o.Check.Passed(o.Response.Status)
}

// Iterator é o que um VU executa em loop.
type Iterator interface {
	Iterate(ctx context.Context) []Outcome
	// Pause é a espera entre iterações.
	Pause() time.Duration
}

// Profile descreve os dados que uma iteração manda para a API.
type Profile struct {
	Name        string
	KeyPrefix   string
	ContentType string
	Source      string
	MockText    string
	GrossAmount func() float64
	Pause       func() time.Duration
}

// K6Profile: valor aleatório em [0, 500), texto fixo, source "loadtest", pausa de 1s.
func K6Profile(rnd *rand.Rand) Profile {
	return Profile{
		Name:        "k6",
		KeyPrefix:   "load",
		ContentType: "text/plain",
		Source:      "loadtest",
		MockText:    "patched during load",
		GrossAmount: func() float64 { return rnd.Float64() * 500 },
		Pause:       func() time.Duration { return time.Second },
	}
}

// LocustProfile: valor fixo 123.45, source "locust", pausa uniforme entre 1s e 2s.
func LocustProfile(rnd *rand.Rand) Profile {
	return Profile{
		Name:        "locust",
		KeyPrefix:   "locust",
		ContentType: "text/plain",
		Source:      "locust",
		MockText:    "patched via locust",
		GrossAmount: func() float64 { return 123.45 },
		Pause: func() time.Duration {
			return time.Second + time.Duration(rnd.Int64N(int64(time.Second)+1))
		},
	}
}

// ProfileByName devolve o perfil pedido; ok=false para nome desconhecido.
func ProfileByName(name string, rnd *rand.Rand) (Profile, bool) {
	switch name {
	case "", "k6":
		return K6Profile(rnd), true
	case "locust":
		return LocustProfile(rnd), true
	default:
		return Profile{}, false
	}
}

// LoadIteration faz presign -> patch -> recálculo para um documento.
// Um check que falha não interrompe a iteração.
type LoadIteration struct {
	API      domain.API
	TenantID string
	DocID    string
	Year     int
	Profile  Profile
}

func (it LoadIteration) StorageKey() string {
	return it.Profile.KeyPrefix + "/" + it.DocID + ".txt"
}

func (it LoadIteration) Iterate(ctx context.Context) []Outcome {
	out := make([]Outcome, 0, 3)

	if ctx.Err() != nil {
		return out
	}
	resp, err := it.API.Presign(ctx, domain.PresignRequest{
		Key:         it.StorageKey(),
		ContentType: it.Profile.ContentType,
		TenantID:    it.TenantID,
	})
	out = append(out, Outcome{Call: domain.CallPresign, Check: domain.CheckPresign, Response: resp, Err: err})

	if ctx.Err() != nil {
		return out
	}
	resp, err = it.API.PatchDocument(ctx, it.DocID, []domain.FieldPatch{
		{Path: "totals.gross_amount", Value: it.Profile.GrossAmount(), Source: it.Profile.Source},
		{Path: "storage.mock_text", Value: it.Profile.MockText, Source: it.Profile.Source},
	})
	out = append(out, Outcome{Call: domain.CallPatch, Check: domain.CheckPatch, Response: resp, Err: err})

	if ctx.Err() != nil {
		return out
	}
	resp, err = it.API.Recalculate(ctx, domain.RecalculateRequest{
		TenantID: it.TenantID,
		Year:     it.Year,
		DocIDs:   []string{it.DocID},
	})
	out = append(out, Outcome{Call: domain.CallRecalculate, Check: domain.CheckRecalculate, Response: resp, Err: err})

	return out
}

func (it LoadIteration) Pause() time.Duration {
	if it.Profile.Pause == nil {
		return time.Second
	}
	return it.Profile.Pause()
}
