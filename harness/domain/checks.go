package domain

// Check é uma verificação nomeada sobre o status de uma resposta.
type Check struct {
	Name   string
	Accept []int
}

// Passed informa se o status está entre os aceitos.
func (c Check) Passed(status int) bool {
	for _, s := range c.Accept {
		if s == status {
			return true
		}
	}
	return false
}

// Checks do cenário de carga. Patch tolera 404 (fixture ausente) e
// recálculo aceita 202 (assíncrono) ou 200 (síncrono).
var (
	CheckPresign     = Check{Name: "presign 200", Accept: []int{200}}
	CheckPatch       = Check{Name: "patch success", Accept: []int{200, 404}}
	CheckRecalculate = Check{Name: "recalc accepted", Accept: []int{202, 200}}
)
