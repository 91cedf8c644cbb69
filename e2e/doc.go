// Package e2e roda o fluxo de limites contra uma stack já no ar.
//
//	E2E_LIVE=1 E2E_DOC_ID=<doc semeado> go test ./e2e/...
//
// Sem E2E_LIVE ou E2E_DOC_ID o teste é pulado; nada é semeado aqui.
package e2e
