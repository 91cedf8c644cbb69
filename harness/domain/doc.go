// Package domain define contratos e tipos de domínio do harness de limites.
//
// Este pacote não depende de HTTP, navegador nem de implementações concretas.
// Payloads, checks, thresholds e amostras são tipos simples; a camada infra
// decide como falar com a API externa e onde guardar as métricas.
package domain
