// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - Client: API de documentos/limites sobre github.com/valyala/fasthttp
//   - Browser: dashboard via Chrome headless (github.com/chromedp/chromedp)
//   - MemorySampleStore / RedisSampleStore: persistência das amostras de carga
//   - Throttle: token bucket por endpoint usando golang.org/x/time/rate
//   - InFlightPool: vagas de MAX_IN_FLIGHT com pico de ocupação
//   - TracingAPI: grava cada troca com a API para o trace do e2e
package infra
