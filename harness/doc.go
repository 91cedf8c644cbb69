// Package harness monta as execuções do harness do serviço de limites:
// a carga (RunLoad) e o cenário e2e (RunScenario).
//
// Visão geral (camadas):
//
//   - domain: payloads, checks, amostras e contratos (API, Frontend, SampleSink)
//   - application: casos de uso (iteração de carga, workflow e2e, engine de VUs, thresholds)
//   - infra: implementações concretas (cliente fasthttp, Chrome via chromedp, stores, throttle)
//   - harness (este pacote): Options + padrões + wiring das camadas
//
// Fluxo da carga:
//
//   1) Monta o cliente (com Authorization só se definido) e os limites opcionais
//   2) Cada VU executa presign, patch e recálculo seguidos de uma pausa
//   3) As amostras vão para a memória (relatório) e para os sinks extras (Redis)
//   4) Os thresholds decidem se a execução passou
//
// O binário cmd/harness lê as variáveis de ambiente (VUS, DURATION, BASE_URL,
// E2E_LIVE, E2E_DOC_ID...) via harness/config.
package harness
