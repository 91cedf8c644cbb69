// Package application contém os casos de uso do harness:
// a iteração de carga, o fluxo patch+recálculo do e2e, o engine de VUs,
// a avaliação de thresholds e as guardas de ritmo/concorrência.
//
// Ele depende apenas do pacote domain e não conhece HTTP nem navegador.
// Ex.: Workflow.Run(ctx) retorna as respostas observadas e um erro tipado
// (StatusError/BudgetError) quando uma asserção falha.
package application
