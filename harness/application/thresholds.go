package application

import (
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"limites-harness/harness/domain"
)

const (
	MetricReqFailed   = "http_req_failed"
	MetricReqDuration = "http_req_duration"
)

// Evaluate aplica os thresholds sobre as métricas agregadas da execução.
func Evaluate(th domain.Thresholds, m domain.RunMetrics) []domain.ThresholdResult {
	rate := m.ErrorRate()
	p95 := Percentile(m.Durations, 0.95)

	return []domain.ThresholdResult{
		{
			Metric: MetricReqFailed,
			Expr:   "rate<" + formatFloat(th.MaxErrorRate),
			Value:  rate,
			OK:     rate < th.MaxErrorRate,
		},
		{
			Metric: MetricReqDuration,
			Expr:   "p(95)<" + formatInt(th.MaxP95.Milliseconds()),
			Value:  float64(p95) / float64(time.Millisecond),
			OK:     p95 < th.MaxP95,
		},
	}
}

// Percentile usa interpolação linear da CDF empírica. Retorna 0 sem amostras.
func Percentile(ds []time.Duration, p float64) time.Duration {
	if len(ds) == 0 {
		return 0
	}
	xs := make([]float64, len(ds))
	for i, d := range ds {
		xs[i] = float64(d)
	}
	slices.Sort(xs)
	return time.Duration(stat.Quantile(p, stat.LinInterp, xs, nil))
}
