package domain

import "time"

// Thresholds são os critérios agregados de aceite da carga.
// As comparações são estritas: rate < MaxErrorRate e p(95) < MaxP95.
type Thresholds struct {
	MaxErrorRate float64
	MaxP95       time.Duration
}

// DefaultThresholds: http_req_failed rate<0.02 e http_req_duration p(95)<1200.
func DefaultThresholds() Thresholds {
	return Thresholds{MaxErrorRate: 0.02, MaxP95: 1200 * time.Millisecond}
}

// ThresholdResult é o veredito de um threshold.
type ThresholdResult struct {
	Metric string  `json:"metric"`
	Expr   string  `json:"expr"`
	Value  float64 `json:"value"`
	OK     bool    `json:"ok"`
}

// LoadReport resume uma execução de carga.
type LoadReport struct {
	RunID      string
	Profile    string
	VUs        int
	Started    time.Time
	Elapsed    time.Duration
	Iterations int64
	Metrics    RunMetrics
	Thresholds []ThresholdResult
}

// Passed é falso se qualquer threshold foi violado, independente dos checks.
func (r LoadReport) Passed() bool {
	for _, t := range r.Thresholds {
		if !t.OK {
			return false
		}
	}
	return true
}
