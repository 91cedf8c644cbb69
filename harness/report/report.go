// Package report apresenta o resultado da carga: resumo no terminal no formato
// do k6 e exportação em JSON.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"

	"limites-harness/harness/application"
	"limites-harness/harness/domain"
)

// ordem fixa dos checks da iteração; extras aparecem depois, em ordem alfabética
var checkOrder = []string{
	domain.CheckPresign.Name,
	domain.CheckPatch.Name,
	domain.CheckRecalculate.Name,
}

// DurationStats resume http_req_duration em milissegundos.
type DurationStats struct {
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Med float64 `json:"med"`
	P90 float64 `json:"p(90)"`
	P95 float64 `json:"p(95)"`
	Max float64 `json:"max"`
}

// Summary é a versão exportável do LoadReport.
type Summary struct {
	RunID      string                     `json:"run_id"`
	Profile    string                     `json:"profile"`
	VUs        int                        `json:"vus"`
	Started    time.Time                  `json:"started"`
	ElapsedMS  int64                      `json:"elapsed_ms"`
	Iterations int64                      `json:"iterations"`
	Requests   int64                      `json:"requests"`
	Failed     int64                      `json:"failed"`
	ErrorRate  float64                    `json:"error_rate"`
	Duration   DurationStats              `json:"http_req_duration"`
	Thresholds []domain.ThresholdResult   `json:"thresholds"`
	Checks     map[string]domain.Counters `json:"checks"`
	Calls      map[string]domain.Counters `json:"calls"`
	Passed     bool                       `json:"passed"`
}

func Summarize(r domain.LoadReport) Summary {
	s := Summary{
		RunID:      r.RunID,
		Profile:    r.Profile,
		VUs:        r.VUs,
		Started:    r.Started,
		ElapsedMS:  r.Elapsed.Milliseconds(),
		Iterations: r.Iterations,
		Requests:   r.Metrics.Requests,
		Failed:     r.Metrics.Failed,
		ErrorRate:  r.Metrics.ErrorRate(),
		Duration:   durationStats(r.Metrics.Durations),
		Thresholds: r.Thresholds,
		Checks:     map[string]domain.Counters{},
		Calls:      map[string]domain.Counters{},
		Passed:     r.Passed(),
	}
	for name, c := range r.Metrics.Checks {
		s.Checks[name] = c
	}
	for call, c := range r.Metrics.ByCall {
		s.Calls[string(call)] = c
	}
	return s
}

func durationStats(ds []time.Duration) DurationStats {
	if len(ds) == 0 {
		return DurationStats{}
	}
	var sum time.Duration
	lo, hi := ds[0], ds[0]
	for _, d := range ds {
		sum += d
		lo = min(lo, d)
		hi = max(hi, d)
	}
	return DurationStats{
		Avg: ms(sum / time.Duration(len(ds))),
		Min: ms(lo),
		Med: ms(application.Percentile(ds, 0.5)),
		P90: ms(application.Percentile(ds, 0.90)),
		P95: ms(application.Percentile(ds, 0.95)),
		Max: ms(hi),
	}
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

// Export grava o resumo em JSON no caminho indicado.
func Export(path string, r domain.LoadReport) error {
	b, err := json.MarshalIndent(Summarize(r), "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create summary dir: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// Render escreve o resumo legível. Cores só saem quando w é um terminal.
func Render(w io.Writer, r domain.LoadReport) error {
	re := lipgloss.NewRenderer(w)
	ok := re.NewStyle().Foreground(lipgloss.Color("2")).Render("✓")
	bad := re.NewStyle().Foreground(lipgloss.Color("1")).Render("✗")
	dim := re.NewStyle().Faint(true)
	title := re.NewStyle().Bold(true)

	mark := func(pass bool) string {
		if pass {
			return ok
		}
		return bad
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title.Render("limits load "+r.Profile))
	fmt.Fprintf(&b, "  %s\n\n", dim.Render(fmt.Sprintf("run=%s vus=%d duration=%s iterations=%d",
		r.RunID, r.VUs, r.Elapsed.Round(time.Millisecond), r.Iterations)))

	b.WriteString("  checks\n")
	for _, name := range orderedChecks(r.Metrics.Checks) {
		c := r.Metrics.Checks[name]
		fmt.Fprintf(&b, "    %s %s\n", mark(c.Failed == 0), name)
		if c.Failed > 0 {
			fmt.Fprintf(&b, "     %s\n", dim.Render(fmt.Sprintf("↳  %.0f%% %s %d / %s %d",
				c.Rate()*100, "✓", c.Passed, "✗", c.Failed)))
		}
	}

	b.WriteString("\n  thresholds\n")
	for _, t := range r.Thresholds {
		fmt.Fprintf(&b, "    %s %-18s %-14s %s\n", mark(t.OK), t.Metric, t.Expr, thresholdValue(t))
	}

	d := durationStats(r.Metrics.Durations)
	b.WriteString("\n")
	fmt.Fprintf(&b, "    http_reqs.........: %d\n", r.Metrics.Requests)
	fmt.Fprintf(&b, "    http_req_failed...: %.2f%% (%d of %d)\n", r.Metrics.ErrorRate()*100, r.Metrics.Failed, r.Metrics.Requests)
	fmt.Fprintf(&b, "    http_req_duration.: avg=%.2fms min=%.2fms med=%.2fms p(90)=%.2fms p(95)=%.2fms max=%.2fms\n",
		d.Avg, d.Min, d.Med, d.P90, d.P95, d.Max)

	verdict := re.NewStyle().Bold(true).Foreground(lipgloss.Color("2")).Render("PASSED")
	if !r.Passed() {
		verdict = re.NewStyle().Bold(true).Foreground(lipgloss.Color("1")).Render("FAILED")
	}
	fmt.Fprintf(&b, "\n  result: %s\n", verdict)

	_, err := io.WriteString(w, b.String())
	return err
}

func thresholdValue(t domain.ThresholdResult) string {
	if t.Metric == application.MetricReqFailed {
		return fmt.Sprintf("rate=%.2f%%", t.Value*100)
	}
	return fmt.Sprintf("p(95)=%.2fms", t.Value)
}

func orderedChecks(checks map[string]domain.Counters) []string {
	out := make([]string, 0, len(checks))
	for _, name := range checkOrder {
		if _, ok := checks[name]; ok {
			out = append(out, name)
		}
	}
	var extra []string
	for name := range checks {
		if !slices.Contains(checkOrder, name) {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}
