package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"limites-harness/harness/application"
	"limites-harness/harness/domain"
)

func sampleReport() domain.LoadReport {
	m := domain.RunMetrics{
		Requests: 100,
		Failed:   1,
		Durations: []time.Duration{
			10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond, 40 * time.Millisecond,
		},
		Checks: map[string]domain.Counters{
			"recalc accepted": {Passed: 33, Failed: 1},
			"presign 200":     {Passed: 33},
			"patch success":   {Passed: 33},
			"zz extra":        {Passed: 1},
		},
		ByCall: map[domain.Call]domain.Counters{
			domain.CallPresign: {Passed: 33},
		},
	}
	return domain.LoadReport{
		RunID:      "run-1",
		Profile:    "k6",
		VUs:        5,
		Started:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Elapsed:    30 * time.Second,
		Iterations: 33,
		Metrics:    m,
		Thresholds: application.Evaluate(domain.DefaultThresholds(), m),
	}
}

func TestRender_ListsChecksInIterationOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	order := []string{"presign 200", "patch success", "recalc accepted", "zz extra"}
	last := -1
	for _, name := range order {
		i := strings.Index(out, name)
		if i < 0 {
			t.Fatalf("expected %q in output:\n%s", name, out)
		}
		if i < last {
			t.Fatalf("expected %q after previous check:\n%s", name, out)
		}
		last = i
	}

	if !strings.Contains(out, "97% ✓ 33 / ✗ 1") {
		t.Fatalf("expected failure breakdown for recalc check:\n%s", out)
	}
	if !strings.Contains(out, "rate<0.02") || !strings.Contains(out, "p(95)<1200") {
		t.Fatalf("expected threshold expressions:\n%s", out)
	}
	if !strings.Contains(out, "result: PASSED") {
		t.Fatalf("expected PASSED verdict:\n%s", out)
	}
}

func TestRender_FailedThreshold(t *testing.T) {
	r := sampleReport()
	r.Metrics.Failed = 50
	r.Thresholds = application.Evaluate(domain.DefaultThresholds(), r.Metrics)

	var buf bytes.Buffer
	if err := Render(&buf, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "result: FAILED") {
		t.Fatalf("expected FAILED verdict:\n%s", buf.String())
	}
}

func TestExport_WritesJSONSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "summary.json")
	if err := Export(path, sampleReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var got Summary
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if got.RunID != "run-1" || got.Requests != 100 || got.Failed != 1 || !got.Passed {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if got.Duration.Max != 40 || got.Duration.Min != 10 || got.Duration.Avg != 25 {
		t.Fatalf("unexpected duration stats: %+v", got.Duration)
	}
	if got.Checks["recalc accepted"].Failed != 1 || got.Calls["presign"].Passed != 33 {
		t.Fatalf("unexpected counters: %+v %+v", got.Checks, got.Calls)
	}
	if len(got.Thresholds) != 2 {
		t.Fatalf("expected 2 thresholds, got %d", len(got.Thresholds))
	}
}
