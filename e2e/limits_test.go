package e2e

import (
	"context"
	"os"
	"testing"

	"limites-harness/harness"
	"limites-harness/harness/config"
	"limites-harness/internal/logging"
)

func TestLimitsWorkflow(t *testing.T) {
	cfg, err := config.ReadScenario(config.New())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	opts, err := harness.ScenarioOptionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if reason := opts.SkipReason(); reason != "" {
		t.Skip(reason)
	}
	opts.Logger = logging.New(logging.Options{Level: os.Getenv("LOG_LEVEL"), Prefix: "e2e"})

	res := harness.RunScenario(context.Background(), opts)
	for _, a := range res.Attempts {
		if a.TraceDir != "" {
			t.Logf("attempt %d trace: %s", a.N, a.TraceDir)
		}
	}
	if res.Status != harness.ScenarioPassed {
		t.Fatalf("limits workflow failed after %d attempt(s): %v", len(res.Attempts), res.Err())
	}
	t.Logf("patch + recalculate took %s", res.Attempts[len(res.Attempts)-1].Workflow.Elapsed)
}
