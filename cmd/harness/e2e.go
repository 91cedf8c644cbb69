package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"limites-harness/harness"
	"limites-harness/harness/config"
	"limites-harness/internal/logging"
)

func newE2ECmd(v *viper.Viper, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "e2e",
		Short: "Patch a seeded document, recalculate its limits and check the dashboard",
		Long: `Run the end-to-end limits workflow against a running stack.

Requires E2E_LIVE (any value) and E2E_DOC_ID pointing at an already seeded
document; otherwise the scenario is skipped and the command exits 0.

Examples:
  E2E_LIVE=1 E2E_DOC_ID=doc-123 harness e2e
  E2E_LIVE=1 E2E_DOC_ID=doc-123 harness e2e --retries 1 --trace on`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.ReadScenario(v)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			opts, err := harness.ScenarioOptionsFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			opts.Logger = logging.New(logging.Options{Level: v.GetString("log_level"), Output: stderr, Prefix: "e2e"})

			res := harness.RunScenario(cmd.Context(), opts)
			switch res.Status {
			case harness.ScenarioSkipped:
				opts.Logger.Warn("scenario skipped", "reason", res.Reason)
				fmt.Fprintf(stdout, "- skipped: %s\n", res.Reason)
				return nil
			case harness.ScenarioFailed:
				fmt.Fprintf(stdout, "✗ limits workflow (%d attempt(s))\n", len(res.Attempts))
				return fmt.Errorf("e2e failed: %w", res.Err())
			default:
				last := res.Attempts[len(res.Attempts)-1]
				fmt.Fprintf(stdout, "✓ limits workflow doc=%s elapsed=%s attempt=%d\n", opts.DocID, last.Workflow.Elapsed, last.N)
				return nil
			}
		},
	}

	f := cmd.Flags()
	f.Int("retries", 0, "extra attempts after a failure (E2E_RETRIES)")
	f.String("trace", "on-first-retry", "trace mode: off, on, on-first-retry (E2E_TRACE)")
	f.String("trace-dir", "test-results", "trace output directory (E2E_TRACE_DIR)")
	f.Bool("headless", true, "run Chrome headless (E2E_HEADLESS)")
	bind(v, cmd, map[string]string{
		"e2e_retries":   "retries",
		"e2e_trace":     "trace",
		"e2e_trace_dir": "trace-dir",
		"e2e_headless":  "headless",
	})
	return cmd
}
