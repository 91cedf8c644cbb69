package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"limites-harness/harness"
	"limites-harness/harness/config"
	"limites-harness/harness/infra"
	"limites-harness/harness/report"
	"limites-harness/internal/logging"
)

func newLoadCmd(v *viper.Viper, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Run the presign/patch/recalculate load scenario",
		Long: `Run VUS virtual users for DURATION against BASE_URL.

Each iteration requests a presigned upload, patches DOC_ID and asks for the
limits recalculation, then pauses. The run fails (exit 99) when
http_req_failed rate>=0.02 or http_req_duration p(95)>=1200ms.

Examples:
  VUS=10 DURATION=1m harness load
  harness load --base-url http://staging:8080 --profile locust`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.ReadLoad(v)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger := logging.New(logging.Options{Level: v.GetString("log_level"), Output: stderr, Prefix: "load"})

			opts := harness.LoadOptionsFromConfig(cfg)
			opts.Logger = logger

			if cfg.Stats.Enabled {
				rdb := redis.NewClient(&redis.Options{
					Addr:     cfg.Stats.RedisAddr,
					Password: cfg.Stats.RedisPassword,
					DB:       cfg.Stats.RedisDB,
				})
				defer func() { _ = rdb.Close() }()

				pingCtx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
				_, err := rdb.Ping(pingCtx).Result()
				cancel()
				if err != nil {
					return fmt.Errorf("redis stats ping: %w", err)
				}

				opts.Sinks = append(opts.Sinks, infra.NewRedisSampleStore(
					rdb,
					infra.WithSamplePrefix(cfg.Stats.Prefix),
					infra.WithSampleTTL(cfg.Stats.TTL),
					infra.WithSampleBucket(cfg.Stats.Bucket),
					infra.WithSampleDurations(cfg.Stats.TrackDurations),
				))
				logger.Info("load stats enabled", "redis", cfg.Stats.RedisAddr, "prefix", cfg.Stats.Prefix,
					"bucket", cfg.Stats.Bucket, "ttl", cfg.Stats.TTL)
			}

			rep, err := harness.RunLoad(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if err := report.Render(stdout, rep); err != nil {
				return fmt.Errorf("render summary: %w", err)
			}
			if cfg.SummaryExport != "" {
				if err := report.Export(cfg.SummaryExport, rep); err != nil {
					return err
				}
				logger.Info("summary exported", "path", cfg.SummaryExport)
			}

			if !rep.Passed() {
				te := &thresholdsError{}
				for _, t := range rep.Thresholds {
					if !t.OK {
						te.failed = append(te.failed, t.Metric+" "+t.Expr)
					}
				}
				return te
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Int("vus", 5, "concurrent virtual users (VUS)")
	f.Duration("duration", 30*time.Second, "run duration (DURATION)")
	f.String("base-url", "http://localhost:8080", "service base URL (BASE_URL)")
	f.String("profile", "k6", "iteration profile: k6 or locust (LOAD_PROFILE)")
	f.String("summary-export", "", "write the JSON summary to this path (SUMMARY_EXPORT)")
	bind(v, cmd, map[string]string{
		"vus":            "vus",
		"duration":       "duration",
		"base_url":       "base-url",
		"load_profile":   "profile",
		"summary_export": "summary-export",
	})
	return cmd
}

func bind(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		_ = v.BindPFlag(key, cmd.Flags().Lookup(flag))
	}
}
