// Package config lê a configuração do harness a partir do ambiente (e de flags
// ligadas via BindPFlag) usando viper. Cada chave é o nome da variável em
// minúsculas: VUS -> "vus", E2E_DOC_ID -> "e2e_doc_id".
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load é a configuração do gerador de carga.
type Load struct {
	BaseURL       string
	TenantID      string
	DocID         string
	Year          int
	Authorization string

	VUs      int
	Duration time.Duration
	Profile  string

	RequestTimeout  time.Duration
	MaxInFlight     int
	InFlightTimeout time.Duration
	RateRPS         float64
	RateBurst       int

	MaxErrorRate float64
	MaxP95       time.Duration

	SummaryExport string
	Stats         Stats
}

// Stats configura a publicação das amostras no Redis.
type Stats struct {
	Enabled        bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	Prefix         string
	TTL            time.Duration
	Bucket         string
	TrackDurations bool
}

// Scenario é a configuração do cenário e2e.
type Scenario struct {
	Live            bool
	APIBaseURL      string
	FrontendBaseURL string
	DocID           string
	TenantID        string
	Year            int
	Role            string

	Budget        time.Duration
	ExpectTimeout time.Duration
	TestTimeout   time.Duration

	Retries    int
	Trace      string
	TraceDir   string
	Headless   bool
	ChromePath string
}

// New cria um viper com os padrões do harness e leitura automática do ambiente.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	// carga
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("tenant", "demo")
	v.SetDefault("doc_id", "demo-doc")
	v.SetDefault("year", 2024)
	v.SetDefault("vus", 5)
	v.SetDefault("duration", "30s")
	v.SetDefault("load_profile", "k6")
	v.SetDefault("request_timeout", "60s")
	v.SetDefault("max_in_flight", 0)
	v.SetDefault("in_flight_timeout", "0s")
	v.SetDefault("rate_rps", 0.0)
	v.SetDefault("rate_burst", 1)
	v.SetDefault("threshold_failed_rate", 0.02)
	v.SetDefault("threshold_p95", "1200ms")
	v.SetDefault("summary_export", "")

	v.SetDefault("load_stats_enabled", false)
	v.SetDefault("load_stats_redis_addr", "")
	v.SetDefault("load_stats_redis_db", 0)
	v.SetDefault("load_stats_prefix", "limits:load")
	v.SetDefault("load_stats_ttl", "24h")
	v.SetDefault("load_stats_bucket", "minute")
	v.SetDefault("load_stats_track_durations", false)

	// e2e
	v.SetDefault("api_base_url", "http://localhost:8080")
	v.SetDefault("frontend_base_url", "http://localhost:3000")
	v.SetDefault("e2e_tenant_id", "demo")
	v.SetDefault("e2e_year", 2024)
	v.SetDefault("e2e_role", "admin")
	v.SetDefault("e2e_budget", "5s")
	v.SetDefault("e2e_expect_timeout", "5s")
	v.SetDefault("e2e_timeout", "15s")
	v.SetDefault("e2e_retries", 0)
	v.SetDefault("e2e_trace", "on-first-retry")
	v.SetDefault("e2e_trace_dir", "test-results")
	v.SetDefault("e2e_headless", true)
}

func ReadLoad(v *viper.Viper) (Load, error) {
	cfg := Load{
		BaseURL:       strings.TrimSpace(v.GetString("base_url")),
		TenantID:      v.GetString("tenant"),
		DocID:         v.GetString("doc_id"),
		Year:          v.GetInt("year"),
		Authorization: v.GetString("authorization"),

		VUs:      v.GetInt("vus"),
		Duration: v.GetDuration("duration"),
		Profile:  strings.ToLower(strings.TrimSpace(v.GetString("load_profile"))),

		RequestTimeout:  v.GetDuration("request_timeout"),
		MaxInFlight:     v.GetInt("max_in_flight"),
		InFlightTimeout: v.GetDuration("in_flight_timeout"),
		RateRPS:         v.GetFloat64("rate_rps"),
		RateBurst:       v.GetInt("rate_burst"),

		MaxErrorRate: v.GetFloat64("threshold_failed_rate"),
		MaxP95:       v.GetDuration("threshold_p95"),

		SummaryExport: v.GetString("summary_export"),
		Stats: Stats{
			Enabled:        v.GetBool("load_stats_enabled"),
			RedisAddr:      v.GetString("load_stats_redis_addr"),
			RedisPassword:  v.GetString("load_stats_redis_password"),
			RedisDB:        v.GetInt("load_stats_redis_db"),
			Prefix:         v.GetString("load_stats_prefix"),
			TTL:            v.GetDuration("load_stats_ttl"),
			Bucket:         v.GetString("load_stats_bucket"),
			TrackDurations: v.GetBool("load_stats_track_durations"),
		},
	}

	if cfg.BaseURL == "" {
		return Load{}, errors.New("BASE_URL is required")
	}
	if cfg.DocID == "" {
		return Load{}, errors.New("DOC_ID is required")
	}
	if cfg.Year <= 0 {
		return Load{}, errors.New("YEAR must be > 0")
	}
	if cfg.VUs <= 0 {
		return Load{}, errors.New("VUS must be > 0")
	}
	if cfg.Duration <= 0 {
		return Load{}, errors.New("DURATION must be > 0")
	}
	if cfg.Profile != "k6" && cfg.Profile != "locust" {
		return Load{}, fmt.Errorf("LOAD_PROFILE must be k6 or locust, got %q", cfg.Profile)
	}
	if cfg.RequestTimeout <= 0 {
		return Load{}, errors.New("REQUEST_TIMEOUT must be > 0")
	}
	if cfg.MaxInFlight < 0 {
		return Load{}, errors.New("MAX_IN_FLIGHT must be >= 0")
	}
	if cfg.RateRPS < 0 {
		return Load{}, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.MaxErrorRate <= 0 || cfg.MaxErrorRate > 1 {
		return Load{}, errors.New("THRESHOLD_FAILED_RATE must be in (0, 1]")
	}
	if cfg.MaxP95 <= 0 {
		return Load{}, errors.New("THRESHOLD_P95 must be > 0")
	}
	if cfg.Stats.Enabled && strings.TrimSpace(cfg.Stats.RedisAddr) == "" {
		return Load{}, errors.New("LOAD_STATS_REDIS_ADDR is required when LOAD_STATS_ENABLED=true")
	}
	return cfg, nil
}

func ReadScenario(v *viper.Viper) (Scenario, error) {
	cfg := Scenario{
		// qualquer valor não vazio liga o modo live, inclusive "0"
		Live:            strings.TrimSpace(v.GetString("e2e_live")) != "",
		APIBaseURL:      strings.TrimSpace(v.GetString("api_base_url")),
		FrontendBaseURL: strings.TrimSpace(v.GetString("frontend_base_url")),
		DocID:           strings.TrimSpace(v.GetString("e2e_doc_id")),
		TenantID:        v.GetString("e2e_tenant_id"),
		Year:            v.GetInt("e2e_year"),
		Role:            v.GetString("e2e_role"),

		Budget:        v.GetDuration("e2e_budget"),
		ExpectTimeout: v.GetDuration("e2e_expect_timeout"),
		TestTimeout:   v.GetDuration("e2e_timeout"),

		Retries:    v.GetInt("e2e_retries"),
		Trace:      strings.ToLower(strings.TrimSpace(v.GetString("e2e_trace"))),
		TraceDir:   v.GetString("e2e_trace_dir"),
		Headless:   v.GetBool("e2e_headless"),
		ChromePath: v.GetString("e2e_chrome_path"),
	}

	if cfg.APIBaseURL == "" {
		return Scenario{}, errors.New("API_BASE_URL is required")
	}
	if cfg.FrontendBaseURL == "" {
		return Scenario{}, errors.New("FRONTEND_BASE_URL is required")
	}
	if cfg.Year <= 0 {
		return Scenario{}, errors.New("E2E_YEAR must be > 0")
	}
	if cfg.Budget <= 0 || cfg.ExpectTimeout <= 0 || cfg.TestTimeout <= 0 {
		return Scenario{}, errors.New("E2E_BUDGET, E2E_EXPECT_TIMEOUT and E2E_TIMEOUT must be > 0")
	}
	if cfg.Retries < 0 {
		return Scenario{}, errors.New("E2E_RETRIES must be >= 0")
	}
	switch cfg.Trace {
	case "off", "on", "on-first-retry":
	default:
		return Scenario{}, fmt.Errorf("E2E_TRACE must be off, on or on-first-retry, got %q", cfg.Trace)
	}
	return cfg, nil
}
