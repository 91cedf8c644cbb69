package harness

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"limites-harness/harness/application"
	"limites-harness/harness/config"
	"limites-harness/harness/domain"
	"limites-harness/harness/infra"
	"limites-harness/internal/logging"
)

type LoadOptions struct {
	BaseURL       string
	TenantID      string
	DocID         string
	Year          int
	Authorization string

	VUs      int
	Duration time.Duration
	// Profile: k6 (padrão) ou locust
	Profile string

	RequestTimeout  time.Duration
	MaxInFlight     int
	InFlightTimeout time.Duration
	RateRPS         float64
	RateBurst       int

	Thresholds domain.Thresholds

	// Sinks extras além da agregação em memória (ex: Redis). Best-effort.
	Sinks []domain.SampleSink
	// API substitui o cliente HTTP (testes).
	API    domain.API
	Logger *log.Logger
}

func LoadOptionsFromConfig(cfg config.Load) LoadOptions {
	return LoadOptions{
		BaseURL:         cfg.BaseURL,
		TenantID:        cfg.TenantID,
		DocID:           cfg.DocID,
		Year:            cfg.Year,
		Authorization:   cfg.Authorization,
		VUs:             cfg.VUs,
		Duration:        cfg.Duration,
		Profile:         cfg.Profile,
		RequestTimeout:  cfg.RequestTimeout,
		MaxInFlight:     cfg.MaxInFlight,
		InFlightTimeout: cfg.InFlightTimeout,
		RateRPS:         cfg.RateRPS,
		RateBurst:       cfg.RateBurst,
		Thresholds:      domain.Thresholds{MaxErrorRate: cfg.MaxErrorRate, MaxP95: cfg.MaxP95},
	}
}

func (o *LoadOptions) defaults() {
	if o.BaseURL == "" {
		o.BaseURL = "http://localhost:8080"
	}
	if o.TenantID == "" {
		o.TenantID = "demo"
	}
	if o.DocID == "" {
		o.DocID = "demo-doc"
	}
	if o.Year == 0 {
		o.Year = 2024
	}
	if o.VUs == 0 {
		o.VUs = 5
	}
	if o.Duration == 0 {
		o.Duration = 30 * time.Second
	}
	if o.Profile == "" {
		o.Profile = "k6"
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 60 * time.Second
	}
	if o.Thresholds == (domain.Thresholds{}) {
		o.Thresholds = domain.DefaultThresholds()
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
}

// RunLoad executa a carga até Duration (ou até ctx ser cancelado) e avalia
// os thresholds. Um threshold violado não é erro: veja LoadReport.Passed.
func RunLoad(ctx context.Context, opts LoadOptions) (domain.LoadReport, error) {
	opts.defaults()
	if _, ok := application.ProfileByName(opts.Profile, nil); !ok {
		return domain.LoadReport{}, fmt.Errorf("unknown load profile %q", opts.Profile)
	}

	api := opts.API
	if api == nil {
		copts := []infra.ClientOption{infra.WithTimeout(opts.RequestTimeout)}
		if opts.Authorization != "" {
			copts = append(copts, infra.WithHeader("Authorization", opts.Authorization))
		}
		api = infra.NewClient(opts.BaseURL, copts...)
	}
	api, pool := guard(api, opts)

	mem := infra.NewMemorySampleStore()
	sink := append(infra.TeeSink{mem}, opts.Sinks...)

	runID := uuid.NewString()
	seed := uint64(time.Now().UnixNano())
	logger := opts.Logger.With("run", runID)

	var sinkWarned atomic.Bool
	engine := application.Engine{
		RunID:    runID,
		VUs:      opts.VUs,
		Duration: opts.Duration,
		NewIterator: func(vu int) application.Iterator {
			rnd := rand.New(rand.NewPCG(uint64(vu), seed))
			profile, _ := application.ProfileByName(opts.Profile, rnd)
			return application.LoadIteration{
				API:      api,
				TenantID: opts.TenantID,
				DocID:    opts.DocID,
				Year:     opts.Year,
				Profile:  profile,
			}
		},
		Sink: sink,
		OnSinkError: func(err error) {
			// só o primeiro vira warn; o resto fica em debug
			if sinkWarned.CompareAndSwap(false, true) {
				logger.Warn("sample sink failed", "err", err)
				return
			}
			logger.Debug("sample sink failed", "err", err)
		},
	}

	logger.Info("load started",
		"profile", opts.Profile, "vus", opts.VUs, "duration", opts.Duration,
		"base_url", opts.BaseURL, "doc_id", opts.DocID, "tenant", opts.TenantID, "year", opts.Year,
		"auth", opts.Authorization != "", "max_in_flight", opts.MaxInFlight, "rate_rps", opts.RateRPS)

	started := time.Now()
	iterations, err := engine.Run(ctx)
	if err != nil {
		return domain.LoadReport{}, fmt.Errorf("run load: %w", err)
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		logger.Warn("load interrupted", "iterations", iterations)
	}

	metrics := mem.Snapshot()
	report := domain.LoadReport{
		RunID:      runID,
		Profile:    opts.Profile,
		VUs:        opts.VUs,
		Started:    started,
		Elapsed:    time.Since(started),
		Iterations: iterations,
		Metrics:    metrics,
		Thresholds: application.Evaluate(opts.Thresholds, metrics),
	}
	logger.Info("load finished", "iterations", iterations, "requests", metrics.Requests,
		"failed", metrics.Failed, "passed", report.Passed())
	if pool != nil {
		logger.Debug("in-flight pool", "size", pool.Size(), "peak", pool.Peak())
	}
	return report, nil
}

func guard(api domain.API, opts LoadOptions) (domain.API, *infra.InFlightPool) {
	if opts.RateRPS <= 0 && opts.MaxInFlight <= 0 {
		return api, nil
	}
	var pool *infra.InFlightPool
	g := application.GuardedAPI{API: api}
	if opts.RateRPS > 0 {
		g.Pacer = infra.NewThrottle(opts.RateRPS, opts.RateBurst)
	}
	if opts.MaxInFlight > 0 {
		pool = infra.NewInFlightPool(opts.MaxInFlight)
		g.Gate = application.InFlightGate{Pool: pool, Timeout: opts.InFlightTimeout}
	}
	return g, pool
}
