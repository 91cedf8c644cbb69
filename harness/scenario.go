package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"limites-harness/harness/application"
	"limites-harness/harness/config"
	"limites-harness/harness/domain"
	"limites-harness/harness/infra"
	"limites-harness/internal/logging"
)

const (
	DashboardRoute   = "/dashboard"
	DashboardHeading = "Dashboard de Limites"

	skipNotLive = "Executar com stack subida (E2E_LIVE=1)"
	skipNoDoc   = "Defina E2E_DOC_ID com um documento já semeado"
)

// TraceMode decide em quais tentativas o trace é gravado.
type TraceMode string

const (
	TraceOff          TraceMode = "off"
	TraceOn           TraceMode = "on"
	TraceOnFirstRetry TraceMode = "on-first-retry"
)

func ParseTraceMode(s string) (TraceMode, error) {
	switch m := TraceMode(strings.ToLower(strings.TrimSpace(s))); m {
	case TraceOff, TraceOn, TraceOnFirstRetry:
		return m, nil
	case "":
		return TraceOnFirstRetry, nil
	default:
		return "", fmt.Errorf("unknown trace mode %q", s)
	}
}

// traced recebe o índice da tentativa (0 = primeira execução).
func (m TraceMode) traced(attempt int) bool {
	switch m {
	case TraceOn:
		return true
	case TraceOnFirstRetry:
		return attempt == 1
	default:
		return false
	}
}

type ScenarioOptions struct {
	Live            bool
	APIBaseURL      string
	FrontendBaseURL string
	TenantID        string
	DocID           string
	Year            int
	Role            string

	Budget        time.Duration
	ExpectTimeout time.Duration
	TestTimeout   time.Duration

	Retries  int
	Trace    TraceMode
	TraceDir string

	Headless   bool
	ChromePath string

	// API e Frontend substituem o cliente fasthttp e o Chrome (testes).
	API      domain.API
	Frontend domain.Frontend
	Logger   *log.Logger
}

func ScenarioOptionsFromConfig(cfg config.Scenario) (ScenarioOptions, error) {
	mode, err := ParseTraceMode(cfg.Trace)
	if err != nil {
		return ScenarioOptions{}, err
	}
	return ScenarioOptions{
		Live:            cfg.Live,
		APIBaseURL:      cfg.APIBaseURL,
		FrontendBaseURL: cfg.FrontendBaseURL,
		TenantID:        cfg.TenantID,
		DocID:           cfg.DocID,
		Year:            cfg.Year,
		Role:            cfg.Role,
		Budget:          cfg.Budget,
		ExpectTimeout:   cfg.ExpectTimeout,
		TestTimeout:     cfg.TestTimeout,
		Retries:         cfg.Retries,
		Trace:           mode,
		TraceDir:        cfg.TraceDir,
		Headless:        cfg.Headless,
		ChromePath:      cfg.ChromePath,
	}, nil
}

// SkipReason é vazio quando o cenário pode rodar. O runner nunca semeia dados:
// sem stack no ar ou sem documento, o cenário é pulado.
func (o ScenarioOptions) SkipReason() string {
	if !o.Live {
		return skipNotLive
	}
	if strings.TrimSpace(o.DocID) == "" {
		return skipNoDoc
	}
	return ""
}

func (o *ScenarioOptions) defaults() {
	if o.APIBaseURL == "" {
		o.APIBaseURL = "http://localhost:8080"
	}
	if o.FrontendBaseURL == "" {
		o.FrontendBaseURL = "http://localhost:3000"
	}
	if o.TenantID == "" {
		o.TenantID = "demo"
	}
	if o.Year == 0 {
		o.Year = 2024
	}
	if o.Role == "" {
		o.Role = "admin"
	}
	if o.Budget <= 0 {
		o.Budget = 5 * time.Second
	}
	if o.ExpectTimeout <= 0 {
		o.ExpectTimeout = 5 * time.Second
	}
	if o.TestTimeout <= 0 {
		o.TestTimeout = 15 * time.Second
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.Trace == "" {
		o.Trace = TraceOnFirstRetry
	}
	if o.TraceDir == "" {
		o.TraceDir = "test-results"
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
}

type ScenarioStatus string

const (
	ScenarioPassed  ScenarioStatus = "passed"
	ScenarioFailed  ScenarioStatus = "failed"
	ScenarioSkipped ScenarioStatus = "skipped"
)

type Attempt struct {
	// N começa em 1
	N        int
	Workflow application.WorkflowResult
	Err      error
	// TraceDir fica vazio quando a tentativa não foi gravada.
	TraceDir string
}

type ScenarioResult struct {
	Status   ScenarioStatus
	Reason   string
	Attempts []Attempt
}

// Err é o erro da última tentativa (nil se passou ou foi pulado).
func (r ScenarioResult) Err() error {
	if r.Status != ScenarioFailed || len(r.Attempts) == 0 {
		return nil
	}
	return r.Attempts[len(r.Attempts)-1].Err
}

// RunScenario executa patch + recálculo dentro do orçamento e confere o
// dashboard. Cada tentativa tem seu próprio timeout; uma falha aborta a
// tentativa e, se houver retries, a próxima recomeça do zero.
func RunScenario(ctx context.Context, opts ScenarioOptions) ScenarioResult {
	if reason := opts.SkipReason(); reason != "" {
		return ScenarioResult{Status: ScenarioSkipped, Reason: reason}
	}
	opts.defaults()

	api := opts.API
	if api == nil {
		api = infra.NewClient(opts.APIBaseURL,
			infra.WithHeader("X-User-Role", opts.Role),
			infra.WithHeader("x-tenant-id", opts.TenantID),
			infra.WithTimeout(opts.TestTimeout),
		)
	}
	front := opts.Frontend
	if front == nil {
		front = infra.NewBrowser(opts.FrontendBaseURL,
			infra.WithBrowserHeader("X-User-Role", opts.Role),
			infra.WithHeadless(opts.Headless),
			infra.WithExecPath(opts.ChromePath),
			infra.WithExpectTimeout(opts.ExpectTimeout),
			infra.WithBrowserLogf(opts.Logger.Debugf),
		)
	}

	var res ScenarioResult
	for i := 0; i <= opts.Retries; i++ {
		a := runAttempt(ctx, opts, api, front, i)
		res.Attempts = append(res.Attempts, a)
		if a.Err == nil {
			opts.Logger.Info("scenario passed", "attempt", a.N, "elapsed", a.Workflow.Elapsed)
			res.Status = ScenarioPassed
			return res
		}
		opts.Logger.Warn("scenario attempt failed", "attempt", a.N, "err", a.Err)
		if ctx.Err() != nil {
			break
		}
	}
	res.Status = ScenarioFailed
	res.Reason = res.Attempts[len(res.Attempts)-1].Err.Error()
	return res
}

func runAttempt(ctx context.Context, opts ScenarioOptions, api domain.API, front domain.Frontend, i int) Attempt {
	a := Attempt{N: i + 1}

	actx, cancel := context.WithTimeout(ctx, opts.TestTimeout)
	defer cancel()

	var tracer *infra.TracingAPI
	if opts.Trace.traced(i) {
		tracer = infra.NewTracingAPI(api)
		api = tracer
	}

	wf := application.Workflow{
		API:      api,
		TenantID: opts.TenantID,
		DocID:    opts.DocID,
		Year:     opts.Year,
		Budget:   opts.Budget,
	}
	a.Workflow, a.Err = wf.Run(actx)
	if a.Err == nil {
		if err := front.ExpectText(actx, DashboardRoute, DashboardHeading); err != nil {
			a.Err = fmt.Errorf("dashboard: %w", err)
		}
	}

	if tracer != nil {
		a.TraceDir = filepath.Join(opts.TraceDir, fmt.Sprintf("attempt-%d", a.N))
		writeTrace(ctx, opts, tracer, front, a.TraceDir)
	}
	return a
}

// writeTrace grava trace.json e dashboard.png. Falhas aqui só são logadas.
func writeTrace(ctx context.Context, opts ScenarioOptions, tracer *infra.TracingAPI, front domain.Frontend, dir string) {
	path, err := tracer.WriteFile(dir)
	if err != nil {
		opts.Logger.Warn("trace not written", "dir", dir, "err", err)
		return
	}
	opts.Logger.Info("trace written", "path", path)

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opts.TestTimeout)
	defer cancel()
	png, err := front.Screenshot(sctx, DashboardRoute)
	if err != nil {
		opts.Logger.Warn("screenshot failed", "err", err)
		return
	}
	if err := os.WriteFile(filepath.Join(dir, "dashboard.png"), png, 0o644); err != nil {
		opts.Logger.Warn("screenshot not written", "err", err)
	}
}
