// Package run orchestrates one diagnostic pass: network probes and the
// browser session execute independently under a shared run deadline,
// their outputs merge into a single immutable DiagnosticReport.
package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aisdiag/internal/browser"
	"aisdiag/internal/config"
	"aisdiag/internal/domain"
	"aisdiag/internal/probe"
	"aisdiag/internal/registry"
	"aisdiag/internal/verdict"
)

// ProbeRunner executes the network probe specs.
type ProbeRunner interface {
	RunAll(ctx context.Context, specs []domain.ProbeSpec) []domain.ProbeResult
}

// Observer drives the single browser session.
type Observer interface {
	Observe(ctx context.Context, pageURL string, settle time.Duration) (browser.Observation, error)
}

// Runner wires registry, probe pool and browser monitor for one run.
// It keeps no state between runs: every Execute is a fresh snapshot.
type Runner struct {
	Logger   *zap.Logger
	Registry *registry.Registry
	Probes   ProbeRunner
	Browser  Observer
	Cfg      *config.Config
}

func New(logger *zap.Logger, cfg *config.Config) *Runner {
	return &Runner{
		Logger: logger,
		Registry: registry.Default(registry.Options{
			PageURL:      cfg.PageURL,
			ProbeTimeout: cfg.ProbeTimeout,
		}),
		Probes:  probe.NewPool(logger, cfg.Concurrency),
		Browser: browser.NewMonitor(logger, cfg.Headless, cfg.TrackedHosts, cfg.ReadySelector, cfg.TriggerSelector),
		Cfg:     cfg,
	}
}

// Execute runs every registered probe exactly once plus one browser
// observation, classifies the evidence and returns the report. The
// error return is non-nil only for the setup-fault class (the browser
// could not be launched); all within-run failures land in the report.
func (r *Runner) Execute(ctx context.Context) (*domain.DiagnosticReport, domain.RunStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Cfg.RunDeadline)
	defer cancel()

	specs := r.Registry.List()
	netSpecs := make([]domain.ProbeSpec, 0, len(specs))
	var browserSpec *domain.ProbeSpec
	for i := range specs {
		if specs[i].Kind == domain.KindBrowserTrigger {
			browserSpec = &specs[i]
			continue
		}
		netSpecs = append(netSpecs, specs[i])
	}

	r.Logger.Info("run_started",
		zap.Int("network_probes", len(netSpecs)),
		zap.Bool("browser_session", browserSpec != nil),
		zap.Duration("deadline", r.Cfg.RunDeadline),
	)

	var (
		netResults []domain.ProbeResult
		obs        browser.Observation
		obsResult  domain.ProbeResult
		obsErr     error
	)

	netDone := make(chan struct{})
	go func() {
		defer close(netDone)
		netResults = r.Probes.RunAll(ctx, netSpecs)
	}()

	if browserSpec != nil {
		started := time.Now()
		obs, obsErr = r.Browser.Observe(ctx, browserSpec.Target, r.Cfg.SettleWindow)
		obsResult = browserResult(*browserSpec, obs, time.Since(started))
	}
	<-netDone

	if errors.Is(obsErr, browser.ErrLaunch) {
		// Setup fault: nothing was observed, no report can be honest.
		r.Logger.Error("run_setup_failed", zap.Error(obsErr))
		return nil, domain.RunSetupError, fmt.Errorf("browser session setup: %w", obsErr)
	}

	// Reassemble in registry order: exactly one result per spec.
	results := make([]domain.ProbeResult, 0, len(specs))
	ni := 0
	for i := range specs {
		if specs[i].Kind == domain.KindBrowserTrigger {
			results = append(results, obsResult)
			continue
		}
		results = append(results, netResults[ni])
		ni++
	}

	consoleErrors := obs.ConsoleErrors
	if obs.SessionError != nil {
		consoleErrors = append(consoleErrors, "session: "+obs.SessionError.Error())
	}
	if obsErr != nil {
		// Non-launch session faults (e.g. teardown) are evidence.
		r.Logger.Warn("browser_session_fault", zap.Error(obsErr))
		consoleErrors = append(consoleErrors, "session: "+obsErr.Error())
	}

	v, rationale := verdict.Classify(verdict.Evidence{
		Specs:         specs,
		Results:       results,
		Events:        obs.Events,
		ConsoleErrors: consoleErrors,
	})

	report := &domain.DiagnosticReport{
		RunID:         uuid.NewString(),
		GeneratedAt:   time.Now().UTC(),
		Results:       results,
		Events:        obs.Events,
		ConsoleErrors: consoleErrors,
		Verdict:       v,
		Rationale:     rationale,
	}

	status := runStatus(report)
	r.Logger.Info("run_finished",
		zap.String("run_id", report.RunID),
		zap.String("verdict", string(report.Verdict)),
		zap.Int("status", int(status)),
	)
	return report, status, nil
}

// browserResult folds the session outcome into the one ProbeResult the
// browser-trigger spec owes the report.
func browserResult(spec domain.ProbeSpec, obs browser.Observation, took time.Duration) domain.ProbeResult {
	res := domain.ProbeResult{
		ProbeID:   spec.ID,
		LatencyMS: float64(took.Microseconds()) / 1000.0,
		CheckedAt: time.Now().UTC(),
	}
	switch {
	case obs.SessionError != nil:
		res.Status = domain.StatusFailure
		res.Detail = obs.SessionError.Error()
	case !obs.Triggered:
		res.Status = domain.StatusFailure
		res.Detail = "overlay trigger was not activated"
	default:
		res.Status = domain.StatusSuccess
		res.Detail = fmt.Sprintf("session observed %d tracked requests, %d console errors",
			len(obs.Events), len(obs.ConsoleErrors))
	}
	return res
}

func runStatus(rep *domain.DiagnosticReport) domain.RunStatus {
	for _, r := range rep.Results {
		if r.Status != domain.StatusSuccess {
			return domain.RunIssues
		}
	}
	for _, e := range rep.Events {
		if !e.Completed2xx() {
			return domain.RunIssues
		}
	}
	if len(rep.ConsoleErrors) > 0 {
		return domain.RunIssues
	}
	if rep.Verdict != domain.VerdictInconclusive {
		return domain.RunIssues
	}
	return domain.RunHealthy
}
