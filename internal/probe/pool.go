package probe

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"aisdiag/internal/domain"
)

// Pool fans probe specs out over a bounded number of workers. One
// result per spec, in spec order; a stalled probe never blocks the
// others, and specs not yet started when ctx expires are recorded as
// SKIPPED rather than started late.
type Pool struct {
	Logger      *zap.Logger
	DNS         Runner
	HTTP        Runner
	Concurrency int
}

func NewPool(logger *zap.Logger, concurrency int) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pool{
		Logger:      logger,
		DNS:         NewDNSChecker(),
		HTTP:        NewHTTPChecker(),
		Concurrency: concurrency,
	}
}

func (p *Pool) RunAll(ctx context.Context, specs []domain.ProbeSpec) []domain.ProbeResult {
	results := make([]domain.ProbeResult, len(specs))

	sem := make(chan struct{}, p.Concurrency)
	var wg sync.WaitGroup

	for i, spec := range specs {
		// The run deadline has passed: record instead of starting late.
		if ctx.Err() != nil {
			results[i] = skipped(spec)
			continue
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results[i] = skipped(spec)
			continue
		}
		wg.Add(1)
		go func(i int, spec domain.ProbeSpec) {
			defer func() { <-sem }()
			defer wg.Done()

			results[i] = p.runOne(ctx, spec)
			p.Logger.Debug("probe_done",
				zap.String("probe_id", string(spec.ID)),
				zap.String("kind", string(spec.Kind)),
				zap.String("status", string(results[i].Status)),
				zap.Int("http_status", results[i].HTTPStatus),
				zap.Float64("latency_ms", results[i].LatencyMS),
			)
		}(i, spec)
	}

	wg.Wait()
	return results
}

func (p *Pool) runOne(ctx context.Context, spec domain.ProbeSpec) domain.ProbeResult {
	switch spec.Kind {
	case domain.KindDNSResolution:
		return p.DNS.Run(ctx, spec)
	case domain.KindHTTPGet:
		return p.HTTP.Run(ctx, spec)
	default:
		return domain.ProbeResult{
			ProbeID:   spec.ID,
			Status:    domain.StatusError,
			Detail:    "no network runner for kind " + string(spec.Kind),
			CheckedAt: time.Now().UTC(),
		}
	}
}

func skipped(spec domain.ProbeSpec) domain.ProbeResult {
	return domain.ProbeResult{
		ProbeID:   spec.ID,
		Status:    domain.StatusSkipped,
		Detail:    "run deadline reached before probe started",
		CheckedAt: time.Now().UTC(),
	}
}
