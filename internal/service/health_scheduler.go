package service

import (
	"context"
	"sync"
	"time"

	"flowcrm-data/internal/domain"
	"flowcrm-data/internal/repository"
	"flowcrm-data/internal/store"

	"go.uber.org/zap"
)

// Summary is the outcome of one full sweep. Errors counts checker/persist
// faults, which are distinct from a reachable-but-failing resource
// (Unhealthy).
type Summary struct {
	Total     int `json:"total"`
	Healthy   int `json:"healthy"`
	Unhealthy int `json:"unhealthy"`
	Unknown   int `json:"unknown"`
	Errors    int `json:"errors"`
}

// HealthCheckScheduler sweeps every active monitored resource. Per-resource
// failures are isolated: one bad resource never aborts the batch, and each
// result is persisted right after its own check so a crash mid-run keeps
// partial progress.
type HealthCheckScheduler struct {
	resources repository.ResourcesRepo
	checker   ResourceChecker
	kv        store.KV // optional last-status snapshot, may be nil
	workers   int
	interval  time.Duration
	logger    *zap.Logger
}

func NewHealthCheckScheduler(
	resources repository.ResourcesRepo,
	checker ResourceChecker,
	kv store.KV,
	workers int,
	interval time.Duration,
	logger *zap.Logger,
) *HealthCheckScheduler {
	if workers <= 0 {
		workers = 4
	}
	return &HealthCheckScheduler{
		resources: resources,
		checker:   checker,
		kv:        kv,
		workers:   workers,
		interval:  interval,
		logger:    logger,
	}
}

// Start runs one sweep immediately, then on every interval tick until the
// context is cancelled. Overlap protection is left to the external
// scheduler; per-resource checks are independent and last-check-wins.
func (s *HealthCheckScheduler) Start(ctx context.Context) {
	s.logger.Info("health check scheduler started", zap.Duration("interval", s.interval))
	s.RunAll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("health check scheduler stopped")
			return
		case <-ticker.C:
			s.RunAll(ctx)
		}
	}
}

// RunAll checks every active resource on a bounded worker pool and returns
// the aggregated counts.
func (s *HealthCheckScheduler) RunAll(ctx context.Context) Summary {
	resources, err := s.resources.ListActive(ctx)
	if err != nil {
		s.logger.Error("failed to list active resources", zap.Error(err))
		return Summary{Errors: 1}
	}

	var (
		mu  sync.Mutex
		sum Summary
		wg  sync.WaitGroup
	)
	sum.Total = len(resources)

	sem := make(chan struct{}, s.workers)
	for i := range resources {
		res := resources[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			s.checkOne(ctx, res, &mu, &sum)
		}()
	}
	wg.Wait()

	s.logger.Info("health check sweep finished",
		zap.Int("total", sum.Total),
		zap.Int("healthy", sum.Healthy),
		zap.Int("unhealthy", sum.Unhealthy),
		zap.Int("unknown", sum.Unknown),
		zap.Int("errors", sum.Errors),
	)

	return sum
}

// checkOne is the per-resource failure boundary. Anything that goes wrong
// here, a panic in the checker included, is counted and logged, never
// propagated.
func (s *HealthCheckScheduler) checkOne(ctx context.Context, res domain.MonitoredResource, mu *sync.Mutex, sum *Summary) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("health check panicked",
				zap.String("resource_id", res.ResourceID),
				zap.String("resource_name", res.ResourceName),
				zap.Any("panic", rec),
			)
			mu.Lock()
			sum.Errors++
			mu.Unlock()
		}
	}()

	result, err := s.checker.Check(ctx, &res)
	if err != nil {
		s.logger.Error("health check failed",
			zap.String("resource_id", res.ResourceID),
			zap.String("resource_name", res.ResourceName),
			zap.Error(err),
		)
		mu.Lock()
		sum.Errors++
		mu.Unlock()
		return
	}

	// persist right away; other resources must not wait on this one
	if err := s.resources.UpdateStatus(ctx, res.ResourceID, result.Status, result.CheckedAt); err != nil {
		s.logger.Error("failed to persist health status",
			zap.String("resource_id", res.ResourceID),
			zap.Error(err),
		)
		mu.Lock()
		sum.Errors++
		mu.Unlock()
		return
	}

	if s.kv != nil {
		if err := s.kv.Set(ctx, "health:"+res.ResourceID, string(result.Status), 0); err != nil {
			s.logger.Warn("failed to cache health snapshot",
				zap.String("resource_id", res.ResourceID),
				zap.Error(err),
			)
		}
	}

	mu.Lock()
	switch result.Status {
	case domain.StatusHealthy:
		sum.Healthy++
	case domain.StatusUnhealthy:
		sum.Unhealthy++
	default:
		sum.Unknown++
	}
	mu.Unlock()
}
