package service

import (
	"context"
	"fmt"
	"time"

	"flowcrm-data/internal/domain"
	"flowcrm-data/internal/repository"

	"go.uber.org/zap"
)

// ResourceChecker runs one health check. A failing monitored resource is
// data (status in the result); the returned error is reserved for
// infrastructure faults in the checker itself.
type ResourceChecker interface {
	Check(ctx context.Context, res *domain.MonitoredResource) (domain.HealthCheckResult, error)
}

// HealthCheckManager checks a single monitored resource.
type HealthCheckManager struct {
	resources repository.ResourcesRepo
	prober    Prober
	logger    *zap.Logger
}

func NewHealthCheckManager(resources repository.ResourcesRepo, prober Prober, logger *zap.Logger) *HealthCheckManager {
	return &HealthCheckManager{resources: resources, prober: prober, logger: logger}
}

// CheckByID loads the resource and checks it. An absent resource is an
// error (repository.ErrResourceNotFound); an unreachable one is a result.
func (m *HealthCheckManager) CheckByID(ctx context.Context, resourceID string) (domain.HealthCheckResult, error) {
	res, err := m.resources.GetByID(ctx, resourceID)
	if err != nil {
		return domain.HealthCheckResult{}, fmt.Errorf("health check %s: %w", resourceID, err)
	}
	return m.Check(ctx, res)
}

// Check probes the resource's endpoint. ResponseTimeMs covers the outbound
// call only; persistence is the caller's concern.
func (m *HealthCheckManager) Check(ctx context.Context, res *domain.MonitoredResource) (domain.HealthCheckResult, error) {
	checkedAt := time.Now().UTC()

	if !res.Endpoint.Valid || res.Endpoint.String == "" {
		return domain.HealthCheckResult{
			Status:    domain.StatusUnknown,
			Message:   "no endpoint configured",
			CheckedAt: checkedAt,
		}, nil
	}

	ok, message, took := m.prober.Probe(ctx, res.Endpoint.String)

	status := domain.StatusUnhealthy
	if ok {
		status = domain.StatusHealthy
	}

	m.logger.Debug("resource checked",
		zap.String("resource_id", res.ResourceID),
		zap.String("resource_name", res.ResourceName),
		zap.String("status", string(status)),
		zap.Duration("took", took),
	)

	return domain.HealthCheckResult{
		Status:         status,
		Message:        message,
		ResponseTimeMs: took.Milliseconds(),
		CheckedAt:      checkedAt,
	}, nil
}
