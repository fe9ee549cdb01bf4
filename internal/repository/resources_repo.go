package repository

import (
	"context"
	"errors"
	"time"

	"flowcrm-data/internal/domain"
)

// ErrResourceNotFound no monitored resource with that id.
var ErrResourceNotFound = errors.New("resource not found")

// ResourcesRepo persists monitored resources. The health scheduler only ever
// touches the two last_health_check_* columns; row lifecycle belongs to the
// CRUD layer.
type ResourcesRepo interface {
	GetByID(ctx context.Context, resourceID string) (*domain.MonitoredResource, error)
	ListActive(ctx context.Context) ([]domain.MonitoredResource, error)
	List(ctx context.Context, tenantID string, page, size int) ([]domain.MonitoredResource, int, error)
	UpdateStatus(ctx context.Context, resourceID string, status domain.HealthStatus, checkedAt time.Time) error
}
