package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"flowcrm-data/internal/domain"
)

// MemoryResourcesRepo in-memory twin of the postgres repo, used when the DB
// is not ready (dev stub mode) and in unit tests.
type MemoryResourcesRepo struct {
	mu        sync.RWMutex
	resources map[string]domain.MonitoredResource
}

func NewMemoryResourcesRepo() *MemoryResourcesRepo {
	return &MemoryResourcesRepo{resources: map[string]domain.MonitoredResource{}}
}

// Seed inserts or replaces a resource. Test/dev helper; the real lifecycle
// belongs to the CRUD layer.
func (r *MemoryResourcesRepo) Seed(res domain.MonitoredResource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resources[res.ResourceID] = res
}

func (r *MemoryResourcesRepo) GetByID(_ context.Context, resourceID string) (*domain.MonitoredResource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[resourceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, resourceID)
	}
	out := res
	return &out, nil
}

func (r *MemoryResourcesRepo) ListActive(_ context.Context) ([]domain.MonitoredResource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.MonitoredResource
	for _, res := range r.resources {
		if res.IsActive {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ResourceName < out[j].ResourceName })
	return out, nil
}

func (r *MemoryResourcesRepo) List(_ context.Context, tenantID string, page, size int) ([]domain.MonitoredResource, int, error) {
	if tenantID == "" {
		return []domain.MonitoredResource{}, 0, nil
	}
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []domain.MonitoredResource
	for _, res := range r.resources {
		if res.TenantID == tenantID {
			all = append(all, res)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ResourceName < all[j].ResourceName })

	total := len(all)
	start := (page - 1) * size
	if start >= total {
		return []domain.MonitoredResource{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *MemoryResourcesRepo) UpdateStatus(_ context.Context, resourceID string, status domain.HealthStatus, checkedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.resources[resourceID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrResourceNotFound, resourceID)
	}
	res.LastHealthCheckStatus = status
	res.LastHealthCheckAt.Time = checkedAt
	res.LastHealthCheckAt.Valid = true
	r.resources[resourceID] = res
	return nil
}
