package repository

import (
	"context"
	"sync"

	"flowcrm-data/internal/domain"
	"flowcrm-data/internal/query"
)

// MemoryRecordsRepo dev-stub record source for DB-less runs. It cannot
// evaluate the built SQL, so it serves the seeded demo rows per entity type
// as-is; authorized filtering needs the postgres path.
type MemoryRecordsRepo struct {
	mu      sync.RWMutex
	records map[string][]domain.Record // entityType -> rows
}

func NewMemoryRecordsRepo() *MemoryRecordsRepo {
	return &MemoryRecordsRepo{records: map[string][]domain.Record{}}
}

// Seed appends demo rows for the entity type.
func (r *MemoryRecordsRepo) Seed(entityType string, recs ...domain.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[entityType] = append(r.records[entityType], recs...)
}

func (r *MemoryRecordsRepo) ExecuteList(_ context.Context, entityType string, _ query.ExecutableQuery, page, size int) ([]domain.Record, int, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.records[entityType]
	total := len(all)

	start := (page - 1) * size
	if start >= total {
		return []domain.Record{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	out := make([]domain.Record, end-start)
	copy(out, all[start:end])
	return out, total, nil
}
