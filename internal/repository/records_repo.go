package repository

import (
	"context"

	"flowcrm-data/internal/domain"
	"flowcrm-data/internal/query"
)

// RecordsRepo executes the query the filter pipeline built and returns one
// page of rows plus the unpaginated total.
type RecordsRepo interface {
	ExecuteList(ctx context.Context, entityType string, q query.ExecutableQuery, page, size int) ([]domain.Record, int, error)
}
