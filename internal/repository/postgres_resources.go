package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"flowcrm-data/internal/domain"

	"go.uber.org/zap"
)

type PostgresResourcesRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresResourcesRepo(db *sql.DB, logger *zap.Logger) *PostgresResourcesRepo {
	return &PostgresResourcesRepo{db: db, logger: logger}
}

const resourceColumns = `
	resource_id::text,
	tenant_id::text,
	resource_name,
	endpoint,
	is_active,
	last_health_check_at,
	COALESCE(last_health_check_status, 'unknown')`

func scanResource(row interface{ Scan(...any) error }) (*domain.MonitoredResource, error) {
	var res domain.MonitoredResource
	var status string
	if err := row.Scan(
		&res.ResourceID,
		&res.TenantID,
		&res.ResourceName,
		&res.Endpoint,
		&res.IsActive,
		&res.LastHealthCheckAt,
		&status,
	); err != nil {
		return nil, err
	}
	res.LastHealthCheckStatus = domain.HealthStatus(status)
	return &res, nil
}

func (r *PostgresResourcesRepo) GetByID(ctx context.Context, resourceID string) (*domain.MonitoredResource, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+resourceColumns+`
		 FROM monitored_resources
		 WHERE resource_id = $1`,
		resourceID,
	)
	res, err := scanResource(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, resourceID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return res, nil
}

func (r *PostgresResourcesRepo) ListActive(ctx context.Context) ([]domain.MonitoredResource, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+resourceColumns+`
		 FROM monitored_resources
		 WHERE is_active = TRUE
		 ORDER BY resource_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active resources: %w", err)
	}
	defer rows.Close()

	var out []domain.MonitoredResource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func (r *PostgresResourcesRepo) List(ctx context.Context, tenantID string, page, size int) ([]domain.MonitoredResource, int, error) {
	if tenantID == "" {
		return []domain.MonitoredResource{}, 0, nil
	}
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM monitored_resources WHERE tenant_id = $1`,
		tenantID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count resources: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+resourceColumns+`
		 FROM monitored_resources
		 WHERE tenant_id = $1
		 ORDER BY resource_name
		 LIMIT $2 OFFSET $3`,
		tenantID, size, (page-1)*size,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	var out []domain.MonitoredResource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan resource: %w", err)
		}
		out = append(out, *res)
	}
	return out, total, rows.Err()
}

// UpdateStatus persists one check outcome. Idempotent, last-check-wins.
func (r *PostgresResourcesRepo) UpdateStatus(ctx context.Context, resourceID string, status domain.HealthStatus, checkedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE monitored_resources
		 SET last_health_check_status = $2,
		     last_health_check_at = $3
		 WHERE resource_id = $1`,
		resourceID, string(status), checkedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update resource status: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrResourceNotFound, resourceID)
	}
	return nil
}
