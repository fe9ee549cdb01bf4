package domain

import (
	"database/sql"
	"time"
)

// HealthStatus outcome of one integration probe.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusUnknown   HealthStatus = "unknown"
)

// MonitoredResource is an external credential/integration endpoint whose
// reachability the scheduler verifies periodically (corresponds to the
// monitored_resources table). Only the two last_health_check_* fields are
// mutated by this service; rows are created and deleted by the CRUD layer.
type MonitoredResource struct {
	ResourceID            string         `db:"resource_id"` // UUID, PRIMARY KEY
	TenantID              string         `db:"tenant_id"`
	ResourceName          string         `db:"resource_name"`
	Endpoint              sql.NullString `db:"endpoint"` // nullable: no endpoint -> status unknown
	IsActive              bool           `db:"is_active"`
	LastHealthCheckAt     sql.NullTime   `db:"last_health_check_at"`
	LastHealthCheckStatus HealthStatus   `db:"last_health_check_status"` // healthy/unhealthy/unknown
}

// HealthCheckResult is the immutable outcome of a single check.
// ResponseTimeMs covers the outbound probe only, not persistence.
type HealthCheckResult struct {
	Status         HealthStatus `json:"status"`
	Message        string       `json:"message"`
	ResponseTimeMs int64        `json:"response_time_ms"`
	CheckedAt      time.Time    `json:"checked_at"`
}
