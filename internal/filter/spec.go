package filter

import (
	"context"

	"flowcrm-data/internal/domain"
	"flowcrm-data/internal/query"
)

// Role decides when the pipeline applies a filter.
type Role string

const (
	// RoleAccess mandatory tenancy/ownership restriction, applied to every
	// list request regardless of what the caller asked for.
	RoleAccess Role = "access"
	// RolePrimary single-select status/category facet; at most one per request.
	RolePrimary Role = "primary"
	// RoleBool toggleable filter the caller opts into; zero or more per request.
	RoleBool Role = "bool"
)

// ApplyFunc mutates the builder for one filter. group is non-nil only for
// bool filters and receives the filter's OR alternative; access and primary
// filters add plain AND restrictions via the builder.
type ApplyFunc func(ctx context.Context, b *query.Builder, user domain.UserContext, group *query.OrGroup) error

// Spec is one registered filter. Stateless after registration, safe for
// concurrent reuse across requests.
type Spec struct {
	EntityType string
	Role       Role
	Name       string
	// Group names the OR-group a bool filter contributes to. Filters meant
	// as alternatives share a group; independent toggles get their own.
	// Grouping is declared here explicitly, never inferred from Name.
	Group string
	Apply ApplyFunc
}
