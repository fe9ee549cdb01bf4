package filter

import (
	"context"
	"fmt"

	"flowcrm-data/internal/domain"
	"flowcrm-data/internal/query"

	"go.uber.org/zap"
)

// Pipeline turns a list request into builder mutations: access filters first
// (unconditionally), then at most one primary, then the requested bool
// filters. Any resolution failure aborts the whole build: an unapplied
// restriction is unsafe.
type Pipeline struct {
	registry *Registry
	logger   *zap.Logger
}

func NewPipeline(registry *Registry, logger *zap.Logger) *Pipeline {
	return &Pipeline{registry: registry, logger: logger}
}

// ApplyAll layers every applicable filter onto the builder.
func (p *Pipeline) ApplyAll(
	ctx context.Context,
	entityType string,
	primaryName string,
	boolNames []string,
	user domain.UserContext,
	b *query.Builder,
) error {
	if !p.registry.HasEntity(entityType) {
		return fmt.Errorf("%w: unknown entity type %q", ErrFilterNotFound, entityType)
	}

	for _, spec := range p.registry.AccessSpecs(entityType) {
		if err := spec.Apply(ctx, b, user, nil); err != nil {
			return fmt.Errorf("access filter %s/%s: %w", entityType, spec.Name, err)
		}
	}

	if primaryName != "" {
		spec, err := p.registry.Resolve(entityType, RolePrimary, primaryName)
		if err != nil {
			return err
		}
		if err := spec.Apply(ctx, b, user, nil); err != nil {
			return fmt.Errorf("primary filter %s/%s: %w", entityType, primaryName, err)
		}
	}

	for _, name := range boolNames {
		spec, err := p.registry.Resolve(entityType, RoleBool, name)
		if err != nil {
			return err
		}
		group := b.OrGroup(spec.Group)
		if err := spec.Apply(ctx, b, user, group); err != nil {
			return fmt.Errorf("bool filter %s/%s: %w", entityType, name, err)
		}
	}

	p.logger.Debug("filters applied",
		zap.String("entity_type", entityType),
		zap.String("primary", primaryName),
		zap.Strings("bool", boolNames),
		zap.String("user_id", user.UserID),
	)

	return nil
}
