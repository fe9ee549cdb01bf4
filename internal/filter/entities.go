package filter

import (
	"fmt"

	"flowcrm-data/internal/domain"
	"flowcrm-data/internal/query"
)

type entityTable struct {
	table string
	alias string
}

// entityTables maps entity types to their base table and alias. Filters
// reference columns through these aliases only.
var entityTables = map[string]entityTable{
	domain.EntityConversations: {table: "conversations", alias: "c"},
	domain.EntityContacts:      {table: "contacts", alias: "ct"},
	domain.EntityFunnels:       {table: "funnels", alias: "f"},
	domain.EntityOpportunities: {table: "opportunities", alias: "o"},
	domain.EntityMeetings:      {table: "meetings", alias: "m"},
	domain.EntityCredentials:   {table: "credentials", alias: "cr"},
}

// NewBuilderFor starts a list-query builder over the entity's base table.
func NewBuilderFor(entityType string) (*query.Builder, error) {
	et, ok := entityTables[entityType]
	if !ok {
		return nil, fmt.Errorf("%w: unknown entity type %q", ErrFilterNotFound, entityType)
	}
	return query.NewBuilder(et.table, et.alias), nil
}
