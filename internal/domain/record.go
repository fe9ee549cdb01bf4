package domain

// EntityTypes this service knows how to list. Filters are registered per
// entity type at boot; an unknown type in a request is a client error.
const (
	EntityConversations = "conversations"
	EntityContacts      = "contacts"
	EntityFunnels       = "funnels"
	EntityOpportunities = "opportunities"
	EntityMeetings      = "meetings"
	EntityCredentials   = "credentials"
)

// Record is one row of a list query. List views only need the queryable
// attributes, so fields stay schemaless here; concrete entity schemas are
// owned by the CRUD layer.
type Record struct {
	ID         string         `json:"id"`
	EntityType string         `json:"entity_type"`
	Fields     map[string]any `json:"fields"`
}
