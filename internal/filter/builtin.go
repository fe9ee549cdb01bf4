package filter

import (
	"context"
	"time"

	"flowcrm-data/internal/domain"
	"flowcrm-data/internal/query"
)

// RegisterBuiltins installs the filter set for every entity type this
// service lists. Called once at boot; links is the resolver bool filters use
// for indirected ownership.
func RegisterBuiltins(reg *Registry, links LinkResolver) {
	registerConversations(reg, links)
	registerContacts(reg)
	registerFunnels(reg, links)
	registerOpportunities(reg, links)
	registerMeetings(reg, links)
	registerCredentials(reg)
}

// tenantScope restricts every query to the caller's tenant. Applies to
// admins too; tenancy is never bypassed.
func tenantScope(entityType string) Spec {
	return Spec{
		EntityType: entityType,
		Role:       RoleAccess,
		Name:       "tenantScope",
		Apply: func(_ context.Context, b *query.Builder, user domain.UserContext, _ *query.OrGroup) error {
			if user.TenantID == "" {
				b.AddWhere(query.Never())
				return nil
			}
			b.AddWhere(query.Eq(b.BaseAlias(), "tenant_id", user.TenantID))
			return nil
		},
	}
}

// onlyTeam restricts rows to the caller's teams. Admins see the whole
// tenant; a user with no teams sees nothing. Omitting the restriction would
// leak every row.
func onlyTeam(entityType string) Spec {
	return Spec{
		EntityType: entityType,
		Role:       RoleAccess,
		Name:       "onlyTeam",
		Apply: func(_ context.Context, b *query.Builder, user domain.UserContext, _ *query.OrGroup) error {
			if user.IsAdmin {
				return nil
			}
			if len(user.TeamIDs) == 0 {
				b.AddWhere(query.Never())
				return nil
			}
			b.AddWhere(query.In(b.BaseAlias(), "team_id", user.TeamIDs))
			return nil
		},
	}
}

// statusPrimary is the common single-facet primary filter.
func statusPrimary(entityType, name, column, value string) Spec {
	return Spec{
		EntityType: entityType,
		Role:       RolePrimary,
		Name:       name,
		Apply: func(_ context.Context, b *query.Builder, _ domain.UserContext, _ *query.OrGroup) error {
			b.AddWhere(query.Eq(b.BaseAlias(), column, value))
			return nil
		},
	}
}

// assignedToMe resolves the caller's agent ids once, then contributes
// `assignee_id IN (ids)` to the ownership group. An empty id set contributes
// a match-nothing alternative rather than being skipped.
func assignedToMe(entityType string, links LinkResolver) Spec {
	return Spec{
		EntityType: entityType,
		Role:       RoleBool,
		Name:       "assignedToMe",
		Group:      "ownership",
		Apply: func(ctx context.Context, b *query.Builder, user domain.UserContext, group *query.OrGroup) error {
			ids, err := links.ResolveIndirectIDs(ctx, "agents", "user_id", "user_id", user.UserID, "agent_id")
			if err != nil {
				return err
			}
			group.Add(query.In(b.BaseAlias(), "assignee_id", ids))
			return nil
		},
	}
}

// mine matches rows the caller owns directly.
func mine(entityType string) Spec {
	return Spec{
		EntityType: entityType,
		Role:       RoleBool,
		Name:       "mine",
		Group:      "ownership",
		Apply: func(_ context.Context, b *query.Builder, user domain.UserContext, group *query.OrGroup) error {
			group.Add(query.Eq(b.BaseAlias(), "owner_user_id", user.UserID))
			return nil
		},
	}
}

func registerConversations(reg *Registry, links LinkResolver) {
	et := domain.EntityConversations
	reg.Register(tenantScope(et))
	reg.Register(onlyTeam(et))

	reg.Register(statusPrimary(et, "pending", "status", "pending"))
	reg.Register(statusPrimary(et, "resolved", "status", "resolved"))

	reg.Register(assignedToMe(et, links))
	reg.Register(mine(et))
	reg.Register(Spec{
		EntityType: et,
		Role:       RoleBool,
		Name:       "unassigned",
		Group:      "unassigned",
		Apply: func(_ context.Context, b *query.Builder, _ domain.UserContext, group *query.OrGroup) error {
			group.Add(query.IsNull(b.BaseAlias(), "assignee_id"))
			return nil
		},
	})
}

func registerContacts(reg *Registry) {
	et := domain.EntityContacts
	reg.Register(tenantScope(et))
	reg.Register(onlyTeam(et))

	reg.Register(statusPrimary(et, "active", "status", "active"))
	reg.Register(statusPrimary(et, "archived", "status", "archived"))

	reg.Register(mine(et))
	// contacts with at least one open conversation; needs the join, hence
	// Distinct to undo the fan-out
	reg.Register(Spec{
		EntityType: et,
		Role:       RoleBool,
		Name:       "hasOpenConversations",
		Group:      "hasOpenConversations",
		Apply: func(_ context.Context, b *query.Builder, _ domain.UserContext, group *query.OrGroup) error {
			if err := b.Join("conversations", "cv", "cv.contact_id = ct.contact_id"); err != nil {
				return err
			}
			b.Distinct()
			group.Add(query.Eq("cv", "status", "pending"))
			return nil
		},
	})
}

func registerFunnels(reg *Registry, links LinkResolver) {
	et := domain.EntityFunnels
	reg.Register(tenantScope(et))

	reg.Register(statusPrimary(et, "active", "status", "active"))
	reg.Register(statusPrimary(et, "archived", "status", "archived"))

	reg.Register(mine(et))
	// sharedWithMe resolves funnel ids through the share link table
	reg.Register(Spec{
		EntityType: et,
		Role:       RoleBool,
		Name:       "sharedWithMe",
		Group:      "ownership",
		Apply: func(ctx context.Context, b *query.Builder, user domain.UserContext, group *query.OrGroup) error {
			ids, err := links.ResolveIndirectIDs(ctx, "funnel_shares", "funnel_id", "user_id", user.UserID, "funnel_id")
			if err != nil {
				return err
			}
			group.Add(query.In(b.BaseAlias(), "funnel_id", ids))
			return nil
		},
	})
}

func registerOpportunities(reg *Registry, links LinkResolver) {
	et := domain.EntityOpportunities
	reg.Register(tenantScope(et))
	reg.Register(onlyTeam(et))

	reg.Register(statusPrimary(et, "open", "stage", "open"))
	reg.Register(statusPrimary(et, "won", "stage", "won"))
	reg.Register(statusPrimary(et, "lost", "stage", "lost"))

	reg.Register(assignedToMe(et, links))
	reg.Register(mine(et))
}

func registerMeetings(reg *Registry, links LinkResolver) {
	et := domain.EntityMeetings
	reg.Register(tenantScope(et))
	reg.Register(onlyTeam(et))

	reg.Register(Spec{
		EntityType: et,
		Role:       RolePrimary,
		Name:       "upcoming",
		Apply: func(_ context.Context, b *query.Builder, _ domain.UserContext, _ *query.OrGroup) error {
			b.AddWhere(query.Gt(b.BaseAlias(), "starts_at", time.Now().UTC()))
			return nil
		},
	})
	reg.Register(Spec{
		EntityType: et,
		Role:       RolePrimary,
		Name:       "past",
		Apply: func(_ context.Context, b *query.Builder, _ domain.UserContext, _ *query.OrGroup) error {
			b.AddWhere(query.Lt(b.BaseAlias(), "starts_at", time.Now().UTC()))
			return nil
		},
	})

	// attending resolves meeting ids through the attendee link table
	reg.Register(Spec{
		EntityType: et,
		Role:       RoleBool,
		Name:       "attending",
		Group:      "ownership",
		Apply: func(ctx context.Context, b *query.Builder, user domain.UserContext, group *query.OrGroup) error {
			ids, err := links.ResolveIndirectIDs(ctx, "meeting_attendees", "meeting_id", "user_id", user.UserID, "meeting_id")
			if err != nil {
				return err
			}
			group.Add(query.In(b.BaseAlias(), "meeting_id", ids))
			return nil
		},
	})
	reg.Register(Spec{
		EntityType: et,
		Role:       RoleBool,
		Name:       "organizedByMe",
		Group:      "ownership",
		Apply: func(_ context.Context, b *query.Builder, user domain.UserContext, group *query.OrGroup) error {
			group.Add(query.Eq(b.BaseAlias(), "organizer_user_id", user.UserID))
			return nil
		},
	})
}

func registerCredentials(reg *Registry) {
	et := domain.EntityCredentials
	reg.Register(tenantScope(et))

	reg.Register(statusPrimary(et, "active", "status", "active"))
	reg.Register(statusPrimary(et, "revoked", "status", "revoked"))
}
