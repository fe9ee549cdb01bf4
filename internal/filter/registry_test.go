package filter

import (
	"testing"

	"flowcrm-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ResolveNotFound(t *testing.T) {
	reg := NewRegistry()
	RegisterBuiltins(reg, &fakeLinks{})

	_, err := reg.Resolve(domain.EntityConversations, RoleBool, "somethingElse")
	assert.ErrorIs(t, err, ErrFilterNotFound)

	_, err = reg.Resolve("unknownEntity", RoleBool, "mine")
	assert.ErrorIs(t, err, ErrFilterNotFound)
}

func TestRegistry_DuplicateRegistrationPanics(t *testing.T) {
	reg := NewRegistry()
	spec := mine(domain.EntityConversations)
	reg.Register(spec)

	assert.Panics(t, func() { reg.Register(spec) })
}

func TestRegistry_AccessSpecsRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	RegisterBuiltins(reg, &fakeLinks{})

	specs := reg.AccessSpecs(domain.EntityConversations)
	require.Len(t, specs, 2)
	assert.Equal(t, "tenantScope", specs[0].Name)
	assert.Equal(t, "onlyTeam", specs[1].Name)
}

func TestRegistry_EntityTypes(t *testing.T) {
	reg := NewRegistry()
	RegisterBuiltins(reg, &fakeLinks{})

	types := reg.EntityTypes()
	assert.Equal(t, []string{
		domain.EntityContacts,
		domain.EntityConversations,
		domain.EntityCredentials,
		domain.EntityFunnels,
		domain.EntityMeetings,
		domain.EntityOpportunities,
	}, types)
}
