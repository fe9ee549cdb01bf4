package filter

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"flowcrm-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeLinks returns canned id sets keyed by matchValue.
type fakeLinks struct {
	ids   map[string][]string
	err   error
	calls int
}

func (f *fakeLinks) ResolveIndirectIDs(_ context.Context, _, _, _, value, _ string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.ids[value], nil
}

func newTestPipeline(links LinkResolver) *Pipeline {
	reg := NewRegistry()
	RegisterBuiltins(reg, links)
	return NewPipeline(reg, zap.NewNop())
}

func memberUser() domain.UserContext {
	return domain.UserContext{
		UserID:   "u1",
		TenantID: "t1",
		TeamIDs:  []string{"team-1", "team-2"},
	}
}

func TestApplyAll_EmptyTeamsMatchesNothing(t *testing.T) {
	p := newTestPipeline(&fakeLinks{})
	user := domain.UserContext{UserID: "u1", TenantID: "t1"} // no teams

	b, err := NewBuilderFor(domain.EntityConversations)
	require.NoError(t, err)
	require.NoError(t, p.ApplyAll(context.Background(), domain.EntityConversations, "", nil, user, b))

	q, err := b.Build()
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "FALSE")
}

func TestApplyAll_TeamScopeApplied(t *testing.T) {
	p := newTestPipeline(&fakeLinks{})

	b, err := NewBuilderFor(domain.EntityConversations)
	require.NoError(t, err)
	require.NoError(t, p.ApplyAll(context.Background(), domain.EntityConversations, "", nil, memberUser(), b))

	q, err := b.Build()
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "c.tenant_id = $1")
	assert.Contains(t, q.SQL, "c.team_id = ANY($2)")
	assert.NotContains(t, q.SQL, "FALSE")
}

func TestApplyAll_AdminBypassesTeamScopeNotTenant(t *testing.T) {
	p := newTestPipeline(&fakeLinks{})
	admin := domain.UserContext{UserID: "root", TenantID: "t1", IsAdmin: true}

	b, err := NewBuilderFor(domain.EntityConversations)
	require.NoError(t, err)
	require.NoError(t, p.ApplyAll(context.Background(), domain.EntityConversations, "", nil, admin, b))

	q, err := b.Build()
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "c.tenant_id = $1")
	assert.NotContains(t, q.SQL, "team_id")
}

func TestApplyAll_UnknownEntityType(t *testing.T) {
	p := newTestPipeline(&fakeLinks{})

	b, err := NewBuilderFor(domain.EntityConversations)
	require.NoError(t, err)
	err = p.ApplyAll(context.Background(), "spaceships", "", nil, memberUser(), b)
	assert.ErrorIs(t, err, ErrFilterNotFound)
}

func TestApplyAll_UnknownPrimaryFilter(t *testing.T) {
	p := newTestPipeline(&fakeLinks{})

	b, err := NewBuilderFor(domain.EntityConversations)
	require.NoError(t, err)
	err = p.ApplyAll(context.Background(), domain.EntityConversations, "sideways", nil, memberUser(), b)
	assert.ErrorIs(t, err, ErrFilterNotFound)
}

func TestApplyAll_UnknownBoolFilterAbortsBuild(t *testing.T) {
	p := newTestPipeline(&fakeLinks{})

	b, err := NewBuilderFor(domain.EntityConversations)
	require.NoError(t, err)
	err = p.ApplyAll(context.Background(), domain.EntityConversations, "", []string{"mine", "nope"}, memberUser(), b)
	assert.ErrorIs(t, err, ErrFilterNotFound)
}

func TestApplyAll_PrimaryFilter(t *testing.T) {
	p := newTestPipeline(&fakeLinks{})

	b, err := NewBuilderFor(domain.EntityConversations)
	require.NoError(t, err)
	require.NoError(t, p.ApplyAll(context.Background(), domain.EntityConversations, "pending", nil, memberUser(), b))

	q, err := b.Build()
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "c.status = $3")
}

func TestApplyAll_AssignedToMeResolvesOnce(t *testing.T) {
	links := &fakeLinks{ids: map[string][]string{"u1": {"A1"}}}
	p := newTestPipeline(links)

	b, err := NewBuilderFor(domain.EntityConversations)
	require.NoError(t, err)
	require.NoError(t, p.ApplyAll(context.Background(), domain.EntityConversations, "", []string{"assignedToMe"}, memberUser(), b))

	q, err := b.Build()
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "c.assignee_id = ANY(")
	assert.Equal(t, 1, links.calls)
}

func TestApplyAll_AssignedToMeEmptySetFailsClosed(t *testing.T) {
	links := &fakeLinks{} // user has zero linked agents
	p := newTestPipeline(links)

	b, err := NewBuilderFor(domain.EntityConversations)
	require.NoError(t, err)
	require.NoError(t, p.ApplyAll(context.Background(), domain.EntityConversations, "", []string{"assignedToMe"}, memberUser(), b))

	q, err := b.Build()
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "FALSE")
	assert.NotContains(t, q.SQL, "assignee_id")
}

func TestApplyAll_ResolverErrorPropagates(t *testing.T) {
	links := &fakeLinks{err: errors.New("link table unavailable")}
	p := newTestPipeline(links)

	b, err := NewBuilderFor(domain.EntityConversations)
	require.NoError(t, err)
	err = p.ApplyAll(context.Background(), domain.EntityConversations, "", []string{"assignedToMe"}, memberUser(), b)
	assert.ErrorContains(t, err, "link table unavailable")
}

// orAlternatives pulls the alternatives out of the single parenthesised OR
// group of a rendered query, sorted for comparison.
func orAlternatives(t *testing.T, sql string) []string {
	t.Helper()
	idx := strings.LastIndex(sql, " AND (")
	require.True(t, idx >= 0, "no OR group in %q", sql)
	group := sql[idx+len(" AND ("):]
	require.True(t, strings.HasSuffix(group, ")"), "unterminated OR group in %q", sql)
	group = strings.TrimSuffix(group, ")")
	parts := strings.Split(group, " OR ")
	// strip positional numbers so the two permutations compare equal
	for i := range parts {
		parts[i] = stripArgNumbers(parts[i])
	}
	sort.Strings(parts)
	return parts
}

func stripArgNumbers(s string) string {
	var sb strings.Builder
	skip := false
	for _, r := range s {
		if r == '$' {
			skip = true
			sb.WriteRune(r)
			continue
		}
		if skip && r >= '0' && r <= '9' {
			continue
		}
		skip = false
		sb.WriteRune(r)
	}
	return sb.String()
}

func TestApplyAll_BoolFilterOrderIndependence(t *testing.T) {
	links := &fakeLinks{ids: map[string][]string{"u1": {"A1"}}}
	user := memberUser()

	buildFor := func(names []string) string {
		p := newTestPipeline(links)
		b, err := NewBuilderFor(domain.EntityConversations)
		require.NoError(t, err)
		require.NoError(t, p.ApplyAll(context.Background(), domain.EntityConversations, "", names, user, b))
		q, err := b.Build()
		require.NoError(t, err)
		return q.SQL
	}

	first := buildFor([]string{"mine", "assignedToMe"})
	second := buildFor([]string{"assignedToMe", "mine"})

	// same OR group membership regardless of request order
	assert.Equal(t, orAlternatives(t, first), orAlternatives(t, second))
}

func TestApplyAll_IndependentGroupsAndConcatenate(t *testing.T) {
	links := &fakeLinks{ids: map[string][]string{"u1": {"A1"}}}
	p := newTestPipeline(links)

	b, err := NewBuilderFor(domain.EntityConversations)
	require.NoError(t, err)
	require.NoError(t, p.ApplyAll(context.Background(), domain.EntityConversations, "",
		[]string{"assignedToMe", "unassigned"}, memberUser(), b))

	q, err := b.Build()
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "c.assignee_id = ANY(")
	assert.Contains(t, q.SQL, "c.assignee_id IS NULL")
}
